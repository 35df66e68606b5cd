package finance

import (
	"github.com/existflow/chantier/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary is the financial roll-up of one project.
type Summary struct {
	ProjectID          string          `json:"projectId"`
	CommittedRevenue   model.Money     `json:"committedRevenue"`
	Collected          model.Money     `json:"collected"`
	Spent              model.Money     `json:"spent"`
	OutstandingBalance model.Money     `json:"outstandingBalance"`
	NetProfit          model.Money     `json:"netProfit"`
	MarginPercent      decimal.Decimal `json:"marginPercent"`

	// Counts of matching records.
	AcceptedQuotes int `json:"acceptedQuotes"`
	Quotes         int `json:"quotes"`
	Payments       int `json:"payments"`
	Expenses       int `json:"expenses"`

	// CollectionRate is Collected as a share of CommittedRevenue.
	CollectionRate decimal.Decimal `json:"collectionRate"`

	// Set by SummarizeProject only.
	Budget            model.Money     `json:"budget"`
	BudgetUsedPercent decimal.Decimal `json:"budgetUsedPercent"`
}

// Summarize joins the collections on projectID and computes the project's
// roll-up. Only accepted quotes count toward committed revenue. Records whose
// project reference does not resolve are ignored. The margin is relative to
// the cash collected and is zero while nothing has been collected.
func Summarize(projectID string, quotes []model.Quote, payments []model.Payment, expenses []model.Expense) Summary {
	s := Summary{ProjectID: projectID}

	for _, q := range quotes {
		if !q.ProjectRef.Matches(projectID) {
			continue
		}
		s.Quotes++
		if !q.IsAccepted() {
			continue
		}
		s.AcceptedQuotes++
		s.CommittedRevenue += QuoteTotals(q).TaxInclusive
	}

	for _, p := range payments {
		if p.ProjectRef.Matches(projectID) {
			s.Payments++
			s.Collected += p.Amount
		}
	}

	for _, e := range expenses {
		if e.ProjectRef.Matches(projectID) {
			s.Expenses++
			s.Spent += e.Amount
		}
	}

	if s.CommittedRevenue > s.Collected {
		s.OutstandingBalance = s.CommittedRevenue - s.Collected
	}
	s.NetProfit = s.Collected - s.Spent
	s.MarginPercent = Percent(s.NetProfit, s.Collected)
	s.CollectionRate = Percent(s.Collected, s.CommittedRevenue)
	s.BudgetUsedPercent = decimal.Zero

	return s
}

// SummarizeProject is Summarize plus the budget consumption of p.
func SummarizeProject(p model.Project, snap model.Snapshot) Summary {
	s := Summarize(p.ID, snap.Quotes, snap.Payments, snap.Expenses)
	s.Budget = p.Budget
	s.BudgetUsedPercent = Percent(s.Spent, p.Budget)
	return s
}

// Percent returns part / whole × 100, or zero when whole is not positive.
// The ratio is kept at full division precision; callers round for display.
func Percent(part, whole model.Money) decimal.Decimal {
	if whole <= 0 {
		return decimal.Zero
	}
	return part.Decimal().Div(whole.Decimal()).Mul(hundred)
}

// Loss reports whether the project spent more than it collected.
func (s Summary) Loss() bool {
	return s.NetProfit < 0
}
