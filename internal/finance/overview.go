package finance

import (
	"sort"

	"github.com/existflow/chantier/internal/model"
	"github.com/shopspring/decimal"
)

// Overview is the portfolio view shown on the dashboard.
type Overview struct {
	Projects       int         `json:"projects"`
	ActiveProjects int         `json:"activeProjects"`
	TotalBudget    model.Money `json:"totalBudget"`
	// Collected and Spent cover every payment and expense, resolved or not.
	Collected        model.Money     `json:"collected"`
	Spent            model.Money     `json:"spent"`
	CommittedRevenue model.Money     `json:"committedRevenue"`
	CollectedPercent decimal.Decimal `json:"collectedPercent"`
	PendingQuotes    int             `json:"pendingQuotes"`
	Rows             []ProjectRow    `json:"rows"`
}

// ProjectRow pairs a project with its summary.
type ProjectRow struct {
	Project model.Project `json:"project"`
	Summary Summary       `json:"summary"`
}

// BuildOverview summarizes every project of snap. Rows keep the order of
// snap.Projects.
func BuildOverview(snap model.Snapshot) Overview {
	o := Overview{Projects: len(snap.Projects)}

	for _, p := range snap.Projects {
		o.TotalBudget += p.Budget
		if p.Status == model.ProjectInProgress {
			o.ActiveProjects++
		}
		row := ProjectRow{Project: p, Summary: SummarizeProject(p, snap)}
		o.CommittedRevenue += row.Summary.CommittedRevenue
		o.Rows = append(o.Rows, row)
	}
	for _, pay := range snap.Payments {
		o.Collected += pay.Amount
	}
	for _, e := range snap.Expenses {
		o.Spent += e.Amount
	}
	for _, q := range snap.Quotes {
		if q.Status == model.QuoteDraft || q.Status == model.QuoteSent {
			o.PendingQuotes++
		}
	}
	o.CollectedPercent = Percent(o.Collected, o.TotalBudget)
	return o
}

// Related holds the child records of one project.
type Related struct {
	Quotes   []model.Quote
	Payments []model.Payment
	Expenses []model.Expense
}

// ForProject selects the records of snap that resolve to projectID, newest
// first.
func ForProject(projectID string, snap model.Snapshot) Related {
	var r Related
	for _, q := range snap.Quotes {
		if q.ProjectRef.Matches(projectID) {
			r.Quotes = append(r.Quotes, q)
		}
	}
	for _, p := range snap.Payments {
		if p.ProjectRef.Matches(projectID) {
			r.Payments = append(r.Payments, p)
		}
	}
	for _, e := range snap.Expenses {
		if e.ProjectRef.Matches(projectID) {
			r.Expenses = append(r.Expenses, e)
		}
	}
	sort.SliceStable(r.Quotes, func(i, j int) bool { return r.Quotes[j].Date.Before(r.Quotes[i].Date) })
	sort.SliceStable(r.Payments, func(i, j int) bool { return r.Payments[j].Date.Before(r.Payments[i].Date) })
	sort.SliceStable(r.Expenses, func(i, j int) bool { return r.Expenses[j].Date.Before(r.Expenses[i].Date) })
	return r
}

// TotalCollected sums payment amounts.
func TotalCollected(payments []model.Payment) model.Money {
	var total model.Money
	for _, p := range payments {
		total += p.Amount
	}
	return total
}

// SpentByType groups expense amounts by type.
func SpentByType(expenses []model.Expense) map[model.ExpenseType]model.Money {
	out := make(map[model.ExpenseType]model.Money)
	for _, e := range expenses {
		out[e.Type] += e.Amount
	}
	return out
}
