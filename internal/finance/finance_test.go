package finance

import (
	"math/rand"
	"testing"

	"github.com/existflow/chantier/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func line(designation string, qty int64, price int64) model.LineItem {
	return model.LineItem{
		Designation: designation,
		Quantity:    decimal.NewFromInt(qty),
		UnitPrice:   model.Euros(price),
	}
}

func rate(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// p1 is the reference project: one accepted quote, one payment, two expenses.
func p1() ([]model.Quote, []model.Payment, []model.Expense) {
	quotes := []model.Quote{{
		ID:         "d1",
		ProjectRef: model.RefTo("P1"),
		Date:       model.NewDate(2025, 1, 10),
		Status:     model.QuoteAccepted,
		TaxRate:    rate("0.20"),
		LineItems: []model.LineItem{
			line("Peinture murs et plafonds", 120, 25),
			line("Pose parquet chêne", 45, 85),
		},
	}}
	payments := []model.Payment{{
		ID: "p1", ProjectRef: model.RefTo("P1"), Amount: model.Euros(5000),
		Date: model.NewDate(2025, 1, 12), Method: model.PaymentTransfer,
	}}
	expenses := []model.Expense{
		{ID: "e1", ProjectRef: model.RefTo("P1"), Type: model.ExpenseMaterials, Amount: model.Euros(1250), Provider: "Leroy Merlin", Date: model.NewDate(2025, 1, 20)},
		{ID: "e2", ProjectRef: model.RefEmbed(model.EmbeddedProject{AltID: "P1"}), Type: model.ExpenseLabor, Amount: model.Euros(2400), Provider: "Intérim Pro", Date: model.NewDate(2025, 1, 25)},
	}
	return quotes, payments, expenses
}

func TestComputeTotals(t *testing.T) {
	quotes, _, _ := p1()
	got := ComputeTotals(quotes[0].LineItems, quotes[0].TaxRate)
	require.Equal(t, Totals{
		PreTax:       model.Euros(6825),
		Tax:          model.Euros(1365),
		TaxInclusive: model.Euros(8190),
	}, got)
}

func TestComputeTotalsEmpty(t *testing.T) {
	for _, r := range []string{"0", "0.055", "0.2", "1.5"} {
		require.Equal(t, Totals{}, ComputeTotals(nil, rate(r)))
		require.Equal(t, Totals{}, ComputeTotals([]model.LineItem{}, rate(r)))
	}
}

func TestComputeTotalsRounding(t *testing.T) {
	lines := []model.LineItem{
		{Designation: "Câble", Quantity: rate("2.5"), UnitPrice: 333},
		{Designation: "Gaine", Quantity: rate("0.333"), UnitPrice: 1000},
	}
	got := ComputeTotals(lines, rate("0.055"))
	// 8.325 -> 8.33, 3.33 -> 3.33
	require.Equal(t, model.Money(1166), got.PreTax)
	// 11.66 × 0.055 = 0.6413
	require.Equal(t, model.Money(64), got.Tax)
	require.Equal(t, model.Money(1230), got.TaxInclusive)
}

func TestComputeTotalsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		var lines []model.LineItem
		for n := rng.Intn(6); n > 0; n-- {
			lines = append(lines, model.LineItem{
				Designation: "x",
				Quantity:    decimal.New(rng.Int63n(10000), -int32(rng.Intn(3))),
				UnitPrice:   model.Money(rng.Int63n(1_000_000)),
			})
		}
		r := decimal.New(rng.Int63n(400), -3)
		got := ComputeTotals(lines, r)
		require.Equal(t, got.PreTax+got.Tax, got.TaxInclusive)
	}
}

func TestSummarizeReferenceProject(t *testing.T) {
	quotes, payments, expenses := p1()
	s := Summarize("P1", quotes, payments, expenses)

	require.Equal(t, model.Euros(8190), s.CommittedRevenue)
	require.Equal(t, model.Euros(5000), s.Collected)
	require.Equal(t, model.Euros(3650), s.Spent)
	require.Equal(t, model.Euros(3190), s.OutstandingBalance)
	require.Equal(t, model.Euros(1350), s.NetProfit)
	require.True(t, s.MarginPercent.Equal(decimal.NewFromInt(27)), s.MarginPercent.String())
	require.Equal(t, 1, s.AcceptedQuotes)
	require.Equal(t, 1, s.Payments)
	require.Equal(t, 2, s.Expenses)
	require.Equal(t, "61.05", s.CollectionRate.StringFixed(2))
}

func TestSummarizeEmptyProject(t *testing.T) {
	quotes, payments, expenses := p1()
	s := Summarize("P2", quotes, payments, expenses)
	require.Zero(t, s.CommittedRevenue)
	require.Zero(t, s.Collected)
	require.Zero(t, s.Spent)
	require.Zero(t, s.OutstandingBalance)
	require.Zero(t, s.NetProfit)
	require.True(t, s.MarginPercent.IsZero())

	s = Summarize("P2", nil, nil, nil)
	require.Zero(t, s.CommittedRevenue)
	require.True(t, s.MarginPercent.IsZero())
}

func TestSummarizeExcludesNonAcceptedQuotes(t *testing.T) {
	quotes, _, _ := p1()
	for _, status := range []model.QuoteStatus{model.QuoteDraft, model.QuoteSent, model.QuoteRejected} {
		q := quotes[0]
		q.Status = status
		s := Summarize("P1", []model.Quote{q}, nil, nil)
		require.Zero(t, s.CommittedRevenue, status)
		require.Equal(t, 1, s.Quotes)
		require.Zero(t, s.AcceptedQuotes)
	}
}

func TestSummarizeNeverNegativeOutstanding(t *testing.T) {
	quotes, payments, _ := p1()
	payments = append(payments, model.Payment{ProjectRef: model.RefTo("P1"), Amount: model.Euros(10000)})
	s := Summarize("P1", quotes, payments, nil)
	require.Equal(t, model.Euros(15000), s.Collected)
	require.Zero(t, s.OutstandingBalance)
}

func TestSummarizeZeroMarginWithoutCollection(t *testing.T) {
	quotes, _, expenses := p1()
	s := Summarize("P1", quotes, nil, expenses)
	require.Equal(t, model.Euros(-3650), s.NetProfit)
	require.True(t, s.Loss())
	require.True(t, s.MarginPercent.IsZero())
	require.Equal(t, model.Euros(8190), s.OutstandingBalance)
}

func TestSummarizeIgnoresUnresolvedReferences(t *testing.T) {
	quotes, payments, expenses := p1()
	payments = append(payments,
		model.Payment{ProjectRef: model.ProjectRef{}, Amount: model.Euros(99)},
		model.Payment{ProjectRef: model.RefEmbed(model.EmbeddedProject{}), Amount: model.Euros(99)},
	)
	s := Summarize("P1", quotes, payments, expenses)
	require.Equal(t, model.Euros(5000), s.Collected)

	s = Summarize("", quotes, payments, expenses)
	require.Zero(t, s.Collected)
}

func TestSummarizeOrderIndependent(t *testing.T) {
	quotes, payments, expenses := p1()
	quotes = append(quotes, model.Quote{ProjectRef: model.RefTo("P1"), Status: model.QuoteAccepted, TaxRate: rate("0.1"),
		LineItems: []model.LineItem{{Designation: "Dalle", Quantity: rate("3.3"), UnitPrice: 1999}}})
	payments = append(payments, model.Payment{ProjectRef: model.RefTo("P1"), Amount: 12345})
	expenses = append(expenses, model.Expense{ProjectRef: model.RefTo("P1"), Amount: 678})
	want := Summarize("P1", quotes, payments, expenses)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(quotes), func(a, b int) { quotes[a], quotes[b] = quotes[b], quotes[a] })
		rng.Shuffle(len(payments), func(a, b int) { payments[a], payments[b] = payments[b], payments[a] })
		rng.Shuffle(len(expenses), func(a, b int) { expenses[a], expenses[b] = expenses[b], expenses[a] })
		require.Equal(t, want, Summarize("P1", quotes, payments, expenses))
	}
}

func TestSummarizeProjectBudget(t *testing.T) {
	quotes, payments, expenses := p1()
	p := model.Project{ID: "P1", Budget: model.Euros(36500)}
	s := SummarizeProject(p, model.Snapshot{Quotes: quotes, Payments: payments, Expenses: expenses})
	require.Equal(t, model.Euros(36500), s.Budget)
	require.True(t, s.BudgetUsedPercent.Equal(decimal.NewFromInt(10)), s.BudgetUsedPercent.String())
}

func TestPercent(t *testing.T) {
	third := Percent(1, 3)
	require.Equal(t, "33.33", third.StringFixed(2))
	require.False(t, third.Equal(rate("33.33")), third.String())
	require.True(t, third.Mul(decimal.NewFromInt(3)).Sub(hundred).Abs().LessThan(rate("0.000001")))
	require.True(t, Percent(100, 0).IsZero())
	require.True(t, Percent(100, -5).IsZero())
}
