package finance

import (
	"strings"

	"github.com/existflow/chantier/internal/model"
)

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// FilterProjects keeps projects whose name or client contains query, and
// whose status equals status when status is not empty.
func FilterProjects(projects []model.Project, query string, status model.ProjectStatus) []model.Project {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []model.Project
	for _, p := range projects {
		if status != "" && p.Status != status {
			continue
		}
		if q != "" && !contains(p.Name, q) && !contains(p.Client, q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterQuotes matches the project name or the quote identifier.
func FilterQuotes(snap model.Snapshot, query string, status model.QuoteStatus) []model.Quote {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []model.Quote
	for _, quote := range snap.Quotes {
		if status != "" && quote.Status != status {
			continue
		}
		if q != "" && !contains(snap.ProjectName(quote.ProjectRef), q) && !contains(quote.ID, q) {
			continue
		}
		out = append(out, quote)
	}
	return out
}

// FilterPayments matches the project name or the payment method.
func FilterPayments(snap model.Snapshot, query string) []model.Payment {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []model.Payment
	for _, p := range snap.Payments {
		if q != "" && !contains(snap.ProjectName(p.ProjectRef), q) && !contains(string(p.Method), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterExpenses matches the project name, the provider or the description.
func FilterExpenses(snap model.Snapshot, query string, typ model.ExpenseType) []model.Expense {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []model.Expense
	for _, e := range snap.Expenses {
		if typ != "" && e.Type != typ {
			continue
		}
		if q != "" && !contains(snap.ProjectName(e.ProjectRef), q) &&
			!contains(e.Provider, q) && !contains(e.Description, q) {
			continue
		}
		out = append(out, e)
	}
	return out
}
