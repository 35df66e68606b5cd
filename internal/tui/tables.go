package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/model"
)

func newTable() table.Model {
	t := table.New(
		table.WithColumns(tableColumns(TabQuotes)),
		table.WithHeight(8),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(tableBorder).
		BorderForeground(Border).
		BorderBottom(true).
		Bold(true).
		Foreground(Primary)
	s.Selected = s.Selected.
		Foreground(Text).
		Background(Surface).
		Bold(true)
	t.SetStyles(s)
	return t
}

func tableColumns(tab Tab) []table.Column {
	switch tab {
	case TabPayments:
		return []table.Column{
			{Title: "Date", Width: 10},
			{Title: "Montant", Width: 14},
			{Title: "Méthode", Width: 14},
		}
	case TabExpenses:
		return []table.Column{
			{Title: "Date", Width: 10},
			{Title: "Type", Width: 13},
			{Title: "Description", Width: 24},
			{Title: "Fournisseur", Width: 14},
			{Title: "Montant", Width: 14},
		}
	default:
		return []table.Column{
			{Title: "Date", Width: 10},
			{Title: "N°", Width: 8},
			{Title: "Statut", Width: 10},
			{Title: "Total HT", Width: 14},
			{Title: "Total TTC", Width: 14},
		}
	}
}

// tableRows lists the records of project p for tab, newest first
func tableRows(tab Tab, p model.Project, snap model.Snapshot) []table.Row {
	rel := finance.ForProject(p.ID, snap)
	var rows []table.Row

	switch tab {
	case TabPayments:
		for _, pay := range rel.Payments {
			rows = append(rows, table.Row{
				pay.Date.French(),
				model.FormatEUR(pay.Amount),
				string(pay.Method),
			})
		}
	case TabExpenses:
		for _, e := range rel.Expenses {
			rows = append(rows, table.Row{
				e.Date.French(),
				string(e.Type),
				truncate(e.Description, 24),
				truncate(e.Provider, 14),
				model.FormatEUR(e.Amount),
			})
		}
	default:
		for _, q := range rel.Quotes {
			t := finance.QuoteTotals(q)
			rows = append(rows, table.Row{
				q.Date.French(),
				truncate(q.ID, 8),
				string(q.Status),
				model.FormatEUR(t.PreTax),
				model.FormatEUR(t.TaxInclusive),
			})
		}
	}
	return rows
}

// refreshTable reloads the table for the current project and tab. Rows are
// cleared before the columns change so no row outgrows its columns.
func (m *Model) refreshTable() {
	m.table.SetRows(nil)
	m.table.SetColumns(tableColumns(m.tab))

	p := m.currentProject()
	if p == nil {
		return
	}
	m.table.SetRows(tableRows(m.tab, *p, m.snap))
}
