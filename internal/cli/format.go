package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/model"
)

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func statusIcon(s model.ProjectStatus) string {
	switch s {
	case model.ProjectInProgress:
		return "🚧"
	case model.ProjectCompleted:
		return "✅"
	case model.ProjectSuspended:
		return "⏸️ "
	}
	return "  "
}

func rule(w io.Writer, n int) {
	fmt.Fprintln(w, strings.Repeat("─", n))
}

func printProjects(w io.Writer, snap model.Snapshot, projects []model.Project) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "     %-10s  %-32s  %-20s  %14s  %14s\n", "ID", "Chantier", "Client", "Budget", "Encaissé")
	rule(w, 102)

	for _, p := range projects {
		s := finance.SummarizeProject(p, snap)
		fmt.Fprintf(w, "  %s %-10s  %-32s  %-20s  %14s  %14s\n",
			statusIcon(p.Status), shortID(p.ID), truncate(p.Name, 32), truncate(p.Client, 20),
			model.FormatEUR(p.Budget), model.FormatEUR(s.Collected))
	}

	rule(w, 102)
	fmt.Fprintf(w, "  %d projects\n\n", len(projects))
}

func printSummary(w io.Writer, p model.Project, s finance.Summary) {
	fmt.Fprintf(w, "\n📁 %s\n", p.Name)
	rule(w, 50)
	fmt.Fprintf(w, "  %-22s %s\n", "Client", p.Client)
	fmt.Fprintf(w, "  %-22s %s\n", "Lieu", p.Location)
	fmt.Fprintf(w, "  %-22s %s\n", "Statut", p.Status)
	end := "-"
	if p.EndDate != nil {
		end = p.EndDate.French()
	}
	fmt.Fprintf(w, "  %-22s %s → %s\n", "Dates", p.StartDate.French(), end)
	rule(w, 50)

	row := func(label string, m model.Money) {
		fmt.Fprintf(w, "  %-22s %18s\n", label, model.FormatEUR(m))
	}
	row("Budget", p.Budget)
	row("Total devis TTC", s.CommittedRevenue)
	row("Encaissé", s.Collected)
	row("Reste à encaisser", s.OutstandingBalance)
	row("Dépenses", s.Spent)
	row("Bénéfice net", s.NetProfit)
	fmt.Fprintf(w, "  %-22s %17s%%\n", "Marge", s.MarginPercent.StringFixed(2))
	fmt.Fprintf(w, "  %-22s %17s%%\n", "Taux d'encaissement", s.CollectionRate.StringFixed(2))
	fmt.Fprintf(w, "  %-22s %17s%%\n", "Budget consommé", s.BudgetUsedPercent.StringFixed(2))
	rule(w, 50)
	fmt.Fprintf(w, "  %d devis (%d acceptés), %d paiements, %d dépenses\n", s.Quotes, s.AcceptedQuotes, s.Payments, s.Expenses)
	if s.Loss() {
		fmt.Fprintln(w, "  ⚠️  Chantier déficitaire")
	}
	fmt.Fprintln(w)
}

func printQuotes(w io.Writer, snap model.Snapshot, quotes []model.Quote) {
	if len(quotes) == 0 {
		fmt.Fprintln(w, "No quotes found.")
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-10s  %-10s  %-28s  %-10s  %14s\n", "ID", "Date", "Chantier", "Statut", "Total TTC")
	rule(w, 82)
	for _, q := range quotes {
		fmt.Fprintf(w, "  %-10s  %-10s  %-28s  %-10s  %14s\n",
			shortID(q.ID), q.Date.French(), truncate(snap.ProjectName(q.ProjectRef), 28), q.Status,
			model.FormatEUR(finance.QuoteTotals(q).TaxInclusive))
	}
	fmt.Fprintln(w)
}

func printQuote(w io.Writer, snap model.Snapshot, q model.Quote) {
	fmt.Fprintf(w, "\n📄 Devis %s  %s  %s\n", q.ID, q.Date.French(), q.Status)
	fmt.Fprintf(w, "   Chantier: %s\n", snap.ProjectName(q.ProjectRef))
	rule(w, 80)
	fmt.Fprintf(w, "  %-36s  %8s  %14s  %14s\n", "Désignation", "Qté", "P.U.", "Total HT")
	for _, li := range q.LineItems {
		fmt.Fprintf(w, "  %-36s  %8s  %14s  %14s\n",
			truncate(li.Designation, 36), li.Quantity.String(), model.FormatEUR(li.UnitPrice),
			model.FormatEUR(finance.LineTotal(li)))
	}
	rule(w, 80)
	t := finance.QuoteTotals(q)
	fmt.Fprintf(w, "  %62s  %14s\n", "Total HT", model.FormatEUR(t.PreTax))
	fmt.Fprintf(w, "  %62s  %14s\n", "TVA "+q.TaxRate.Shift(2).StringFixed(1)+"%", model.FormatEUR(t.Tax))
	fmt.Fprintf(w, "  %62s  %14s\n\n", "Total TTC", model.FormatEUR(t.TaxInclusive))
}

func printPayments(w io.Writer, snap model.Snapshot, payments []model.Payment) {
	if len(payments) == 0 {
		fmt.Fprintln(w, "No payments found.")
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-10s  %-10s  %-28s  %-13s  %14s\n", "ID", "Date", "Chantier", "Méthode", "Montant")
	rule(w, 85)
	for _, p := range payments {
		fmt.Fprintf(w, "  %-10s  %-10s  %-28s  %-13s  %14s\n",
			shortID(p.ID), p.Date.French(), truncate(snap.ProjectName(p.ProjectRef), 28), p.Method,
			model.FormatEUR(p.Amount))
	}
	rule(w, 85)
	fmt.Fprintf(w, "  %-67s  %14s\n\n", "Total", model.FormatEUR(finance.TotalCollected(payments)))
}

func printExpenses(w io.Writer, snap model.Snapshot, expenses []model.Expense) {
	if len(expenses) == 0 {
		fmt.Fprintln(w, "No expenses found.")
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-10s  %-10s  %-22s  %-13s  %-24s  %14s\n", "ID", "Date", "Chantier", "Type", "Description", "Montant")
	rule(w, 106)
	var total model.Money
	for _, e := range expenses {
		total += e.Amount
		fmt.Fprintf(w, "  %-10s  %-10s  %-22s  %-13s  %-24s  %14s\n",
			shortID(e.ID), e.Date.French(), truncate(snap.ProjectName(e.ProjectRef), 22), e.Type,
			truncate(e.Description, 24), model.FormatEUR(e.Amount))
	}
	rule(w, 106)
	fmt.Fprintf(w, "  %-88s  %14s\n\n", "Total", model.FormatEUR(total))
}

func printPayment(w io.Writer, snap model.Snapshot, p model.Payment) {
	fmt.Fprintf(w, "\n💶 Paiement %s\n", p.ID)
	rule(w, 50)
	fmt.Fprintf(w, "  %-12s %s\n", "Chantier", snap.ProjectName(p.ProjectRef))
	fmt.Fprintf(w, "  %-12s %s\n", "Date", p.Date.French())
	fmt.Fprintf(w, "  %-12s %s\n", "Méthode", p.Method)
	fmt.Fprintf(w, "  %-12s %s\n\n", "Montant", model.FormatEUR(p.Amount))
}

func printExpense(w io.Writer, snap model.Snapshot, e model.Expense) {
	fmt.Fprintf(w, "\n🧾 Dépense %s\n", e.ID)
	rule(w, 50)
	fmt.Fprintf(w, "  %-12s %s\n", "Chantier", snap.ProjectName(e.ProjectRef))
	fmt.Fprintf(w, "  %-12s %s\n", "Date", e.Date.French())
	fmt.Fprintf(w, "  %-12s %s\n", "Type", e.Type)
	fmt.Fprintf(w, "  %-12s %s\n", "Description", e.Description)
	if e.Provider != "" {
		fmt.Fprintf(w, "  %-12s %s\n", "Fournisseur", e.Provider)
	}
	if e.ProofURL != "" {
		fmt.Fprintf(w, "  %-12s %s\n", "Justificatif", e.ProofURL)
	}
	fmt.Fprintf(w, "  %-12s %s\n\n", "Montant", model.FormatEUR(e.Amount))
}

func printOverview(w io.Writer, o finance.Overview) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %d chantiers (%d en cours), %d devis en attente\n", o.Projects, o.ActiveProjects, o.PendingQuotes)
	rule(w, 60)
	fmt.Fprintf(w, "  %-26s %18s\n", "Budget total", model.FormatEUR(o.TotalBudget))
	fmt.Fprintf(w, "  %-26s %18s\n", "Devis acceptés TTC", model.FormatEUR(o.CommittedRevenue))
	fmt.Fprintf(w, "  %-26s %18s  (%s%%)\n", "Encaissé", model.FormatEUR(o.Collected), o.CollectedPercent.StringFixed(2))
	fmt.Fprintf(w, "  %-26s %18s\n", "Dépenses", model.FormatEUR(o.Spent))
	rule(w, 60)
	for _, row := range o.Rows {
		fmt.Fprintf(w, "  %s %-36s  net %14s  marge %7s%%\n",
			statusIcon(row.Project.Status), truncate(row.Project.Name, 36),
			model.FormatEUR(row.Summary.NetProfit), row.Summary.MarginPercent.StringFixed(2))
	}
	fmt.Fprintln(w)
}
