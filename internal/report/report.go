// Package report renders project reports and quotes as PDF documents.
package report

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/model"
	"github.com/go-pdf/fpdf"
)

type rgb struct{ r, g, b int }

var (
	primary   = rgb{15, 23, 42}
	gray      = rgb{100, 116, 139}
	lightGray = rgb{241, 245, 249}
	border    = rgb{226, 232, 240}
	emerald   = rgb{16, 185, 129}
	emerald50 = rgb{240, 253, 244}
	rose      = rgb{225, 29, 72}
	rose50    = rgb{255, 241, 242}
	blue      = rgb{37, 99, 235}
	blue50    = rgb{239, 246, 255}
)

const (
	margin   = 14.0
	rowH     = 8.0
	footerH  = 15.0
	brand    = "DASHBOARD BTP"
	fontName = "Helvetica"
)

// doc wraps fpdf with the cp1252 translation the core fonts need.
type doc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	w   float64
	h   float64
}

func newDoc(title string, now time.Time) *doc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, footerH+5)
	pdf.SetCreationDate(now)
	pdf.SetTitle(title, true)
	pdf.SetCreator("chantier", true)

	d := &doc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("cp1252")}
	d.w, d.h = pdf.GetPageSize()

	generated := "Généré le " + model.DateOf(now).French()
	pdf.SetFooterFunc(func() {
		pdf.SetY(-footerH)
		d.font("", 8, gray)
		pdf.CellFormat(d.w/2-margin, 10, d.tr(generated), "", 0, "L", false, 0, "")
		pdf.CellFormat(d.w/2-margin, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()
	return d
}

func (d *doc) font(style string, size float64, c rgb) {
	d.pdf.SetFont(fontName, style, size)
	d.pdf.SetTextColor(c.r, c.g, c.b)
}

func (d *doc) fill(c rgb) {
	d.pdf.SetFillColor(c.r, c.g, c.b)
}

// header draws the dark band at the top of the first page.
func (d *doc) header(subtitle string) {
	d.fill(primary)
	d.pdf.Rect(0, 0, d.w, 40, "F")
	d.font("B", 24, rgb{255, 255, 255})
	d.pdf.Text(margin, 25, d.tr(brand))
	d.font("", 12, rgb{255, 255, 255})
	sub := d.tr(subtitle)
	d.pdf.Text(d.w-margin-d.pdf.GetStringWidth(sub), 25, sub)
	d.pdf.SetY(48)
}

// field draws a small caption over a bold value at (x, y).
func (d *doc) field(x, y float64, label, value string) {
	d.font("", 10, gray)
	d.pdf.Text(x, y, d.tr(label))
	d.font("B", 10, primary)
	if value == "" {
		value = "-"
	}
	d.pdf.Text(x, y+5, d.tr(value))
}

func (d *doc) section(title string) {
	d.ensure(30)
	d.pdf.Ln(6)
	d.font("B", 14, primary)
	d.pdf.CellFormat(0, 8, d.tr(title), "", 1, "L", false, 0, "")
	d.pdf.Ln(2)
}

func (d *doc) note(text string) {
	d.font("I", 10, gray)
	d.pdf.CellFormat(0, rowH, d.tr(text), "", 1, "L", false, 0, "")
}

// ensure starts a new page when less than space is left above the footer.
func (d *doc) ensure(space float64) bool {
	if d.pdf.GetY()+space > d.h-footerH-5 {
		d.pdf.AddPage()
		return true
	}
	return false
}

type column struct {
	title string
	width float64
	align string
	bold  bool
}

type table struct {
	cols []column
	head rgb
	alt  rgb
}

// table renders rows, repeating the header after each page break.
func (d *doc) table(t table, rows [][]string) {
	drawHead := func() {
		d.fill(t.head)
		d.pdf.SetDrawColor(border.r, border.g, border.b)
		d.font("B", 10, rgb{255, 255, 255})
		for _, c := range t.cols {
			d.pdf.CellFormat(c.width, rowH, d.tr(c.title), "1", 0, "L", true, 0, "")
		}
		d.pdf.Ln(-1)
	}

	drawHead()
	for i, row := range rows {
		if d.ensure(rowH) {
			drawHead()
		}
		d.fill(t.alt)
		for j, c := range t.cols {
			style := ""
			if c.bold {
				style = "B"
			}
			d.font(style, 9, primary)
			align := c.align
			if align == "" {
				align = "L"
			}
			d.pdf.CellFormat(c.width, rowH, d.tr(row[j]), "1", 0, align, i%2 == 1, 0, "")
		}
		d.pdf.Ln(-1)
	}
}

func (d *doc) output(w io.Writer) error {
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ProjectReport writes the financial report of p: project details, the
// synthesis table of s, then the payments and expenses.
func ProjectReport(w io.Writer, p model.Project, s finance.Summary, payments []model.Payment, expenses []model.Expense, now time.Time) error {
	d := newDoc("Rapport "+p.Name, now)
	d.header("Rapport de Chantier")

	d.font("B", 18, primary)
	d.pdf.CellFormat(0, 10, d.tr(p.Name), "", 1, "L", false, 0, "")

	left, right := margin, d.w/2+10
	y := d.pdf.GetY() + 4
	d.field(left, y, "CLIENT", p.Client)
	d.field(right, y, "LIEU", p.Location)
	y += 15
	d.field(left, y, "DATE DE DÉBUT", p.StartDate.French())
	d.field(right, y, "STATUT", string(p.Status))
	d.pdf.SetY(y + 10)

	d.section("Synthèse Financière")
	inner := d.w - 2*margin
	d.table(table{
		cols: []column{
			{title: "Indicateur", width: inner * 0.6, bold: true},
			{title: "Montant", width: inner * 0.4, align: "R"},
		},
		head: primary,
		alt:  lightGray,
	}, [][]string{
		{"Budget Prévu", model.FormatEUR(p.Budget)},
		{"Total Devis TTC", model.FormatEUR(s.CommittedRevenue)},
		{"Total Encaissé", model.FormatEUR(s.Collected)},
		{"Total Dépenses", model.FormatEUR(s.Spent)},
		{"Bénéfice Net", model.FormatEUR(s.NetProfit)},
		{"Reste à encaisser", model.FormatEUR(s.OutstandingBalance)},
		{"Marge", s.MarginPercent.StringFixed(2) + "%"},
	})

	d.section("Encaissements Réalisés")
	if len(payments) == 0 {
		d.note("Aucun encaissement enregistré.")
	} else {
		rows := make([][]string, 0, len(payments))
		for _, pay := range payments {
			rows = append(rows, []string{pay.Date.French(), string(pay.Method), model.FormatEUR(pay.Amount)})
		}
		d.table(table{
			cols: []column{
				{title: "Date", width: inner * 0.3},
				{title: "Méthode", width: inner * 0.4},
				{title: "Montant", width: inner * 0.3, align: "R", bold: true},
			},
			head: emerald,
			alt:  emerald50,
		}, rows)
	}

	d.section("Détail des Dépenses")
	if len(expenses) == 0 {
		d.note("Aucune dépense enregistrée.")
	} else {
		rows := make([][]string, 0, len(expenses))
		for _, e := range expenses {
			rows = append(rows, []string{
				e.Date.French(),
				strings.ToUpper(string(e.Type)),
				e.Description,
				e.Provider,
				model.FormatEUR(e.Amount),
			})
		}
		d.table(table{
			cols: []column{
				{title: "Date", width: inner * 0.15},
				{title: "Type", width: inner * 0.18},
				{title: "Description", width: inner * 0.29},
				{title: "Fournisseur", width: inner * 0.2},
				{title: "Montant", width: inner * 0.18, align: "R", bold: true},
			},
			head: rose,
			alt:  rose50,
		}, rows)
	}

	return d.output(w)
}

// QuoteDocument writes q as a printable devis with its HT, TVA and TTC totals.
func QuoteDocument(w io.Writer, q model.Quote, p model.Project, now time.Time) error {
	d := newDoc("Devis "+q.ID, now)
	d.header("Devis")

	d.font("B", 18, primary)
	d.pdf.CellFormat(0, 10, d.tr("Devis n° "+q.ID), "", 1, "L", false, 0, "")

	left, right := margin, d.w/2+10
	y := d.pdf.GetY() + 4
	d.field(left, y, "CHANTIER", p.Name)
	d.field(right, y, "CLIENT", p.Client)
	y += 15
	d.field(left, y, "DATE", q.Date.French())
	d.field(right, y, "STATUT", string(q.Status))
	d.pdf.SetY(y + 10)

	d.section("Prestations")
	inner := d.w - 2*margin
	rows := make([][]string, 0, len(q.LineItems))
	for _, li := range q.LineItems {
		rows = append(rows, []string{
			li.Designation,
			strings.Replace(li.Quantity.String(), ".", ",", 1),
			model.FormatEUR(li.UnitPrice),
			model.FormatEUR(finance.LineTotal(li)),
		})
	}
	if len(rows) == 0 {
		d.note("Aucune prestation.")
	} else {
		d.table(table{
			cols: []column{
				{title: "Désignation", width: inner * 0.46},
				{title: "Quantité", width: inner * 0.14, align: "R"},
				{title: "Prix unitaire", width: inner * 0.2, align: "R"},
				{title: "Total HT", width: inner * 0.2, align: "R", bold: true},
			},
			head: blue,
			alt:  blue50,
		}, rows)
	}

	t := finance.QuoteTotals(q)
	d.pdf.Ln(4)
	d.ensure(3 * rowH)
	labelW, valueW := inner*0.8, inner*0.2
	for _, line := range []struct {
		label string
		value model.Money
		style string
	}{
		{"Total HT", t.PreTax, ""},
		{"TVA " + q.TaxRate.Shift(2).StringFixed(1) + "%", t.Tax, ""},
		{"Total TTC", t.TaxInclusive, "B"},
	} {
		d.font(line.style, 10, primary)
		d.pdf.CellFormat(labelW, rowH, d.tr(line.label), "", 0, "R", false, 0, "")
		d.pdf.CellFormat(valueW, rowH, d.tr(model.FormatEUR(line.value)), "", 1, "R", false, 0, "")
	}

	return d.output(w)
}

var unsafeName = regexp.MustCompile(`[\s/\\:*?"<>|]+`)

// FileName is the download name of the report of p generated at now.
func FileName(p model.Project, now time.Time) string {
	return fmt.Sprintf("Rapport_%s_%s.pdf", unsafeName.ReplaceAllString(p.Name, "_"), now.Format("02-01-2006"))
}

// QuoteFileName is the download name of the quote document.
func QuoteFileName(q model.Quote, now time.Time) string {
	return fmt.Sprintf("Devis_%s_%s.pdf", unsafeName.ReplaceAllString(q.ID, "_"), now.Format("02-01-2006"))
}
