// Package finance computes quote totals and per-project financial summaries
// from already-fetched collections. Nothing here performs I/O.
package finance

import (
	"github.com/existflow/chantier/internal/model"
	"github.com/shopspring/decimal"
)

// Totals are the amounts of one quote.
type Totals struct {
	PreTax       model.Money `json:"preTax"`
	Tax          model.Money `json:"tax"`
	TaxInclusive model.Money `json:"taxInclusive"`
}

// LineTotal is quantity × unit price, rounded to the cent.
func LineTotal(li model.LineItem) model.Money {
	return li.UnitPrice.Mul(li.Quantity)
}

// ComputeTotals sums the line items and applies taxRate to the pre-tax sum.
// TaxInclusive is always exactly PreTax + Tax.
func ComputeTotals(lines []model.LineItem, taxRate decimal.Decimal) Totals {
	var preTax model.Money
	for _, li := range lines {
		preTax += LineTotal(li)
	}
	tax := preTax.Mul(taxRate)
	return Totals{
		PreTax:       preTax,
		Tax:          tax,
		TaxInclusive: preTax + tax,
	}
}

// QuoteTotals is ComputeTotals over a quote's own lines and rate.
func QuoteTotals(q model.Quote) Totals {
	return ComputeTotals(q.LineItems, q.TaxRate)
}
