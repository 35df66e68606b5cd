package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one priced row of a quote.
type LineItem struct {
	ID          string          `json:"id"`
	Designation string          `json:"designation"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   Money           `json:"unitPrice"`
}

// Quote is a devis: an itemized, tax-rated proposal for a project.
type Quote struct {
	ID         string          `json:"id"`
	ProjectRef ProjectRef      `json:"chantierId"`
	Date       Date            `json:"date"`
	Status     QuoteStatus     `json:"status"`
	TaxRate    decimal.Decimal `json:"tvaRate"`
	LineItems  []LineItem      `json:"lineItems"`
}

func (q Quote) GetID() string     { return q.ID }
func (q *Quote) SetID(id string)  { q.ID = id }
func (q Quote) Ref() ProjectRef   { return q.ProjectRef }
func (q Quote) IsAccepted() bool  { return q.Status == QuoteAccepted }
func (q Quote) ProjectID() string { return q.ProjectRef.ID() }

func (q Quote) Validate() error {
	if _, ok := ResolveRef(q.ProjectRef); !ok {
		return fmt.Errorf("%w: quote has no project", ErrInvalid)
	}
	if q.Date.IsZero() {
		return fmt.Errorf("%w: quote date is required", ErrInvalid)
	}
	if !q.Status.Valid() {
		return fmt.Errorf("%w: unknown quote status %q", ErrInvalid, q.Status)
	}
	if q.TaxRate.IsNegative() {
		return fmt.Errorf("%w: tax rate must not be negative", ErrInvalid)
	}
	for i, li := range q.LineItems {
		if strings.TrimSpace(li.Designation) == "" {
			return fmt.Errorf("%w: line %d has no designation", ErrInvalid, i+1)
		}
		if li.Quantity.IsNegative() || li.UnitPrice < 0 {
			return fmt.Errorf("%w: line %d has a negative quantity or price", ErrInvalid, i+1)
		}
	}
	return nil
}

func (q *Quote) UnmarshalJSON(data []byte) error {
	type alias Quote
	aux := struct {
		*alias
		AltID string `json:"_id"`
	}{alias: (*alias)(q)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if q.ID == "" {
		q.ID = aux.AltID
	}
	return nil
}

func (li *LineItem) UnmarshalJSON(data []byte) error {
	type alias LineItem
	aux := struct {
		*alias
		AltID string `json:"_id"`
	}{alias: (*alias)(li)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if li.ID == "" {
		li.ID = aux.AltID
	}
	return nil
}

// QuotePatch is a partial quote update. A nil LineItems leaves the lines as
// they are; a non-nil one replaces them all.
type QuotePatch struct {
	ProjectRef *ProjectRef      `json:"chantierId,omitempty"`
	Date       *Date            `json:"date,omitempty"`
	Status     *QuoteStatus     `json:"status,omitempty"`
	TaxRate    *decimal.Decimal `json:"tvaRate,omitempty"`
	LineItems  []LineItem       `json:"lineItems,omitempty"`
}

// MarshalJSON keeps an empty, non-nil LineItems in the payload so that a
// patch clearing every line survives the trip to the server.
func (qp QuotePatch) MarshalJSON() ([]byte, error) {
	type alias QuotePatch
	if qp.LineItems != nil && len(qp.LineItems) == 0 {
		return json.Marshal(struct {
			alias
			LineItems []LineItem `json:"lineItems"`
		}{alias: alias(qp), LineItems: []LineItem{}})
	}
	return json.Marshal(alias(qp))
}

func (qp QuotePatch) Apply(q *Quote) {
	if qp.ProjectRef != nil {
		q.ProjectRef = *qp.ProjectRef
	}
	if qp.Date != nil {
		q.Date = *qp.Date
	}
	if qp.Status != nil {
		q.Status = *qp.Status
	}
	if qp.TaxRate != nil {
		q.TaxRate = *qp.TaxRate
	}
	if qp.LineItems != nil {
		q.LineItems = append([]LineItem(nil), qp.LineItems...)
	}
}
