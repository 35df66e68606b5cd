package model

import (
	"encoding/json"
	"fmt"
)

// Payment is money received from the client against a project.
type Payment struct {
	ID         string        `json:"id"`
	ProjectRef ProjectRef    `json:"chantierId"`
	Amount     Money         `json:"amount"`
	Date       Date          `json:"date"`
	Method     PaymentMethod `json:"method"`
}

func (p Payment) GetID() string     { return p.ID }
func (p *Payment) SetID(id string)  { p.ID = id }
func (p Payment) Ref() ProjectRef   { return p.ProjectRef }
func (p Payment) ProjectID() string { return p.ProjectRef.ID() }

func (p Payment) Validate() error {
	switch {
	case p.ProjectRef.ID() == "":
		return fmt.Errorf("%w: payment has no project", ErrInvalid)
	case p.Amount < 0:
		return fmt.Errorf("%w: payment amount must not be negative", ErrInvalid)
	case p.Date.IsZero():
		return fmt.Errorf("%w: payment date is required", ErrInvalid)
	case !p.Method.Valid():
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalid, p.Method)
	}
	return nil
}

func (p *Payment) UnmarshalJSON(data []byte) error {
	type alias Payment
	aux := struct {
		*alias
		AltID string `json:"_id"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.AltID
	}
	return nil
}

type PaymentPatch struct {
	ProjectRef *ProjectRef    `json:"chantierId,omitempty"`
	Amount     *Money         `json:"amount,omitempty"`
	Date       *Date          `json:"date,omitempty"`
	Method     *PaymentMethod `json:"method,omitempty"`
}

func (pp PaymentPatch) Apply(p *Payment) {
	if pp.ProjectRef != nil {
		p.ProjectRef = *pp.ProjectRef
	}
	if pp.Amount != nil {
		p.Amount = *pp.Amount
	}
	if pp.Date != nil {
		p.Date = *pp.Date
	}
	if pp.Method != nil {
		p.Method = *pp.Method
	}
}
