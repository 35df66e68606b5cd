package model

import (
	"encoding/json"
	"fmt"
)

// Expense is money spent on a project's behalf.
type Expense struct {
	ID          string      `json:"id"`
	ProjectRef  ProjectRef  `json:"chantierId"`
	Type        ExpenseType `json:"type"`
	Description string      `json:"description"`
	Amount      Money       `json:"amount"`
	Provider    string      `json:"provider"`
	Date        Date        `json:"date"`
	ProofURL    string      `json:"proofUrl,omitempty"`
}

func (e Expense) GetID() string     { return e.ID }
func (e *Expense) SetID(id string)  { e.ID = id }
func (e Expense) Ref() ProjectRef   { return e.ProjectRef }
func (e Expense) ProjectID() string { return e.ProjectRef.ID() }

func (e Expense) Validate() error {
	switch {
	case e.ProjectRef.ID() == "":
		return fmt.Errorf("%w: expense has no project", ErrInvalid)
	case e.Amount < 0:
		return fmt.Errorf("%w: expense amount must not be negative", ErrInvalid)
	case e.Date.IsZero():
		return fmt.Errorf("%w: expense date is required", ErrInvalid)
	case !e.Type.Valid():
		return fmt.Errorf("%w: unknown expense type %q", ErrInvalid, e.Type)
	}
	return nil
}

func (e *Expense) UnmarshalJSON(data []byte) error {
	type alias Expense
	aux := struct {
		*alias
		AltID string `json:"_id"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = aux.AltID
	}
	return nil
}

type ExpensePatch struct {
	ProjectRef  *ProjectRef  `json:"chantierId,omitempty"`
	Type        *ExpenseType `json:"type,omitempty"`
	Description *string      `json:"description,omitempty"`
	Amount      *Money       `json:"amount,omitempty"`
	Provider    *string      `json:"provider,omitempty"`
	Date        *Date        `json:"date,omitempty"`
	ProofURL    *string      `json:"proofUrl,omitempty"`
}

func (ep ExpensePatch) Apply(e *Expense) {
	if ep.ProjectRef != nil {
		e.ProjectRef = *ep.ProjectRef
	}
	if ep.Type != nil {
		e.Type = *ep.Type
	}
	if ep.Description != nil {
		e.Description = *ep.Description
	}
	if ep.Amount != nil {
		e.Amount = *ep.Amount
	}
	if ep.Provider != nil {
		e.Provider = *ep.Provider
	}
	if ep.Date != nil {
		e.Date = *ep.Date
	}
	if ep.ProofURL != nil {
		e.ProofURL = *ep.ProofURL
	}
}
