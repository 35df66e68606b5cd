package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid marks a record that fails validation.
var ErrInvalid = errors.New("invalid")

// Project represents a chantier: a construction job with a client, a budget
// and a schedule.
type Project struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Client    string        `json:"client"`
	Location  string        `json:"location"`
	StartDate Date          `json:"startDate"`
	EndDate   *Date         `json:"endDate,omitempty"`
	Budget    Money         `json:"budget"`
	Status    ProjectStatus `json:"status"`
}

func (p Project) GetID() string    { return p.ID }
func (p *Project) SetID(id string) { p.ID = id }

// Validate checks the fields a project form requires.
func (p Project) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: project name is required", ErrInvalid)
	case strings.TrimSpace(p.Client) == "":
		return fmt.Errorf("%w: client is required", ErrInvalid)
	case p.StartDate.IsZero():
		return fmt.Errorf("%w: start date is required", ErrInvalid)
	case p.Budget < 0:
		return fmt.Errorf("%w: budget must not be negative", ErrInvalid)
	case !p.Status.Valid():
		return fmt.Errorf("%w: unknown project status %q", ErrInvalid, p.Status)
	case p.EndDate != nil && !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate):
		return fmt.Errorf("%w: end date is before start date", ErrInvalid)
	}
	return nil
}

func (p *Project) UnmarshalJSON(data []byte) error {
	type alias Project
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

// ProjectPatch is a partial project update. Nil fields are left unchanged.
type ProjectPatch struct {
	Name      *string        `json:"name,omitempty"`
	Client    *string        `json:"client,omitempty"`
	Location  *string        `json:"location,omitempty"`
	StartDate *Date          `json:"startDate,omitempty"`
	EndDate   *Date          `json:"endDate,omitempty"`
	Budget    *Money         `json:"budget,omitempty"`
	Status    *ProjectStatus `json:"status,omitempty"`
}

// MarshalJSON sends a cleared end date as "" since null would decode to no
// change.
func (pp ProjectPatch) MarshalJSON() ([]byte, error) {
	type alias ProjectPatch
	if pp.EndDate != nil && pp.EndDate.IsZero() {
		return json.Marshal(struct {
			alias
			EndDate string `json:"endDate"`
		}{alias: alias(pp)})
	}
	return json.Marshal(alias(pp))
}

func (pp ProjectPatch) Apply(p *Project) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Client != nil {
		p.Client = *pp.Client
	}
	if pp.Location != nil {
		p.Location = *pp.Location
	}
	if pp.StartDate != nil {
		p.StartDate = *pp.StartDate
	}
	if pp.EndDate != nil {
		if pp.EndDate.IsZero() {
			p.EndDate = nil
		} else {
			end := *pp.EndDate
			p.EndDate = &end
		}
	}
	if pp.Budget != nil {
		p.Budget = *pp.Budget
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
}
