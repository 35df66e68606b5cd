package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func validProject() Project {
	return Project{
		ID:        "1",
		Name:      "Rénovation Appartement Paris",
		Client:    "Jean Dupont",
		Location:  "Paris XV",
		StartDate: NewDate(2025, 1, 15),
		Budget:    Euros(45000),
		Status:    ProjectInProgress,
	}
}

func TestProjectValidate(t *testing.T) {
	require.NoError(t, validProject().Validate())

	end := NewDate(2024, 12, 31)
	tests := map[string]func(p *Project){
		"blank name":     func(p *Project) { p.Name = "  " },
		"no client":      func(p *Project) { p.Client = "" },
		"no start":       func(p *Project) { p.StartDate = Date{} },
		"negative":       func(p *Project) { p.Budget = -1 },
		"unknown status": func(p *Project) { p.Status = "Ouvert" },
		"end before":     func(p *Project) { p.EndDate = &end },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := validProject()
			mutate(&p)
			require.ErrorIs(t, p.Validate(), ErrInvalid)
		})
	}
}

func TestProjectAltID(t *testing.T) {
	var p Project
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"65a1","name":"Villa","status":"Terminé","startDate":"2024-11-01"}`), &p))
	require.Equal(t, "65a1", p.ID)
	require.Equal(t, ProjectCompleted, p.Status)
	require.Equal(t, NewDate(2024, 11, 1), p.StartDate)
}

func TestProjectPatchApply(t *testing.T) {
	p := validProject()
	name := "Villa"
	status := ProjectSuspended
	end := NewDate(2025, 6, 30)
	ProjectPatch{Name: &name, Status: &status, EndDate: &end}.Apply(&p)

	require.Equal(t, "Villa", p.Name)
	require.Equal(t, ProjectSuspended, p.Status)
	require.Equal(t, "Jean Dupont", p.Client)
	require.NotNil(t, p.EndDate)
	require.Equal(t, end, *p.EndDate)

	ProjectPatch{EndDate: &Date{}}.Apply(&p)
	require.Nil(t, p.EndDate)
}

func TestPatchMarshalsOnlySetFields(t *testing.T) {
	amount := Euros(10)
	data, err := json.Marshal(PaymentPatch{Amount: &amount})
	require.NoError(t, err)
	require.JSONEq(t, `{"amount":10}`, string(data))
}

func TestProjectPatchClearsEndDateOverJSON(t *testing.T) {
	data, err := json.Marshal(ProjectPatch{EndDate: &Date{}})
	require.NoError(t, err)
	require.JSONEq(t, `{"endDate":""}`, string(data))

	var patch ProjectPatch
	require.NoError(t, json.Unmarshal(data, &patch))
	require.NotNil(t, patch.EndDate)

	p := validProject()
	end := NewDate(2025, 6, 30)
	p.EndDate = &end
	patch.Apply(&p)
	require.Nil(t, p.EndDate)
}

func TestQuotePatchClearsLinesOverJSON(t *testing.T) {
	data, err := json.Marshal(QuotePatch{LineItems: []LineItem{}})
	require.NoError(t, err)
	require.JSONEq(t, `{"lineItems":[]}`, string(data))

	data, err = json.Marshal(QuotePatch{})
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(data))

	var patch QuotePatch
	require.NoError(t, json.Unmarshal([]byte(`{"lineItems":[]}`), &patch))
	q := Quote{LineItems: []LineItem{{Designation: "Carrelage"}}}
	patch.Apply(&q)
	require.Empty(t, q.LineItems)
}

func TestParseAliases(t *testing.T) {
	s, err := ParseProjectStatus("en-cours")
	require.NoError(t, err)
	require.Equal(t, ProjectInProgress, s)

	q, err := ParseQuoteStatus("Accepté")
	require.NoError(t, err)
	require.Equal(t, QuoteAccepted, q)

	m, err := ParsePaymentMethod("mobile-money")
	require.NoError(t, err)
	require.Equal(t, PaymentMobileMoney, m)

	e, err := ParseExpenseType("Main-d'oeuvre")
	require.NoError(t, err)
	require.Equal(t, ExpenseLabor, e)

	_, err = ParseQuoteStatus("maybe")
	require.ErrorIs(t, err, ErrInvalid)
}
