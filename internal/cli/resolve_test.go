package cli

import (
	"testing"

	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestResolveProject(t *testing.T) {
	projects := store.DemoData().Projects

	tests := []struct {
		name    string
		arg     string
		wantID  string
		wantErr string
	}{
		{name: "by id", arg: "2", wantID: "2"},
		{name: "by name ignoring case", arg: "réfection toiture école", wantID: "3"},
		{name: "by fragment", arg: "villa", wantID: "2"},
		{name: "suggestion", arg: "Renovation Apartement Paris", wantErr: `did you mean "Rénovation Appartement Paris"?`},
		{name: "ambiguous fragment", arg: "r", wantErr: "matches several projects"},
		{name: "unknown", arg: "zzzzzzzzzzzzzzzzzzzzzz", wantErr: "not found"},
		{name: "empty", arg: " ", wantErr: "no project given"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := resolveProject(projects, tt.arg)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, p.ID)
		})
	}
}

func TestFindByID(t *testing.T) {
	payments := []model.Payment{
		{ID: "a1b2c3d4-0000"},
		{ID: "a1b2ffff-0000"},
		{ID: "p1"},
	}

	p, err := findByID(payments, "p1", "payment")
	require.NoError(t, err)
	require.Equal(t, "p1", p.ID)

	p, err = findByID(payments, "a1b2c", "payment")
	require.NoError(t, err)
	require.Equal(t, "a1b2c3d4-0000", p.ID)

	_, err = findByID(payments, "a1b2", "payment")
	require.ErrorContains(t, err, "ambiguous")

	_, err = findByID(payments, "zz", "payment")
	require.ErrorContains(t, err, "payment not found")

	_, err = findByID(payments, "", "payment")
	require.Error(t, err)
}

func TestParseLine(t *testing.T) {
	li, err := parseLine("Pose parquet chêne; 45 ; 85,50")
	require.NoError(t, err)
	require.Equal(t, "Pose parquet chêne", li.Designation)
	require.True(t, li.Quantity.Equal(decimal.NewFromInt(45)))
	require.Equal(t, model.Money(8550), li.UnitPrice)
	require.NotEmpty(t, li.ID)

	li, err = parseLine("Dalle; béton;2,5;120")
	require.NoError(t, err)
	require.Equal(t, "Dalle; béton", li.Designation)
	require.Equal(t, "2.5", li.Quantity.String())

	for _, bad := range []string{"Peinture;10", ";1;2", "Peinture;dix;25", "Peinture;10;beaucoup"} {
		_, err := parseLine(bad)
		require.Error(t, err, bad)
	}
}

func TestSlugID(t *testing.T) {
	free := func(string) bool { return false }
	require.Equal(t, "renovation-appartement-paris-xv", slugID("Rénovation Appartement (Paris XV)", free))
	require.Equal(t, "main-d-oeuvre", slugID("Main-d'Œuvre", free))

	taken := func(id string) bool { return id == "villa" }
	id := slugID("Villa", taken)
	require.NotEqual(t, "villa", id)
	require.Len(t, id, 8)

	require.Len(t, slugID("!!!", free), 8)
}

func TestTaxRate(t *testing.T) {
	r, err := taxRate("20")
	require.NoError(t, err)
	require.Equal(t, "0.2", r.String())

	r, err = taxRate("5,5")
	require.NoError(t, err)
	require.Equal(t, "0.055", r.String())

	r, err = taxRate("5.555")
	require.NoError(t, err)
	require.Equal(t, "0.05555", r.String())

	r, err = taxRate(" 8,125 %")
	require.NoError(t, err)
	require.Equal(t, "0.08125", r.String())

	_, err = taxRate("vingt")
	require.Error(t, err)
}
