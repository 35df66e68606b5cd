package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveRef(t *testing.T) {
	tests := []struct {
		name   string
		json   string
		wantID string
		wantOK bool
		kind   RefKind
	}{
		{"bare string", `"p1"`, "p1", true, RefID},
		{"object with id", `{"id":"p1","name":"Villa"}`, "p1", true, RefEmbedded},
		{"object with _id", `{"_id":"p1","name":"Villa"}`, "p1", true, RefEmbedded},
		{"id wins over _id", `{"id":"p1","_id":"mongo-9"}`, "p1", true, RefEmbedded},
		{"numeric id", `{"_id":42}`, "42", true, RefEmbedded},
		{"object without key", `{"name":"Villa"}`, "", false, RefEmbedded},
		{"null", `null`, "", false, RefNone},
		{"empty string", `""`, "", false, RefID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ref ProjectRef
			require.NoError(t, json.Unmarshal([]byte(tt.json), &ref))

			id, ok := ResolveRef(ref)
			require.Equal(t, tt.wantID, id)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.kind, ref.Kind())
		})
	}
}

func TestProjectRefMatches(t *testing.T) {
	require.True(t, RefTo("p1").Matches("p1"))
	require.False(t, RefTo("p1").Matches("p2"))
	require.False(t, ProjectRef{}.Matches(""))
	require.False(t, RefTo("").Matches(""))
	require.True(t, RefEmbed(EmbeddedProject{AltID: "p1"}).Matches("p1"))
}

func TestProjectRefMarshalsAsIdentifier(t *testing.T) {
	data, err := json.Marshal(RefEmbed(EmbeddedProject{AltID: "abc"}))
	require.NoError(t, err)
	require.JSONEq(t, `"abc"`, string(data))

	data, err = json.Marshal(ProjectRef{})
	require.NoError(t, err)
	require.Equal(t, "null", string(data))
}

func TestEmbeddedProjectKeepsFields(t *testing.T) {
	var p Payment
	require.NoError(t, json.Unmarshal([]byte(`{
		"_id": "pay-1",
		"chantierId": {"_id": "c1", "name": "Rénovation", "budget": 45000},
		"amount": 5000,
		"date": "2025-01-12T00:00:00.000Z",
		"method": "Virement"
	}`), &p))

	require.Equal(t, "pay-1", p.ID)
	require.Equal(t, "c1", p.ProjectID())
	e, ok := p.ProjectRef.Embedded()
	require.True(t, ok)
	require.Equal(t, "Rénovation", e.Project.Name)
	require.Equal(t, Euros(45000), e.Project.Budget)
	require.Equal(t, NewDate(2025, 1, 12), p.Date)
}

func TestEmbeddedProjectWithBadFieldStillResolves(t *testing.T) {
	var ref ProjectRef
	require.NoError(t, json.Unmarshal([]byte(`{"_id": "c1", "name": 42}`), &ref))

	id, ok := ResolveRef(ref)
	require.True(t, ok)
	require.Equal(t, "c1", id)
	e, ok := ref.Embedded()
	require.True(t, ok)
	require.True(t, e.Incomplete)

	require.NoError(t, json.Unmarshal([]byte(`{"_id": "c2", "name": "Cuisine"}`), &ref))
	e, ok = ref.Embedded()
	require.True(t, ok)
	require.False(t, e.Incomplete)
	require.Equal(t, "Cuisine", e.Project.Name)
}
