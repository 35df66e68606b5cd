package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/model"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(Config{
		DatabaseURL: filepath.Join(t.TempDir(), "server.db"),
		JWTSecret:   "test-secret",
	})
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func call(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, srv *Server, email string) string {
	t.Helper()
	rec := call(t, srv, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     "Chef de chantier",
		"email":    email,
		"password": "motdepasse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	require.Equal(t, email, res.User.Email)
	return res.Token
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := call(t, srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(Config{DatabaseURL: filepath.Join(t.TempDir(), "x.db")})
	require.Error(t, err)
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "chef@example.com")

	rec := call(t, srv, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	require.Equal(t, "chef@example.com", me.Email)
	require.Equal(t, "Chef de chantier", me.Name)

	t.Run("duplicate email", func(t *testing.T) {
		rec := call(t, srv, http.MethodPost, "/auth/register", "", map[string]string{
			"email":    "CHEF@example.com",
			"password": "autrepasse",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("short password", func(t *testing.T) {
		rec := call(t, srv, http.MethodPost, "/auth/register", "", map[string]string{
			"email":    "new@example.com",
			"password": "court",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login", func(t *testing.T) {
		rec := call(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "chef@example.com",
			"password": "motdepasse",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := call(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "chef@example.com",
			"password": "mauvais-passe",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := call(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "nobody@example.com",
			"password": "motdepasse",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	srv := newTestServer(t)

	rec := call(t, srv, http.MethodGet, "/chantiers", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, srv, http.MethodGet, "/chantiers", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "invalid token", body.Message)
}

func TestExpiredToken(t *testing.T) {
	srv := newTestServer(t)
	srv.ttl = -time.Minute
	token, _, err := srv.issueToken(model.User{ID: "u1", Email: "a@b.c"})
	require.NoError(t, err)

	rec := call(t, srv, http.MethodGet, "/chantiers", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "token expired")
}

func TestProjectCRUD(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "chef@example.com")

	rec := call(t, srv, http.MethodPost, "/chantiers", token, map[string]any{
		"name":      "Extension garage",
		"client":    "M. Bernard",
		"location":  "Nantes",
		"startDate": "2025-03-01",
		"budget":    18000,
		"status":    "En cours",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, model.Euros(18000), created.Budget)

	rec = call(t, srv, http.MethodPut, "/chantiers/"+created.ID, token, map[string]any{
		"status": "Terminé",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, model.ProjectCompleted, updated.Status)
	require.Equal(t, "Extension garage", updated.Name)

	rec = call(t, srv, http.MethodGet, "/chantiers", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = call(t, srv, http.MethodDelete, "/chantiers/"+created.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(t, srv, http.MethodGet, "/chantiers/"+created.ID, token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRejectsInvalidRecord(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "chef@example.com")

	rec := call(t, srv, http.MethodPost, "/chantiers", token, map[string]any{
		"client":    "M. Bernard",
		"startDate": "2025-03-01",
		"status":    "En cours",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "project name is required")
}

func TestUsersSeeOnlyTheirRecords(t *testing.T) {
	srv := newTestServer(t)
	alice := register(t, srv, "alice@example.com")
	bob := register(t, srv, "bob@example.com")

	rec := call(t, srv, http.MethodPost, "/chantiers", alice, map[string]any{
		"name":      "Cuisine",
		"client":    "Alice",
		"startDate": "2025-04-01",
		"budget":    9000,
		"status":    "En cours",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var p model.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))

	rec = call(t, srv, http.MethodGet, "/chantiers/"+p.ID, bob, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, srv, http.MethodGet, "/chantiers", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "chef@example.com")

	rec := call(t, srv, http.MethodPost, "/chantiers", token, map[string]any{
		"id":        "1",
		"name":      "Rénovation Appartement Paris",
		"client":    "Jean Dupont",
		"startDate": "2025-01-15",
		"budget":    45000,
		"status":    "En cours",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(t, srv, http.MethodPost, "/devis", token, map[string]any{
		"chantierId": map[string]any{"_id": "1", "name": "Rénovation Appartement Paris"},
		"date":       "2025-01-10",
		"status":     "Accepté",
		"tvaRate":    0.2,
		"lineItems": []map[string]any{
			{"designation": "Peinture", "quantity": 120, "unitPrice": 25},
			{"designation": "Parquet", "quantity": 45, "unitPrice": 85},
			{"designation": "Prises", "quantity": 12, "unitPrice": 45},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(t, srv, http.MethodPost, "/payments", token, map[string]any{
		"chantierId": "1",
		"amount":     5000,
		"date":       "2025-01-12",
		"method":     "Virement",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, e := range []map[string]any{
		{"chantierId": "1", "type": "matériaux", "description": "Peinture", "amount": 1250, "date": "2025-01-20"},
		{"chantierId": "1", "type": "main-d’œuvre", "description": "Renfort", "amount": 2400, "date": "2025-01-25"},
	} {
		rec = call(t, srv, http.MethodPost, "/expenses", token, e)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = call(t, srv, http.MethodGet, "/chantiers/1/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sum finance.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	require.Equal(t, model.Euros(8838), sum.CommittedRevenue)
	require.Equal(t, model.Euros(5000), sum.Collected)
	require.Equal(t, model.Euros(3650), sum.Spent)
	require.Equal(t, model.Euros(3838), sum.OutstandingBalance)
	require.Equal(t, model.Euros(1350), sum.NetProfit)
	require.Equal(t, "27", sum.MarginPercent.String())

	rec = call(t, srv, http.MethodGet, "/chantiers/missing/summary", token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, srv, http.MethodGet, "/overview", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ov finance.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ov))
	require.Equal(t, 1, ov.Projects)
	require.Equal(t, model.Euros(5000), ov.Collected)
}
