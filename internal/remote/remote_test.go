package remote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/remote"
	"github.com/existflow/chantier/internal/store"
	"github.com/existflow/chantier/server"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, err := server.New(server.Config{
		DatabaseURL: filepath.Join(t.TempDir(), "remote.db"),
		JWTSecret:   "remote-test",
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts
}

func loggedInClient(t *testing.T, url string) *remote.Client {
	t.Helper()
	c, err := remote.NewClient(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	require.NoError(t, c.SetServer(url))
	require.NoError(t, c.Register(context.Background(), "Chef", "chef@example.com", "motdepasse"))
	require.True(t, c.IsLoggedIn())
	return c
}

func TestStoreRoundTrip(t *testing.T) {
	ts := startServer(t)
	c := loggedInClient(t, ts.URL)
	s := remote.NewStore(c)
	ctx := context.Background()

	require.Equal(t, store.ModeRemote, s.Mode())

	p, err := s.Projects().Create(ctx, model.Project{
		Name:      "Salle de bain",
		Client:    "Mme Petit",
		StartDate: model.NewDate(2025, 5, 2),
		Budget:    model.Euros(7000),
		Status:    model.ProjectInProgress,
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	_, err = s.Quotes().Create(ctx, model.Quote{
		ProjectRef: model.RefTo(p.ID),
		Date:       model.NewDate(2025, 5, 1),
		Status:     model.QuoteAccepted,
		TaxRate:    decimal.RequireFromString("0.1"),
		LineItems: []model.LineItem{
			{Designation: "Carrelage", Quantity: decimal.NewFromInt(20), UnitPrice: model.Euros(50)},
		},
	})
	require.NoError(t, err)

	_, err = s.Payments().Create(ctx, model.Payment{
		ProjectRef: model.RefTo(p.ID),
		Amount:     model.Euros(600),
		Date:       model.NewDate(2025, 5, 3),
		Method:     model.PaymentCheck,
	})
	require.NoError(t, err)

	snap, err := store.Load(ctx, s)
	require.NoError(t, err)
	require.Len(t, snap.Projects, 1)
	require.Len(t, snap.Quotes, 1)
	require.Len(t, snap.Payments, 1)
	require.Empty(t, snap.Expenses)

	sum := finance.SummarizeProject(snap.Projects[0], snap)
	require.Equal(t, model.Euros(1100), sum.CommittedRevenue)
	require.Equal(t, model.Euros(500), sum.OutstandingBalance)

	status := model.ProjectSuspended
	updated, err := s.Projects().Update(ctx, p.ID, model.ProjectPatch{Status: &status})
	require.NoError(t, err)
	require.Equal(t, model.ProjectSuspended, updated.Status)
	require.Equal(t, "Salle de bain", updated.Name)

	require.NoError(t, s.Projects().Delete(ctx, p.ID))
	_, err = s.Projects().Get(ctx, p.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestQuoteUpdateClearsLines(t *testing.T) {
	ts := startServer(t)
	s := remote.NewStore(loggedInClient(t, ts.URL))
	ctx := context.Background()

	p, err := s.Projects().Create(ctx, model.Project{
		Name:      "Cuisine",
		Client:    "M. Durand",
		StartDate: model.NewDate(2025, 3, 1),
		Status:    model.ProjectInProgress,
	})
	require.NoError(t, err)

	q, err := s.Quotes().Create(ctx, model.Quote{
		ProjectRef: model.RefTo(p.ID),
		Date:       model.NewDate(2025, 3, 2),
		Status:     model.QuoteSent,
		TaxRate:    decimal.RequireFromString("0.2"),
		LineItems: []model.LineItem{
			{Designation: "Plan de travail", Quantity: decimal.NewFromInt(1), UnitPrice: model.Euros(900)},
		},
	})
	require.NoError(t, err)
	require.Len(t, q.LineItems, 1)

	updated, err := s.Quotes().Update(ctx, q.ID, model.QuotePatch{LineItems: []model.LineItem{}})
	require.NoError(t, err)
	require.Empty(t, updated.LineItems)

	got, err := s.Quotes().Get(ctx, q.ID)
	require.NoError(t, err)
	require.Empty(t, got.LineItems)
	require.Equal(t, model.QuoteSent, got.Status)
}

func TestCreateValidatesBeforeSending(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer ts.Close()

	c, err := remote.NewClient("")
	require.NoError(t, err)
	require.NoError(t, c.SetServer(ts.URL))

	_, err = remote.NewStore(c).Payments().Create(context.Background(), model.Payment{Amount: model.Euros(10)})
	require.ErrorIs(t, err, model.ErrInvalid)
	require.Zero(t, calls)
}

func TestUnauthorizedClearsToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	c, err := remote.NewClient(path)
	require.NoError(t, err)
	require.NoError(t, c.SetServer(ts.URL))
	require.NoError(t, c.SetToken("stale"))

	_, err = remote.NewStore(c).Projects().List(context.Background())
	require.ErrorIs(t, err, remote.ErrUnauthorized)
	require.Contains(t, err.Error(), "token expired")
	require.False(t, c.IsLoggedIn())

	reloaded, err := remote.NewClient(path)
	require.NoError(t, err)
	require.False(t, reloaded.IsLoggedIn())
	require.Equal(t, ts.URL, reloaded.Session().ServerURL)
}

func TestAPIErrorMapping(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"no such chantier"}`))
		default:
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`budget must not be negative`))
		}
	}))
	defer ts.Close()

	c, err := remote.NewClient("")
	require.NoError(t, err)
	require.NoError(t, c.SetServer(ts.URL))
	s := remote.NewStore(c)
	ctx := context.Background()

	_, err = s.Projects().Get(ctx, "42")
	require.ErrorIs(t, err, store.ErrNotFound)
	var apiErr *remote.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "no such chantier", apiErr.Message)

	err = s.Projects().Delete(ctx, "42")
	require.ErrorIs(t, err, model.ErrInvalid)
	require.Contains(t, err.Error(), "budget must not be negative")
}

func TestListAcceptsWrappedPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"_id":"65a1","chantierId":{"_id":"c9","name":"Villa"},"amount":"1200.50","date":"2025-02-01","method":"Espèces"}]}`))
	}))
	defer ts.Close()

	c, err := remote.NewClient("")
	require.NoError(t, err)
	require.NoError(t, c.SetServer(ts.URL))

	payments, err := remote.NewStore(c).Payments().List(context.Background())
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Equal(t, "65a1", payments[0].ID)
	require.Equal(t, "c9", payments[0].ProjectID())
	require.Equal(t, model.Money(120050), payments[0].Amount)
}

func TestLoginFailure(t *testing.T) {
	ts := startServer(t)
	c, err := remote.NewClient("")
	require.NoError(t, err)
	require.NoError(t, c.SetServer(ts.URL))

	err = c.Login(context.Background(), "ghost@example.com", "motdepasse")
	require.ErrorIs(t, err, remote.ErrUnauthorized)
	require.False(t, c.IsLoggedIn())
}
