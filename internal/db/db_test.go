package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/sqlstore"
	"github.com/existflow/chantier/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "nested", "chantier.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestOpenMigratesTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chantier.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, sqlstore.SQLite, first.Dialect)
	require.NoError(t, first.Close())

	second, err := Connect("sqlite://" + path)
	require.NoError(t, err)
	defer second.Close()

	var n int
	require.NoError(t, second.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&n))
	require.Zero(t, n)
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t).Store(LocalOwner, store.ModeLocal)
	require.Equal(t, store.ModeLocal, s.Mode())

	demo := store.DemoData()
	for _, p := range demo.Projects {
		_, err := s.Projects().Create(ctx, p)
		require.NoError(t, err)
	}
	for _, q := range demo.Quotes {
		_, err := s.Quotes().Create(ctx, q)
		require.NoError(t, err)
	}
	for _, p := range demo.Payments {
		_, err := s.Payments().Create(ctx, p)
		require.NoError(t, err)
	}
	for _, e := range demo.Expenses {
		_, err := s.Expenses().Create(ctx, e)
		require.NoError(t, err)
	}

	snap, err := store.Load(ctx, s)
	require.NoError(t, err)
	require.Len(t, snap.Projects, 3)
	require.Equal(t, demo.Projects[1], snap.Projects[1])

	q := snap.Quotes[0]
	require.Len(t, q.LineItems, 3)
	require.True(t, q.TaxRate.Equal(decimal.RequireFromString("0.2")))

	want := finance.SummarizeProject(demo.Projects[0], demo)
	got := finance.SummarizeProject(snap.Projects[0], snap)
	require.Equal(t, want.CommittedRevenue, got.CommittedRevenue)
	require.Equal(t, want.NetProfit, got.NetProfit)
}

func TestLocalStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t).Store(LocalOwner, store.ModeLocal)

	created, err := s.Quotes().Create(ctx, model.Quote{
		ProjectRef: model.RefTo("1"),
		Date:       model.NewDate(2025, 2, 1),
		Status:     model.QuoteDraft,
		TaxRate:    decimal.RequireFromString("0.1"),
		LineItems:  []model.LineItem{{Designation: "Dépose", Quantity: decimal.NewFromInt(1), UnitPrice: model.Euros(400)}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	accepted := model.QuoteAccepted
	updated, err := s.Quotes().Update(ctx, created.ID, model.QuotePatch{Status: &accepted})
	require.NoError(t, err)
	require.Equal(t, model.QuoteAccepted, updated.Status)
	require.Len(t, updated.LineItems, 1)

	got, err := s.Quotes().Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, model.QuoteAccepted, got.Status)
	require.Equal(t, "1", got.ProjectID())

	bad := model.QuoteStatus("Peut-être")
	_, err = s.Quotes().Update(ctx, created.ID, model.QuotePatch{Status: &bad})
	require.ErrorIs(t, err, model.ErrInvalid)

	_, err = s.Quotes().Create(ctx, got)
	require.ErrorIs(t, err, model.ErrInvalid)

	require.NoError(t, s.Quotes().Delete(ctx, created.ID))
	require.ErrorIs(t, s.Quotes().Delete(ctx, created.ID), store.ErrNotFound)
	_, err = s.Quotes().Get(ctx, created.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Quotes().Update(ctx, created.ID, model.QuotePatch{})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestOwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	database := openTemp(t)
	alice := database.Store("alice", store.ModeRemote)
	bob := database.Store("bob", store.ModeRemote)

	p := store.DemoData().Projects[0]
	_, err := alice.Projects().Create(ctx, p)
	require.NoError(t, err)
	// Same identifier under another owner is allowed.
	_, err = bob.Projects().Create(ctx, p)
	require.NoError(t, err)

	require.NoError(t, bob.Projects().Delete(ctx, p.ID))
	items, err := alice.Projects().List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = bob.Projects().List(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
}
