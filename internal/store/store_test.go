package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/model"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, s := range []string{"demo", "LOCAL", " remote "} {
		_, err := ParseMode(s)
		require.NoError(t, err, s)
	}
	_, err := ParseMode("cloud")
	require.Error(t, err)
}

func TestDemoStoreServesDataset(t *testing.T) {
	ctx := context.Background()
	s := NewDemo()
	require.Equal(t, ModeDemo, s.Mode())

	snap, err := Load(ctx, s)
	require.NoError(t, err)
	require.Len(t, snap.Projects, 3)
	require.Len(t, snap.Quotes, 1)
	require.Len(t, snap.Payments, 1)
	require.Len(t, snap.Expenses, 2)

	sum := finance.SummarizeProject(snap.Projects[0], snap)
	// 3000 + 3825 + 540 = 7365 HT, 1473 TVA
	require.Equal(t, model.Euros(8838), sum.CommittedRevenue)
	require.Equal(t, model.Euros(5000), sum.Collected)
	require.Equal(t, model.Euros(3650), sum.Spent)
}

func TestDemoDataIsACopy(t *testing.T) {
	a := DemoData()
	a.Projects[0].Name = "changed"
	require.Equal(t, "Rénovation Appartement Paris", DemoData().Projects[0].Name)
}

func TestMemoryCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(model.Snapshot{})

	created, err := s.Payments().Create(ctx, model.Payment{
		ProjectRef: model.RefTo("1"),
		Amount:     model.Euros(100),
		Date:       model.NewDate(2025, 3, 1),
		Method:     model.PaymentCash,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	_, err = s.Payments().Create(ctx, created)
	require.ErrorIs(t, err, model.ErrInvalid)

	amount := model.Euros(150)
	updated, err := s.Payments().Update(ctx, created.ID, model.PaymentPatch{Amount: &amount})
	require.NoError(t, err)
	require.Equal(t, amount, updated.Amount)
	require.Equal(t, model.PaymentCash, updated.Method)

	got, err := s.Payments().Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, updated, got)

	negative := model.Money(-1)
	_, err = s.Payments().Update(ctx, created.ID, model.PaymentPatch{Amount: &negative})
	require.ErrorIs(t, err, model.ErrInvalid)

	require.NoError(t, s.Payments().Delete(ctx, created.ID))
	require.ErrorIs(t, s.Payments().Delete(ctx, created.ID), ErrNotFound)
	_, err = s.Payments().Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Payments().Update(ctx, "missing", model.PaymentPatch{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRejectsInvalid(t *testing.T) {
	_, err := NewMemory(model.Snapshot{}).Projects().Create(context.Background(), model.Project{Name: "x"})
	require.ErrorIs(t, err, model.ErrInvalid)
}

func TestDeletingProjectKeepsChildren(t *testing.T) {
	ctx := context.Background()
	s := NewDemo()
	require.NoError(t, s.Projects().Delete(ctx, "1"))

	snap, err := Load(ctx, s)
	require.NoError(t, err)
	require.Len(t, snap.Projects, 2)
	require.Len(t, snap.Payments, 1)
	require.Len(t, snap.Expenses, 2)
}

type failingStore struct {
	*Memory
}

type failingPayments struct {
	Payments
}

func (failingPayments) List(context.Context) ([]model.Payment, error) {
	return nil, errors.New("connection refused")
}

func (f failingStore) Payments() Payments { return failingPayments{f.Memory.Payments()} }

func TestLoadReturnsFirstError(t *testing.T) {
	_, err := Load(context.Background(), failingStore{NewDemo()})
	require.ErrorContains(t, err, "list payments")
	require.ErrorContains(t, err, "connection refused")
}

func TestStatus(t *testing.T) {
	require.True(t, Status{}.Ready())
	require.False(t, Status{Loading: true}.Ready())
	require.False(t, Status{Err: errors.New("x")}.Ready())
}

func TestRefresherTrigger(t *testing.T) {
	r := NewRefresher(NewDemo(), 0)
	defer r.Stop()
	r.debounceTime = 10 * time.Millisecond

	loaded := make(chan model.Snapshot, 1)
	r.SetOnLoad(func(s model.Snapshot) { loaded <- s })

	r.Trigger()
	r.Trigger()
	require.True(t, r.IsPending())

	select {
	case snap := <-loaded:
		require.Len(t, snap.Projects, 3)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not run")
	}
	require.NoError(t, r.LastError())
	require.False(t, r.LastLoad().IsZero())
	r.Stop()
}
