package store

import (
	"context"
	"fmt"

	"github.com/existflow/chantier/internal/model"
	"golang.org/x/sync/errgroup"
)

// Status is the loading state a front end renders while a snapshot is in
// flight.
type Status struct {
	Loading bool
	Err     error
}

// Ready reports whether data can be shown.
func (s Status) Ready() bool {
	return !s.Loading && s.Err == nil
}

// Load fetches the four collections concurrently. It returns the first error
// and no partial snapshot.
func Load(ctx context.Context, s Store) (model.Snapshot, error) {
	var snap model.Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := s.Projects().List(ctx)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		snap.Projects = items
		return nil
	})
	g.Go(func() error {
		items, err := s.Quotes().List(ctx)
		if err != nil {
			return fmt.Errorf("list quotes: %w", err)
		}
		snap.Quotes = items
		return nil
	})
	g.Go(func() error {
		items, err := s.Payments().List(ctx)
		if err != nil {
			return fmt.Errorf("list payments: %w", err)
		}
		snap.Payments = items
		return nil
	})
	g.Go(func() error {
		items, err := s.Expenses().List(ctx)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		snap.Expenses = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}
