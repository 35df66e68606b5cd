package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/chantier/internal/backend"
	"github.com/existflow/chantier/internal/config"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/remote"
	"github.com/existflow/chantier/internal/store"
)

const requestTimeout = 30 * time.Second

// newClient loads the saved session, pointing it at the configured server
// when none was chosen at login.
func newClient() (*remote.Client, error) {
	path, err := config.SessionPath()
	if err != nil {
		return nil, err
	}
	client, err := remote.NewClient(path)
	if err != nil {
		return nil, err
	}
	if client.Session().ServerURL == remote.DefaultServerURL && appConfig.ServerURL != "" {
		if err := client.SetServer(appConfig.ServerURL); err != nil {
			return nil, err
		}
	}
	return client, nil
}

// openStore opens the store of the configured mode
func openStore() (store.Store, error) {
	mode, err := store.ParseMode(appConfig.Mode)
	if err != nil {
		return nil, err
	}

	cfg := backend.Config{Mode: mode, DBPath: appConfig.DBPath}
	if mode == store.ModeRemote {
		if cfg.Client, err = newClient(); err != nil {
			return nil, err
		}
	}

	st, err := backend.Open(cfg)
	if errors.Is(err, remote.ErrUnauthorized) {
		return nil, fmt.Errorf("not logged in, run 'chantier auth login' first")
	}
	return st, err
}

// withStore opens the store, runs fn and closes the store
func withStore(fn func(ctx context.Context, st store.Store) error) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return fn(ctx, st)
}

// withSnapshot is withStore for commands that read every collection
func withSnapshot(fn func(ctx context.Context, st store.Store, snap model.Snapshot) error) error {
	return withStore(func(ctx context.Context, st store.Store) error {
		snap, err := store.Load(ctx, st)
		if err != nil {
			return fmt.Errorf("failed to load data: %w", err)
		}
		return fn(ctx, st, snap)
	})
}
