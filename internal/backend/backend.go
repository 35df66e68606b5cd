// Package backend opens the store selected by a data source mode.
package backend

import (
	"errors"
	"fmt"

	"github.com/existflow/chantier/internal/db"
	"github.com/existflow/chantier/internal/remote"
	"github.com/existflow/chantier/internal/store"
)

// Config selects and parameterizes a backing
type Config struct {
	Mode store.Mode
	// SQLite file of the local mode, the default path when empty
	DBPath string
	// Client of the remote mode
	Client *remote.Client
}

// localStore closes the database with the store
type localStore struct {
	store.Store
	db *db.DB
}

func (s *localStore) Close() error {
	return s.db.Close()
}

// Open returns the store of cfg.Mode. An empty mode means demo.
func Open(cfg Config) (store.Store, error) {
	switch cfg.Mode {
	case store.ModeDemo, "":
		return store.NewDemo(), nil

	case store.ModeLocal:
		var (
			database *db.DB
			err      error
		)
		if cfg.DBPath == "" {
			database, err = db.OpenDefault()
		} else {
			database, err = db.Open(cfg.DBPath)
		}
		if err != nil {
			return nil, fmt.Errorf("open local store: %w", err)
		}
		return &localStore{Store: database.Store(db.LocalOwner, store.ModeLocal), db: database}, nil

	case store.ModeRemote:
		if cfg.Client == nil {
			return nil, errors.New("remote mode needs a client")
		}
		if !cfg.Client.IsLoggedIn() {
			return nil, fmt.Errorf("%w: no session token", remote.ErrUnauthorized)
		}
		return remote.NewStore(cfg.Client), nil
	}
	return nil, fmt.Errorf("unknown data source mode %q", cfg.Mode)
}
