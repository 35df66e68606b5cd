// Package store defines the collection store used by every front end and the
// in-memory demo backing.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/existflow/chantier/internal/model"
)

// ErrNotFound is returned when no record has the requested identifier.
var ErrNotFound = errors.New("not found")

// Mode selects the backing of a Store.
type Mode string

const (
	// ModeDemo serves the static demo dataset. Mutations last for the session.
	ModeDemo Mode = "demo"
	// ModeLocal persists to a SQLite file on this machine.
	ModeLocal Mode = "local"
	// ModeRemote talks to the REST backend with a bearer token.
	ModeRemote Mode = "remote"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDemo, ModeLocal, ModeRemote:
		return m, nil
	}
	return "", fmt.Errorf("unknown data source mode %q (want demo, local or remote)", s)
}

// Collection is the CRUD surface of one entity kind. P is the partial update
// type of T.
type Collection[T any, P any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	// Create assigns an identifier when the record has none.
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id string, patch P) (T, error)
	Delete(ctx context.Context, id string) error
}

type (
	Projects = Collection[model.Project, model.ProjectPatch]
	Quotes   = Collection[model.Quote, model.QuotePatch]
	Payments = Collection[model.Payment, model.PaymentPatch]
	Expenses = Collection[model.Expense, model.ExpensePatch]
)

// Store gives access to the four collections of one data source.
type Store interface {
	Projects() Projects
	Quotes() Quotes
	Payments() Payments
	Expenses() Expenses
	Mode() Mode
	Close() error
}

// Record is implemented by the pointer types of the four entities.
type Record[T any] interface {
	*T
	GetID() string
	SetID(id string)
	Validate() error
}

// Patch applies a partial update to T.
type Patch[T any] interface {
	Apply(*T)
}
