// Package sqlstore implements the collection store over database/sql. Each
// entity kind is a table of JSON documents scoped by owner, so the same code
// serves the local SQLite file and the server's PostgreSQL database.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/store"
	"github.com/google/uuid"
)

// Dialect selects placeholder syntax.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// Rebind rewrites ? placeholders to $n for PostgreSQL.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsUniqueViolation reports a duplicate key error from either driver.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}

type referencing interface {
	Ref() model.ProjectRef
}

type collection[T any, P store.Patch[T], PT store.Record[T]] struct {
	db      *sql.DB
	dialect Dialect
	table   string
	owner   string
}

func (c *collection[T, P, PT]) q(query string) string {
	return c.dialect.Rebind(strings.ReplaceAll(query, "{table}", c.table))
}

func projectColumn(item any) string {
	if r, ok := item.(referencing); ok {
		return r.Ref().ID()
	}
	return ""
}

func (c *collection[T, P, PT]) decode(id, data string) (T, error) {
	var item T
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		return item, fmt.Errorf("decode %s %s: %w", c.table, id, err)
	}
	PT(&item).SetID(id)
	return item, nil
}

func (c *collection[T, P, PT]) List(ctx context.Context) ([]T, error) {
	rows, err := c.db.QueryContext(ctx,
		c.q(`SELECT id, data FROM {table} WHERE owner_id = ? ORDER BY created_at, id`), c.owner)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.table, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.table, err)
		}
		item, err := c.decode(id, data)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (c *collection[T, P, PT]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	var data string
	err := c.db.QueryRowContext(ctx,
		c.q(`SELECT data FROM {table} WHERE owner_id = ? AND id = ?`), c.owner, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s %s: %w", c.table, id, store.ErrNotFound)
	}
	if err != nil {
		return zero, fmt.Errorf("get %s %s: %w", c.table, id, err)
	}
	return c.decode(id, data)
}

func (c *collection[T, P, PT]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	rec := PT(&item)
	if rec.GetID() == "" {
		rec.SetID(uuid.NewString())
	}
	if err := rec.Validate(); err != nil {
		return zero, err
	}

	data, err := json.Marshal(item)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", c.table, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = c.db.ExecContext(ctx,
		c.q(`INSERT INTO {table} (id, owner_id, project_id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`),
		rec.GetID(), c.owner, projectColumn(item), string(data), now, now)
	if IsUniqueViolation(err) {
		return zero, fmt.Errorf("%w: duplicate id %s", model.ErrInvalid, rec.GetID())
	}
	if err != nil {
		return zero, fmt.Errorf("insert %s: %w", c.table, err)
	}
	return item, nil
}

func (c *collection[T, P, PT]) Update(ctx context.Context, id string, patch P) (T, error) {
	var zero T
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx,
		c.q(`SELECT data FROM {table} WHERE owner_id = ? AND id = ?`), c.owner, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s %s: %w", c.table, id, store.ErrNotFound)
	}
	if err != nil {
		return zero, fmt.Errorf("get %s %s: %w", c.table, id, err)
	}

	item, err := c.decode(id, data)
	if err != nil {
		return zero, err
	}
	patch.Apply(&item)
	PT(&item).SetID(id)
	if err := PT(&item).Validate(); err != nil {
		return zero, err
	}

	encoded, err := json.Marshal(item)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", c.table, err)
	}
	_, err = tx.ExecContext(ctx,
		c.q(`UPDATE {table} SET data = ?, project_id = ?, updated_at = ? WHERE owner_id = ? AND id = ?`),
		string(encoded), projectColumn(item), time.Now().UTC().Format(time.RFC3339Nano), c.owner, id)
	if err != nil {
		return zero, fmt.Errorf("update %s %s: %w", c.table, id, err)
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("commit: %w", err)
	}
	return item, nil
}

func (c *collection[T, P, PT]) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx,
		c.q(`DELETE FROM {table} WHERE owner_id = ? AND id = ?`), c.owner, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", c.table, id, store.ErrNotFound)
	}
	return nil
}

// Store is a store.Store over one owner's rows. The database handle belongs
// to the caller.
type Store struct {
	mode     store.Mode
	projects *collection[model.Project, model.ProjectPatch, *model.Project]
	quotes   *collection[model.Quote, model.QuotePatch, *model.Quote]
	payments *collection[model.Payment, model.PaymentPatch, *model.Payment]
	expenses *collection[model.Expense, model.ExpensePatch, *model.Expense]
}

// New scopes the four tables to owner.
func New(db *sql.DB, dialect Dialect, owner string, mode store.Mode) *Store {
	return &Store{
		mode:     mode,
		projects: &collection[model.Project, model.ProjectPatch, *model.Project]{db: db, dialect: dialect, table: "projects", owner: owner},
		quotes:   &collection[model.Quote, model.QuotePatch, *model.Quote]{db: db, dialect: dialect, table: "quotes", owner: owner},
		payments: &collection[model.Payment, model.PaymentPatch, *model.Payment]{db: db, dialect: dialect, table: "payments", owner: owner},
		expenses: &collection[model.Expense, model.ExpensePatch, *model.Expense]{db: db, dialect: dialect, table: "expenses", owner: owner},
	}
}

func (s *Store) Projects() store.Projects { return s.projects }
func (s *Store) Quotes() store.Quotes     { return s.quotes }
func (s *Store) Payments() store.Payments { return s.payments }
func (s *Store) Expenses() store.Expenses { return s.expenses }
func (s *Store) Mode() store.Mode         { return s.mode }
func (s *Store) Close() error             { return nil }
