package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/store"
)

// Resource paths on the backend.
const (
	ProjectsPath = "/chantiers"
	QuotesPath   = "/devis"
	PaymentsPath = "/payments"
	ExpensesPath = "/expenses"
)

type collection[T any, P any, PT store.Record[T]] struct {
	client *Client
	path   string
}

func (c *collection[T, P, PT]) itemPath(id string) string {
	return c.path + "/" + url.PathEscape(id)
}

func (c *collection[T, P, PT]) List(ctx context.Context) ([]T, error) {
	var raw json.RawMessage
	if err := c.client.do(ctx, http.MethodGet, c.path, nil, &raw); err != nil {
		return nil, fmt.Errorf("list %s: %w", c.path, err)
	}
	return decodeList[T](raw)
}

// decodeList accepts a bare array or an object wrapping it under "data".
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	items := []T{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return items, nil
	}
	if raw[0] == '{' {
		var wrapped struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, err
		}
		raw = wrapped.Data
		if len(raw) == 0 {
			return items, nil
		}
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *collection[T, P, PT]) Get(ctx context.Context, id string) (T, error) {
	var item T
	if err := c.client.do(ctx, http.MethodGet, c.itemPath(id), nil, &item); err != nil {
		return item, fmt.Errorf("get %s %s: %w", c.path, id, err)
	}
	return item, nil
}

func (c *collection[T, P, PT]) Create(ctx context.Context, item T) (T, error) {
	var created T
	if err := PT(&item).Validate(); err != nil {
		return created, err
	}
	if err := c.client.do(ctx, http.MethodPost, c.path, item, &created); err != nil {
		return created, fmt.Errorf("create %s: %w", c.path, err)
	}
	return created, nil
}

func (c *collection[T, P, PT]) Update(ctx context.Context, id string, patch P) (T, error) {
	var updated T
	if err := c.client.do(ctx, http.MethodPut, c.itemPath(id), patch, &updated); err != nil {
		return updated, fmt.Errorf("update %s %s: %w", c.path, id, err)
	}
	return updated, nil
}

func (c *collection[T, P, PT]) Delete(ctx context.Context, id string) error {
	if err := c.client.do(ctx, http.MethodDelete, c.itemPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete %s %s: %w", c.path, id, err)
	}
	return nil
}

// Store is a store.Store backed by the REST API
type Store struct {
	client   *Client
	projects *collection[model.Project, model.ProjectPatch, *model.Project]
	quotes   *collection[model.Quote, model.QuotePatch, *model.Quote]
	payments *collection[model.Payment, model.PaymentPatch, *model.Payment]
	expenses *collection[model.Expense, model.ExpensePatch, *model.Expense]
}

// NewStore serves the four collections through c
func NewStore(c *Client) *Store {
	return &Store{
		client:   c,
		projects: &collection[model.Project, model.ProjectPatch, *model.Project]{client: c, path: ProjectsPath},
		quotes:   &collection[model.Quote, model.QuotePatch, *model.Quote]{client: c, path: QuotesPath},
		payments: &collection[model.Payment, model.PaymentPatch, *model.Payment]{client: c, path: PaymentsPath},
		expenses: &collection[model.Expense, model.ExpensePatch, *model.Expense]{client: c, path: ExpensesPath},
	}
}

func (s *Store) Client() *Client          { return s.client }
func (s *Store) Projects() store.Projects { return s.projects }
func (s *Store) Quotes() store.Quotes     { return s.quotes }
func (s *Store) Payments() store.Payments { return s.payments }
func (s *Store) Expenses() store.Expenses { return s.expenses }
func (s *Store) Mode() store.Mode         { return store.ModeRemote }
func (s *Store) Close() error             { return nil }
