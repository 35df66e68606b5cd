package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/existflow/chantier/internal/model"
	"github.com/google/uuid"
)

// memCollection keeps records in insertion order.
type memCollection[T any, P Patch[T], PT Record[T]] struct {
	mu    sync.RWMutex
	items []T
}

func newMemCollection[T any, P Patch[T], PT Record[T]](seed []T) *memCollection[T, P, PT] {
	return &memCollection[T, P, PT]{items: append([]T(nil), seed...)}
}

func (c *memCollection[T, P, PT]) indexOf(id string) int {
	for i := range c.items {
		if PT(&c.items[i]).GetID() == id {
			return i
		}
	}
	return -1
}

func (c *memCollection[T, P, PT]) List(ctx context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T{}, c.items...), nil
}

func (c *memCollection[T, P, PT]) Get(ctx context.Context, id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return c.items[i], nil
}

func (c *memCollection[T, P, PT]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	rec := PT(&item)
	if rec.GetID() == "" {
		rec.SetID(uuid.NewString())
	}
	if err := rec.Validate(); err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(rec.GetID()) >= 0 {
		return zero, fmt.Errorf("%w: duplicate id %s", model.ErrInvalid, rec.GetID())
	}
	c.items = append(c.items, item)
	return item, nil
}

func (c *memCollection[T, P, PT]) Update(ctx context.Context, id string, patch P) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return zero, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	updated := c.items[i]
	patch.Apply(&updated)
	PT(&updated).SetID(id)
	if err := PT(&updated).Validate(); err != nil {
		return zero, err
	}
	c.items[i] = updated
	return updated, nil
}

func (c *memCollection[T, P, PT]) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

// Memory is a Store held in process memory.
type Memory struct {
	mode     Mode
	projects *memCollection[model.Project, model.ProjectPatch, *model.Project]
	quotes   *memCollection[model.Quote, model.QuotePatch, *model.Quote]
	payments *memCollection[model.Payment, model.PaymentPatch, *model.Payment]
	expenses *memCollection[model.Expense, model.ExpensePatch, *model.Expense]
}

// NewMemory returns a store seeded with snap. Nothing is persisted.
func NewMemory(snap model.Snapshot) *Memory {
	return &Memory{
		mode:     ModeDemo,
		projects: newMemCollection[model.Project, model.ProjectPatch](snap.Projects),
		quotes:   newMemCollection[model.Quote, model.QuotePatch](snap.Quotes),
		payments: newMemCollection[model.Payment, model.PaymentPatch](snap.Payments),
		expenses: newMemCollection[model.Expense, model.ExpensePatch](snap.Expenses),
	}
}

// NewDemo returns a memory store holding the demo dataset.
func NewDemo() *Memory {
	return NewMemory(DemoData())
}

func (m *Memory) Projects() Projects { return m.projects }
func (m *Memory) Quotes() Quotes     { return m.quotes }
func (m *Memory) Payments() Payments { return m.payments }
func (m *Memory) Expenses() Expenses { return m.expenses }
func (m *Memory) Mode() Mode         { return m.mode }
func (m *Memory) Close() error       { return nil }
