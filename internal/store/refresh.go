package store

import (
	"context"
	"sync"
	"time"

	"github.com/existflow/chantier/internal/logger"
	"github.com/existflow/chantier/internal/model"
)

// Refresher reloads snapshots in the background
type Refresher struct {
	store        Store
	debounceTime time.Duration
	pollInterval time.Duration
	timeout      time.Duration
	pending      bool
	lastErr      error
	lastLoad     time.Time
	mu           sync.Mutex
	stopCh       chan struct{}
	stopOnce     sync.Once
	onLoad       func(model.Snapshot) // Called after every successful reload
}

// NewRefresher starts polling s every pollInterval. A zero interval disables
// polling; Trigger still works.
func NewRefresher(s Store, pollInterval time.Duration) *Refresher {
	r := &Refresher{
		store:        s,
		debounceTime: 500 * time.Millisecond,
		pollInterval: pollInterval,
		timeout:      30 * time.Second,
		stopCh:       make(chan struct{}),
	}

	if pollInterval > 0 {
		go r.pollLoop()
	}

	return r
}

// SetOnLoad sets the callback run after each successful reload
func (r *Refresher) SetOnLoad(callback func(model.Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onLoad = callback
}

func (r *Refresher) pollLoop() {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.reload()
		case <-r.stopCh:
			return
		}
	}
}

func (r *Refresher) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	snap, err := Load(ctx, r.store)

	r.mu.Lock()
	r.lastErr = err
	callback := r.onLoad
	if err == nil {
		r.lastLoad = time.Now()
	}
	r.mu.Unlock()

	if err != nil {
		logger.Warn("Background refresh failed", logger.F("mode", r.store.Mode()), logger.F("error", err))
		return
	}
	logger.Debug("Background refresh done",
		logger.F("projects", len(snap.Projects)),
		logger.F("quotes", len(snap.Quotes)))
	if callback != nil {
		callback(snap)
	}
}

// Trigger schedules a reload. Calls within the debounce window collapse into one.
func (r *Refresher) Trigger() {
	r.mu.Lock()
	if !r.pending {
		r.pending = true
		go r.debouncedReload()
	}
	r.mu.Unlock()
}

func (r *Refresher) debouncedReload() {
	timer := time.NewTimer(r.debounceTime)
	defer timer.Stop()

	select {
	case <-timer.C:
		r.mu.Lock()
		r.pending = false
		r.mu.Unlock()
		r.reload()
	case <-r.stopCh:
		return
	}
}

// Stop ends polling. It is safe to call more than once.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// IsPending returns true if a triggered reload has not started yet
func (r *Refresher) IsPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// LastError returns the error of the latest reload, if any
func (r *Refresher) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// LastLoad returns when the latest successful reload finished
func (r *Refresher) LastLoad() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastLoad
}
