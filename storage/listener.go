package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jilio/yewdux"
)

// Listener saves S to storage whenever it changes. Register it with
// yewdux.InitListener or through Persist.
//
// Save failures are logged through the Storage logger and the change is
// kept pending, so Flush or the next saved change writes it.
type Listener[S any] struct {
	storage *Storage
	area    Area
	policy  SavePolicy

	mu           sync.Mutex
	changes      int64
	lastSaved    int64
	lastSaveTime time.Time
	pending      *S
}

var _ yewdux.Listener[struct{}] = (*Listener[struct{}])(nil)

// ListenerOption configures a Listener
type ListenerOption func(*listenerConfig)

type listenerConfig struct {
	policy SavePolicy
}

// WithSavePolicy sets when changes are written. Default is Always.
func WithSavePolicy(policy SavePolicy) ListenerOption {
	return func(c *listenerConfig) {
		c.policy = policy
	}
}

// NewListener creates a listener saving S to area
func NewListener[S any](s *Storage, area Area, opts ...ListenerOption) *Listener[S] {
	cfg := &listenerConfig{policy: Always()}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Listener[S]{
		storage: s,
		area:    area,
		policy:  cfg.policy,
	}
}

// OnChange implements yewdux.Listener
func (l *Listener[S]) OnChange(_ *yewdux.Scope, state *S) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.changes++
	l.pending = state
	if !l.policy.ShouldSave(l.changes, l.lastSaved, l.lastSaveTime) {
		return
	}

	if err := l.saveLocked(context.Background()); err != nil {
		l.storage.logError("failed to save state", "area", l.area, "key", Key[S](), "error", err)
	}
}

// Flush writes a change held back by the save policy
func (l *Listener[S]) Flush(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending == nil {
		return nil
	}
	return l.saveLocked(ctx)
}

// Pending reports whether a change has not been written yet
func (l *Listener[S]) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending != nil
}

func (l *Listener[S]) saveLocked(ctx context.Context) error {
	if err := Save(ctx, l.storage, l.pending, l.area); err != nil {
		return err
	}

	l.pending = nil
	l.lastSaved = l.changes
	l.lastSaveTime = time.Now()
	return nil
}
