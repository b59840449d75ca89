package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jilio/yewdux"
)

// ErrNotWatchable is returned by InitTabSync for backends that cannot
// report changes.
var ErrNotWatchable = errors.New("storage: backend does not support watching")

// Persist restores S from area, then keeps it saved. Saved state replaces
// the store's current state; without saved state the store is left as is.
// The listener is returned so callers can Flush it.
func Persist[S any](ctx context.Context, cx *yewdux.Scope, s *Storage, area Area, opts ...ListenerOption) (*Listener[S], error) {
	saved, err := Load[S](ctx, s, area)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", Key[S](), err)
	}
	if saved != nil {
		yewdux.New[S](cx).Reduce(func(*S) *S {
			return saved
		})
		s.debug("restored state", "area", area, "key", Key[S]())
	}

	listener := NewListener[S](s, area, opts...)
	yewdux.InitListener[S](cx, listener)
	return listener, nil
}

// InitTabSync reloads S into cx whenever another writer changes its saved
// value in area, until ctx is done. Writes made through s itself are
// ignored.
func InitTabSync[S any](ctx context.Context, cx *yewdux.Scope, s *Storage, area Area) error {
	key := Key[S]()
	backend, err := s.backend(area, key)
	if err != nil {
		return err
	}

	watcher, ok := backend.(Watcher)
	if !ok {
		return ErrNotWatchable
	}

	dispatch := yewdux.New[S](cx)
	return watcher.Watch(ctx, func(changed string) {
		if changed != key {
			return
		}
		if err := reload(ctx, s, area, key, dispatch); err != nil {
			s.logError("failed to sync state", "area", area, "key", key, "error", err)
		}
	})
}

func reload[S any](ctx context.Context, s *Storage, area Area, key string, dispatch yewdux.Dispatch[S]) error {
	data, ok, err := s.read(ctx, area, key)
	if err != nil || !ok || !s.stale(area, key, data) {
		return err
	}

	var state S
	if err := s.codec.Unmarshal(data, &state); err != nil {
		return &Error{Kind: KindDeserialize, Area: area, Key: key, Cause: err}
	}

	s.remember(area, key, data)
	dispatch.Reduce(func(*S) *S {
		return &state
	})
	s.debug("synced state", "area", area, "key", key)
	return nil
}
