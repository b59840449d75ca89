package storage

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/jilio/yewdux"
)

// Storage saves and loads state through per-area backends
type Storage struct {
	backends map[Area]Backend
	codec    Codec
	logger   yewdux.Logger

	// last data this Storage wrote or read per entry, used by tab sync to
	// ignore its own writes
	mu   sync.Mutex
	seen map[entry][]byte
}

type entry struct {
	area Area
	key  string
}

// New creates a Storage
func New(opts ...Option) *Storage {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Storage{
		backends: cfg.backends,
		codec:    cfg.codec,
		logger:   cfg.logger,
		seen:     make(map[entry][]byte),
	}
}

// Backend returns the backend bound to area, or nil
func (s *Storage) Backend(area Area) Backend {
	return s.backends[area]
}

// Codec returns the codec in use
func (s *Storage) Codec() Codec {
	return s.codec
}

// Key returns the key T is saved under
func Key[T any]() string {
	return yewdux.StoreType[T]()
}

// Save encodes state and writes it to area
func Save[T any](ctx context.Context, s *Storage, state *T, area Area) error {
	key := Key[T]()
	backend, err := s.backend(area, key)
	if err != nil {
		return err
	}

	data, err := s.codec.Marshal(state)
	if err != nil {
		return &Error{Kind: KindSerialize, Area: area, Key: key, Cause: err}
	}

	// Record first: a watching backend may report the write before Set returns
	prev, hadPrev := s.swap(area, key, data)
	if err := backend.Set(ctx, key, data); err != nil {
		if hadPrev {
			s.remember(area, key, prev)
		} else {
			s.forget(area, key)
		}
		return &Error{Kind: KindAccess, Area: area, Key: key, Cause: err}
	}

	s.debug("saved state", "area", area, "key", key, "bytes", len(data))
	return nil
}

// Load reads the state saved in area. It returns nil without error when
// nothing is saved.
func Load[T any](ctx context.Context, s *Storage, area Area) (*T, error) {
	key := Key[T]()
	data, ok, err := s.read(ctx, area, key)
	if err != nil || !ok {
		return nil, err
	}

	var state T
	if err := s.codec.Unmarshal(data, &state); err != nil {
		return nil, &Error{Kind: KindDeserialize, Area: area, Key: key, Cause: err}
	}

	s.remember(area, key, data)
	return &state, nil
}

// Clear removes the state of T from area
func Clear[T any](ctx context.Context, s *Storage, area Area) error {
	key := Key[T]()
	backend, err := s.backend(area, key)
	if err != nil {
		return err
	}

	s.forget(area, key)
	if err := backend.Delete(ctx, key); err != nil {
		return &Error{Kind: KindAccess, Area: area, Key: key, Cause: err}
	}
	return nil
}

func (s *Storage) backend(area Area, key string) (Backend, error) {
	backend, ok := s.backends[area]
	if !ok || backend == nil {
		return nil, &Error{Kind: KindAccess, Area: area, Key: key, Cause: fmt.Errorf("no backend for %s storage", area)}
	}
	return backend, nil
}

func (s *Storage) read(ctx context.Context, area Area, key string) ([]byte, bool, error) {
	backend, err := s.backend(area, key)
	if err != nil {
		return nil, false, err
	}

	data, ok, err := backend.Get(ctx, key)
	if err != nil {
		return nil, false, &Error{Kind: KindAccess, Area: area, Key: key, Cause: err}
	}
	return data, ok, nil
}

func (s *Storage) remember(area Area, key string, data []byte) {
	s.mu.Lock()
	s.seen[entry{area, key}] = bytes.Clone(data)
	s.mu.Unlock()
}

// swap records data and returns what was recorded before
func (s *Storage) swap(area Area, key string, data []byte) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.seen[entry{area, key}]
	s.seen[entry{area, key}] = bytes.Clone(data)
	return prev, ok
}

func (s *Storage) forget(area Area, key string) {
	s.mu.Lock()
	delete(s.seen, entry{area, key})
	s.mu.Unlock()
}

// stale reports whether data differs from what this Storage last saw
func (s *Storage) stale(area Area, key string, data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen, ok := s.seen[entry{area, key}]
	return !ok || !bytes.Equal(seen, data)
}

func (s *Storage) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Storage) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
