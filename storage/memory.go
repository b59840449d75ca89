package storage

import (
	"bytes"
	"context"
	"sync"
)

// MemoryBackend keeps state in memory. Storages sharing one MemoryBackend
// see each other's writes, and Watch reports them synchronously.
type MemoryBackend struct {
	mu       sync.RWMutex
	data     map[string][]byte
	watchers map[int]func(string)
	nextID   int
}

var _ Backend = (*MemoryBackend)(nil)
var _ Watcher = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data:     make(map[string][]byte),
		watchers: make(map[int]func(string)),
	}
}

// Get implements Backend
func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(data), true, nil
}

// Set implements Backend
func (m *MemoryBackend) Set(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.data[key] = bytes.Clone(data)
	m.mu.Unlock()

	m.notify(key)
	return nil
}

// Delete implements Backend
func (m *MemoryBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	_, existed := m.data[key]
	delete(m.data, key)
	m.mu.Unlock()

	if existed {
		m.notify(key)
	}
	return nil
}

// Watch implements Watcher
func (m *MemoryBackend) Watch(ctx context.Context, onChange func(key string)) error {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = onChange
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, id)
		m.mu.Unlock()
	}()

	return nil
}

func (m *MemoryBackend) notify(key string) {
	m.mu.RLock()
	watchers := make([]func(string), 0, len(m.watchers))
	for _, fn := range m.watchers {
		watchers = append(watchers, fn)
	}
	m.mu.RUnlock()

	for _, fn := range watchers {
		fn(key)
	}
}
