package storage

import "context"

// Backend is a key/value store for encoded state
type Backend interface {
	// Get returns the data saved under key. ok is false when nothing is saved.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set saves data under key, replacing what was there
	Set(ctx context.Context, key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Watcher is implemented by backends that report changes made by other
// writers.
type Watcher interface {
	// Watch calls onChange with the key of every changed entry until ctx is
	// done. onChange may be called from another goroutine.
	Watch(ctx context.Context, onChange func(key string)) error
}
