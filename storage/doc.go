// Package storage persists yewdux stores.
//
// A Storage binds each Area to a Backend and encodes state with a Codec.
// State is saved under the package-qualified name of its type, so one backend
// can hold many stores:
//
//	s := storage.New(storage.WithBackend(storage.Local, backend))
//	if err := storage.Persist[Settings](ctx, cx, s, storage.Local); err != nil {
//		return err
//	}
//
// Persist loads any saved Settings into the scope and registers a Listener
// that saves every later change. InitTabSync reloads the store whenever
// another writer changes the saved value, for backends that can be watched.
package storage
