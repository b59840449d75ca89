package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// FileBackend keeps one file per key in a directory. Writes are atomic:
// data goes to a temporary file that is renamed into place.
type FileBackend struct {
	dir string
	ext string
}

var _ Backend = (*FileBackend)(nil)
var _ Watcher = (*FileBackend)(nil)

const tempPrefix = ".tmp-"

// NewFileBackend creates a backend storing files under dir, which is
// created if needed. ext is appended to every file name (".json" for
// example) and may be empty.
func NewFileBackend(dir, ext string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("storage: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create directory: %w", err)
	}
	return &FileBackend{dir: dir, ext: ext}, nil
}

// Dir returns the directory holding the files
func (f *FileBackend) Dir() string {
	return f.dir
}

// path maps a key to its file. Keys contain slashes (package paths), so
// they are escaped into a single path element.
func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+f.ext)
}

// key maps a file name back to its key
func (f *FileBackend) key(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, tempPrefix) || !strings.HasSuffix(base, f.ext) {
		return "", false
	}

	key, err := url.PathUnescape(strings.TrimSuffix(base, f.ext))
	if err != nil {
		return "", false
	}
	return key, true
}

// Get implements Backend
func (f *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set implements Backend
func (f *FileBackend) Set(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, tempPrefix+"*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.path(key))
}

// Delete implements Backend
func (f *FileBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Watch implements Watcher. Changes made by any process writing to the
// directory are reported, including this one.
func (f *FileBackend) Watch(ctx context.Context, onChange func(key string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("storage: create watcher: %w", err)
	}
	if err := watcher.Add(f.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("storage: watch %s: %w", f.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
					continue
				}
				if key, ok := f.key(event.Name); ok {
					onChange(key)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}
