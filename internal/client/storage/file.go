package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// FileStore persists all keys in a single JSON object on disk. Writes go to a temp file
// that is renamed over the original.
type FileStore struct {
	path string

	mu     sync.Mutex
	items  map[string]string
	loaded bool
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// load reads the file once. Callers hold mu.
func (f *FileStore) load() error {
	if f.loaded {
		return nil
	}
	f.items = make(map[string]string)
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.loaded = true
			return nil
		}
		return errors.Wrapf(err, "read %s", f.path)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f.items); err != nil {
			return errors.Wrapf(err, "decode %s", f.path)
		}
	}
	f.loaded = true
	return nil
}

// flush writes items atomically. Callers hold mu.
func (f *FileStore) flush() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "create storage dir")
	}
	raw, err := json.Marshal(f.items)
	if err != nil {
		return errors.Wrap(err, "encode storage")
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storage-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return errors.Wrap(err, "chmod temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), f.path), "replace storage file")
}

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return "", false, err
	}
	v, ok := f.items[key]
	return v, ok, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return err
	}
	f.items[key] = value
	return f.flush()
}

func (f *FileStore) Remove(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := f.items[k]; ok {
			delete(f.items, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.flush()
}

func (f *FileStore) Keys(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(f.items))
	for k := range f.items {
		keys = append(keys, k)
	}
	return keys, nil
}
