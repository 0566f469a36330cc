package storage

import (
	"context"

	"hobbyhub/internal/cache"
)

// MemoryStore keeps values for the life of the process.
type MemoryStore struct {
	items *cache.SimpleCache[string, string]
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: cache.NewSimpleCache[string, string](cache.Options{ConcurrencySafe: true})}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.items.Get(key)
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.items.Set(key, value, 0)
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.items.Delete(k)
	}
	return nil
}

func (m *MemoryStore) Keys(_ context.Context) ([]string, error) {
	return m.items.Keys(), nil
}
