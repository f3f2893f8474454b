// Package storage implements the local-first persistence layer: a string
// keyed blob store, the storage mode switch, and the per-project
// transaction store that mirrors writes to the cloud when asked to.
package storage

import (
	"context"
	"sync"
)

// KV is the local key-value blob store every piece of state is persisted
// in. It is process durable on desktop and mobile (sqlite) and in-memory on
// platforms without a filesystem.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores the value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// MemoryKV is a map-backed KV used on platforms without durable storage and
// throughout the test suites.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *MemoryKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
