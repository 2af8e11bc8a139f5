package store

import (
	"context"
	"sync"
)

type counterKey struct {
	namespace string
	name      string
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store implementation.
// It is safe for concurrent use. Counters are lost on process restart.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[counterKey]int64
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[counterKey]int64),
	}
}

// Set inserts or replaces the counter for (namespace, name).
func (m *MemoryStore) Set(_ context.Context, namespace, name string, count int64) (Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[counterKey{namespace, name}] = count
	return Counter{Namespace: namespace, Name: name, Count: count}, nil
}

// Get returns the counter for (namespace, name), or nil if absent.
func (m *MemoryStore) Get(_ context.Context, namespace, name string) (*Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count, ok := m.counters[counterKey{namespace, name}]
	if !ok {
		return nil, nil
	}
	return &Counter{Namespace: namespace, Name: name, Count: count}, nil
}

// Init is a no-op for the in-memory store.
func (m *MemoryStore) Init(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
