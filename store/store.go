package store

import "context"

// Counter is a single namespaced counter record as committed by a backend.
// The (Namespace, Name) pair identifies at most one record.
type Counter struct {
	Namespace string
	Name      string
	Count     int64
}

// Store defines the interface for counter persistence backends.
type Store interface {
	// Set atomically inserts or replaces the counter for (namespace, name)
	// and returns the record as committed. The upsert is one operation:
	// concurrent Sets on the same key serialize in the backend and the last
	// write to commit wins.
	Set(ctx context.Context, namespace, name string, count int64) (Counter, error)

	// Get returns the counter for (namespace, name), or nil if no record
	// exists for that key. Absence is not an error and not a zero record.
	Get(ctx context.Context, namespace, name string) (*Counter, error)

	// Init ensures the structure holding counter records exists. It is
	// idempotent and never discards existing records.
	Init(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
