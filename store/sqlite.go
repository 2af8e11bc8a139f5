package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	sqlite3 "modernc.org/sqlite"
)

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore is a persistent Store backed by SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
// Use ":memory:" for an in-memory SQLite database. Call Init before use.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("tally/store: open sqlite: %w", err)
	}

	// SQLite allows one writer at a time. A single pooled connection
	// serializes writers instead of surfacing SQLITE_BUSY, and keeps
	// ":memory:" DSNs pointing at one database.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db}, nil
}

// Init creates the counters table if it does not exist. Idempotent.
func (s *SQLiteStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS counters (
			namespace TEXT NOT NULL,
			name      TEXT NOT NULL,
			count     INTEGER NOT NULL,
			PRIMARY KEY (namespace, name)
		)
	`)
	if err != nil {
		return &Error{Kind: classifySQLite(err), Op: "init", Err: err}
	}
	return nil
}

// Set inserts or replaces the counter for (namespace, name) as a single
// native upsert, so concurrent writers to the same key cannot race a
// separate existence check.
func (s *SQLiteStore) Set(ctx context.Context, namespace, name string, count int64) (Counter, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO counters (namespace, name, count) VALUES (?, ?, ?)
		ON CONFLICT (namespace, name) DO UPDATE SET count = excluded.count
	`, namespace, name, count)
	if err != nil {
		return Counter{}, &Error{Kind: classifySQLite(err), Op: "set", Err: err}
	}
	return Counter{Namespace: namespace, Name: name, Count: count}, nil
}

// Get returns the counter for (namespace, name), or nil if absent.
func (s *SQLiteStore) Get(ctx context.Context, namespace, name string) (*Counter, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT count FROM counters WHERE namespace = ? AND name = ?`,
		namespace, name,
	).Scan(&count)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Kind: classifySQLite(err), Op: "get", Err: err}
	}
	return &Counter{Namespace: namespace, Name: name, Count: count}, nil
}

// Close closes the underlying SQLite database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func classifySQLite(err error) Kind {
	if errors.Is(err, driver.ErrBadConn) {
		return KindUnavailable
	}
	var se *sqlite3.Error
	if errors.As(err, &se) && se.Code()&0xff == 19 { // SQLITE_CONSTRAINT
		return KindConstraint
	}
	return KindIO
}
