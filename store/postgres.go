package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

// DefaultMaxConns bounds the Postgres connection pool when no explicit size
// is given. Requests beyond the bound queue until a connection frees; that
// queuing is the only backpressure in front of the database.
const DefaultMaxConns = 5

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// PostgresStore is a persistent Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool for the given Postgres DSN.
// maxConns bounds the pool; values <= 0 fall back to DefaultMaxConns.
// Call Init before use.
func NewPostgresStore(dsn string, maxConns int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("tally/store: open postgres: %w", err)
	}

	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}
	db.SetMaxOpenConns(maxConns)

	return &PostgresStore{db: db}, nil
}

// Init creates the counters table if it does not exist. Idempotent.
func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS counters (
			namespace TEXT NOT NULL,
			name      TEXT NOT NULL,
			count     BIGINT NOT NULL,
			PRIMARY KEY (namespace, name)
		)
	`)
	if err != nil {
		return &Error{Kind: classifyPostgres(err), Op: "init", Err: err}
	}
	return nil
}

// Set inserts or replaces the counter for (namespace, name) using the
// engine's ON CONFLICT resolution, a single atomic statement.
func (s *PostgresStore) Set(ctx context.Context, namespace, name string, count int64) (Counter, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO counters (namespace, name, count) VALUES ($1, $2, $3)
		ON CONFLICT (namespace, name) DO UPDATE SET count = EXCLUDED.count
	`, namespace, name, count)
	if err != nil {
		return Counter{}, &Error{Kind: classifyPostgres(err), Op: "set", Err: err}
	}
	return Counter{Namespace: namespace, Name: name, Count: count}, nil
}

// Get returns the counter for (namespace, name), or nil if absent.
func (s *PostgresStore) Get(ctx context.Context, namespace, name string) (*Counter, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT count FROM counters WHERE namespace = $1 AND name = $2`,
		namespace, name,
	).Scan(&count)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Kind: classifyPostgres(err), Op: "get", Err: err}
	}
	return &Counter{Namespace: namespace, Name: name, Count: count}, nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func classifyPostgres(err error) Kind {
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return KindUnavailable
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08": // connection exception
			return KindUnavailable
		case "23": // integrity constraint violation
			return KindConstraint
		}
	}
	return KindIO
}
