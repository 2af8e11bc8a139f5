// Package store defines the [Store] interface for counter persistence
// backends and provides three implementations:
//
//   - [MemoryStore]: fast, in-memory counters that are lost on restart.
//   - [SQLiteStore]: persistent counters backed by a SQLite database.
//   - [PostgresStore]: persistent counters backed by PostgreSQL.
//
// A Redis-backed store lives in the nested redis package. Custom backends
// can be created by implementing the [Store] interface.
package store
