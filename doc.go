// Package tally implements a namespaced counter store served over HTTP.
//
// # Key Concepts
//
//   - A counter is a signed 64-bit integer identified by a (namespace, name)
//     pair. Writes are absolute: each POST replaces the stored value, and a
//     counter that was never written reads as not found rather than zero.
//   - [store.Store] is the persistence backend. An in-memory store is used
//     by default; SQLite, PostgreSQL and Redis backends are available for
//     durability across restarts.
//   - [Server] is the HTTP façade. It is stateless and translates every
//     request into exactly one store call.
//
// # Quick Start
//
//	srv := tally.New(tally.WithStore(store.NewMemoryStore()))
//	defer srv.Close()
//
//	http.ListenAndServe(":8080", srv)
//
// The wire contract is two routes:
//
//	POST /api/{namespace}/{counter}  {"count": 42}  ->  200 {"count": 42}
//	GET  /api/{namespace}/{counter}                 ->  200 {"count": 42}
//	                                                    404 {"error": "Counter not found"}
//
// See the [Server] documentation for the full API.
package tally
