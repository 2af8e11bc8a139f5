package tally

import (
	"go.uber.org/zap"

	"github.com/ryhazerus/tally/store"
)

// Option configures the Server.
type Option func(*Server)

// WithStore sets the backing store for counters.
// If not provided, an in-memory store is used by default.
func WithStore(s store.Store) Option {
	return func(srv *Server) {
		srv.store = s
	}
}

// WithLogger sets the logger used for request-time store failures.
// If not provided, logging is disabled.
func WithLogger(l *zap.Logger) Option {
	return func(srv *Server) {
		srv.log = l
	}
}
