// Command tallyd serves the tally counter API over HTTP.
//
// Configuration comes from the environment; a .env file is loaded first if
// present:
//
//	DATABASE_URL     backend DSN: postgres://, redis://, or a SQLite path
//	PORT             TCP port to listen on
//	TALLY_MAX_CONNS  Postgres connection pool bound (default 5)
//	LOG_LEVEL        log level (default "info")
//
// Any startup failure (bad configuration, unreachable backend, schema
// initialization) aborts the process. Request-time failures never do.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ryhazerus/tally"
	"github.com/ryhazerus/tally/internal/log"
	"github.com/ryhazerus/tally/store"
	redisstore "github.com/ryhazerus/tally/store/redis"
)

func main() {
	godotenv.Load()

	logger, err := log.New(envOr("LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL must be set")
	}
	port := os.Getenv("PORT")
	if port == "" {
		logger.Fatal("PORT must be set")
	}

	maxConns := store.DefaultMaxConns
	if v := os.Getenv("TALLY_MAX_CONNS"); v != "" {
		maxConns, err = strconv.Atoi(v)
		if err != nil {
			logger.Fatal("invalid TALLY_MAX_CONNS", zap.String("value", v), zap.Error(err))
		}
	}

	st, err := openStore(dsn, maxConns)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}

	if err := st.Init(context.Background()); err != nil {
		logger.Fatal("initialize store", zap.Error(err))
	}

	srv := tally.New(tally.WithStore(st), tally.WithLogger(logger))
	defer srv.Close()

	addr := "127.0.0.1:" + port
	logger.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, srv); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}

// openStore picks a backend from the DSN scheme: postgres:// and redis://
// URLs select those backends, anything else is treated as a SQLite path.
func openStore(dsn string, maxConns int) (store.Store, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return store.NewPostgresStore(dsn, maxConns)
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		opts, err := goredis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redisstore.NewRedisStore(goredis.NewClient(opts)), nil
	default:
		return store.NewSQLiteStore(dsn)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
