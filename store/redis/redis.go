// Package redis provides a Redis-backed implementation of [store.Store].
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/ryhazerus/tally/store"
)

// Compile-time interface check.
var _ store.Store = (*RedisStore)(nil)

// RedisStore is a Store backed by Redis. Each counter is a plain integer
// value under "tally:<namespace>/<name>". SET is Redis's native atomic
// insert-or-replace, so writes need no script or transaction.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Set inserts or replaces the counter for (namespace, name).
func (r *RedisStore) Set(ctx context.Context, namespace, name string, count int64) (store.Counter, error) {
	if err := r.client.Set(ctx, redisKey(namespace, name), count, 0).Err(); err != nil {
		return store.Counter{}, &store.Error{Kind: classify(err), Op: "set", Err: err}
	}
	return store.Counter{Namespace: namespace, Name: name, Count: count}, nil
}

// Get returns the counter for (namespace, name), or nil if absent.
func (r *RedisStore) Get(ctx context.Context, namespace, name string) (*store.Counter, error) {
	val, err := r.client.Get(ctx, redisKey(namespace, name)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &store.Error{Kind: classify(err), Op: "get", Err: err}
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, &store.Error{Kind: store.KindIO, Op: "get", Err: fmt.Errorf("parse count: %w", err)}
	}
	return &store.Counter{Namespace: namespace, Name: name, Count: count}, nil
}

// Init verifies the Redis server is reachable. Redis needs no schema, so
// repeated calls are trivially idempotent.
func (r *RedisStore) Init(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return &store.Error{Kind: store.KindUnavailable, Op: "init", Err: err}
	}
	return nil
}

// Close closes the underlying Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func redisKey(namespace, name string) string {
	return "tally:" + namespace + "/" + name
}

// classify splits server-reported errors (protocol, wrong type) from
// transport failures.
func classify(err error) store.Kind {
	var rerr redis.Error
	if errors.As(err, &rerr) {
		return store.KindIO
	}
	return store.KindUnavailable
}
