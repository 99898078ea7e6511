// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

// Package cache provides the Redis-backed read-through cache for the
// cross-course assignment listing.
//
// The cache is strictly best-effort: a Redis outage degrades ClassGo to
// live Classroom fetches, it never degrades correctness. Cache errors are
// logged and counted, not returned.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/classgo/classgo/internal/config"
)

// ErrCacheMiss is returned by Backend.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Backend is a minimal byte-value cache. Implemented by RedisBackend in
// production and by in-memory fakes in tests.
type Backend interface {
	// Get returns the value for key, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Absent keys are not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies backend connectivity for health checks.
	Ping(ctx context.Context) error
}

// RedisBackend implements Backend on a Redis connection.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend connects to Redis with the given settings.
func NewRedisBackend(cfg config.RedisConfig) *RedisBackend {
	return &RedisBackend{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// Get returns the value for key, mapping redis.Nil to ErrCacheMiss.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores value under key with the given TTL.
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.client.Del(ctx, key).Err()
}

// Ping verifies Redis connectivity.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
