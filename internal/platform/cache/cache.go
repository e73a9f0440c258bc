// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

/*
Package cache provides an advisory JSON key/value cache backed by Redis.

Architecture:

  - Advisory only: a miss or a Redis failure degrades to the authoritative
    store; it never turns into an incorrect authorization decision.
  - Errors are logged here and swallowed — callers receive a miss, not an
    error, so service operations cannot be aborted by the cache.
  - Values are serialized as JSON with a mandatory per-key TTL.
*/
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client for best-effort response caching.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

// New constructs a [Cache] around an established Redis client.
func New(client *redis.Client, logger *slog.Logger) *Cache {
	return &Cache{client: client, logger: logger}
}

// Set serializes value as JSON and stores it under key with the given TTL.
// Failures are logged and swallowed.
func (cache *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		cache.logger.Warn("cache_marshal_failed", slog.String("key", key), slog.Any("error", err))
		return
	}

	if err := cache.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		cache.logger.Warn("cache_set_failed", slog.String("key", key), slog.Any("error", err))
	}
}

// Get loads the JSON value stored under key into target.
//
// # Returns
//   - true only when a value existed and decoded cleanly; every failure
//     mode (miss, connectivity, corrupt payload) reports false.
func (cache *Cache) Get(ctx context.Context, key string, target any) bool {
	payload, err := cache.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			cache.logger.Warn("cache_get_failed", slog.String("key", key), slog.Any("error", err))
		}
		return false
	}

	if err := json.Unmarshal(payload, target); err != nil {
		cache.logger.Warn("cache_unmarshal_failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	return true
}

// Remove deletes the value stored under key. Failures are logged and swallowed.
func (cache *Cache) Remove(ctx context.Context, key string) {
	if err := cache.client.Del(ctx, key).Err(); err != nil {
		cache.logger.Warn("cache_remove_failed", slog.String("key", key), slog.Any("error", err))
	}
}
