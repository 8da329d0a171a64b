// Package cache is the key/value layer behind sessions and read-through query
// caching. Values are JSON encoded so any store can hold any type.
//
//	cache.Set(ctx, "categories", cats, time.Minute)
//	var out []models.Category
//	if cache.Get(ctx, "categories", &out) { ... }
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/config"
)

// Store is a raw byte cache with TTL support.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

var (
	mu    sync.RWMutex
	store Store = NewMemoryStore()
)

// Connect selects the store named by CACHE_DRIVER. When Redis is configured
// but unreachable, the memory store stays in place and the error is returned
// so the caller can log it.
func Connect() error {
	if config.CacheDriver() != "redis" {
		Use(NewMemoryStore())
		return nil
	}

	rs, err := NewRedisStore(config.RedisAddr(), config.RedisPassword())
	if err != nil {
		return err
	}
	Use(rs)
	return nil
}

// Use swaps the active store.
func Use(s Store) {
	mu.Lock()
	store = s
	mu.Unlock()
}

func current() Store {
	mu.RLock()
	defer mu.RUnlock()
	return store
}

// Get retrieves a cached value by key and unmarshals into dest.
// Returns true on a cache hit, false on miss or decode error.
func Get(ctx context.Context, key string, dest interface{}) bool {
	raw, ok := current().Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Set stores value under key for the given TTL. A zero TTL means no expiry.
func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return current().Set(ctx, key, data, ttl)
}

// Del removes one or more keys.
func Del(ctx context.Context, keys ...string) error {
	return current().Del(ctx, keys...)
}

// Forget is an alias for Del.
func Forget(ctx context.Context, key string) error {
	return Del(ctx, key)
}
