// Package cache provides the key/value store behind sessions and read caches.
//
// Connect prefers Redis; when Redis cannot be reached the process falls back
// to an in-memory store so a single-node deployment still works.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gamevault/storefront/config"
)

// RDB is the Redis client opened by Connect, or nil when Redis is unavailable.
var RDB *redis.Client

var (
	mu           sync.RWMutex
	defaultStore Store = NewMemoryStore()
)

// Connect opens Redis, pings it, and installs it as the default store.
// On failure the memory store stays in place and the error is returned so the
// caller can log it.
func Connect(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("cache: redis ping: %w", err)
	}

	RDB = client
	SetDefault(NewRedisStore(client))
	return nil
}

// Close releases the Redis client if one is open.
func Close() error {
	if RDB == nil {
		return nil
	}
	return RDB.Close()
}

// Default returns the process-wide store.
func Default() Store {
	mu.RLock()
	defer mu.RUnlock()
	return defaultStore
}

// SetDefault swaps the process-wide store.
func SetDefault(s Store) {
	mu.Lock()
	defaultStore = s
	mu.Unlock()
}

// Get reads key from the default store into dest.
func Get(ctx context.Context, key string, dest any) (bool, error) {
	return Default().Get(ctx, key, dest)
}

// Set writes value under key in the default store.
func Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return Default().Set(ctx, key, value, ttl)
}

// Forget removes keys from the default store.
func Forget(ctx context.Context, keys ...string) error {
	return Default().Del(ctx, keys...)
}
