// Package cache wraps the Redis client used for hot catalog reads.
//
// Every helper is nil-safe: when Redis is unreachable or not configured the
// callers fall through to the database, so cache failures never surface to
// the API client.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shashiranjanraj/kalakriti/config"
	"github.com/shashiranjanraj/kalakriti/pkg/metrics"
)

// RDB is the shared Redis client, set by Connect. Nil when Redis is disabled.
var RDB *redis.Client

// ErrMiss is returned by Get when the key is absent or the cache is disabled.
var ErrMiss = redis.Nil

// Connect dials Redis using REDIS_* config and verifies with a ping.
func Connect() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       config.RedisDB(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: ping redis at %s: %w", config.RedisAddr(), err)
	}

	RDB = client
	return nil
}

// Get returns the string stored at key, or ErrMiss.
func Get(ctx context.Context, key string) (string, error) {
	if RDB == nil {
		return "", ErrMiss
	}
	val, err := RDB.Get(ctx, key).Result()
	if err == redis.Nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("cache: get %q: %w", key, err)
	}
	metrics.CacheHits.WithLabelValues("redis").Inc()
	return val, nil
}

// Set stores value at key with the given TTL. A zero TTL means no expiry.
func Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if RDB == nil {
		return nil
	}
	if err := RDB.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %q: %w", key, err)
	}
	return nil
}

// Forget removes the given keys. Missing keys are not an error.
func Forget(ctx context.Context, keys ...string) error {
	if RDB == nil || len(keys) == 0 {
		return nil
	}
	if err := RDB.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: del: %w", err)
	}
	return nil
}

// Close releases the client. Safe to call when Connect never ran.
func Close() error {
	if RDB == nil {
		return nil
	}
	return RDB.Close()
}
