package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces keys written by Redis.
const DefaultKeyPrefix = "reqres:"

// Redis is a Cache backed by a Redis server.
type Redis struct {
	redis  *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed cache. An empty prefix selects DefaultKeyPrefix.
func NewRedis(redisClient *redis.Client, prefix string) *Redis {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

// TryGet implements Cache.
func (r *Redis) TryGet(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.redis.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues(backendRedis).Inc()
			return nil, false, nil
		}
		CacheErrors.WithLabelValues(backendRedis, "get").Inc()
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "get").Inc()
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	// Redis expiry has millisecond granularity; the stored deadline is authoritative.
	if entry.IsExpired() {
		_ = r.Delete(ctx, key)
		CacheMisses.WithLabelValues(backendRedis).Inc()
		return nil, false, nil
	}

	CacheHits.WithLabelValues(backendRedis).Inc()
	return entry.Data, true, nil
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		CacheErrors.WithLabelValues(backendRedis, "set").Inc()
		return fmt.Errorf("%w: %v", ErrInvalidTTL, ttl)
	}

	payload, err := json.Marshal(NewEntry(data, time.Now(), ttl))
	if err != nil {
		CacheErrors.WithLabelValues(backendRedis, "set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := r.redis.Set(ctx, r.key(key), payload, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a cache entry.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.redis.Del(ctx, r.key(key)).Err(); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
