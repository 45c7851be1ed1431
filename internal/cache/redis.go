package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares extracted methods between runs and machines.
type RedisCache struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration // 0 = no expiry
	metrics Metrics
}

// NewRedisCache creates a new Redis cache.
// Returns error if connection fails.
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		prefix: "bugeval:methods:",
		ttl:    ttl,
	}, nil
}

// SetMetrics sets the metrics recorder for this cache.
func (rc *RedisCache) SetMetrics(metrics Metrics) {
	rc.metrics = metrics
}

// Get retrieves a value from Redis.
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := rc.client.Get(ctx, rc.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss("redis")
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	if rc.metrics != nil {
		rc.metrics.RecordCacheHit("redis")
	}
	return value, true, nil
}

// Set stores a value in Redis with the configured TTL.
func (rc *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := rc.client.Set(ctx, rc.prefix+key, value, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a key.
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, rc.prefix+key).Err()
}

// Close closes the Redis connection.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
