// Package cache stores extracted method lists so repeated lookups of the same
// file at the same commit skip the read and the parse.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ricesearch/bugeval/internal/config"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

// Cache is a byte-valued key/value cache.
type Cache interface {
	// Get returns the value for key. ok is false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases resources.
	Close() error
}

// Metrics is the interface for recording cache metrics.
// This allows the cache to be decoupled from the metrics package.
type Metrics interface {
	RecordCacheHit(cacheType string)
	RecordCacheMiss(cacheType string)
}

// New creates a Cache based on the configuration.
func New(cfg config.CacheConfig) (Cache, error) {
	switch strings.ToLower(cfg.Type) {
	case "memory", "":
		return NewMemoryCache(cfg.Size), nil

	case "redis":
		if cfg.RedisURL == "" {
			return nil, errors.New(errors.CodeValidation, "redis url not configured")
		}
		return NewRedisCache(cfg.RedisURL, time.Duration(cfg.TTL)*time.Second)

	default:
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unknown cache type: %s", cfg.Type))
	}
}
