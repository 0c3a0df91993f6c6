package reccache

import (
	"time"

	"github.com/pairsell/pairsell/internal/pkg/env"
)

// DefaultTTL bounds how long a cached recommendation payload may be served
// without a re-read, independent of write invalidation.
const DefaultTTL = 5 * time.Minute

// SweepInterval is how often the background sweeper evicts expired entries.
const SweepInterval = 1 * time.Minute

// Cache is the read-side cache in front of the recommendation query path,
// keyed by (shop, source product external id, limit). Every committed sync
// invalidates a shop's entries so stale recommendations are never served
// past a write.
type Cache interface {
	Get(shopID uint, productExternalID string, limit int) ([]byte, bool)
	Put(shopID uint, productExternalID string, limit int, payload []byte, ttl time.Duration)
	InvalidateShop(shopID uint)
	Sweep()
}

// New selects the cache implementation from CACHE_DRIVER: "redis" shares
// entries across instances, anything else uses the process-local map.
func New() Cache {
	if env.GetEnv("CACHE_DRIVER", "memory") == "redis" {
		return NewRedisCache()
	}
	return NewMemoryCache()
}

var defaultCache Cache

// Setup initializes the process-wide cache instance.
func Setup() {
	defaultCache = New()
}

// Default returns the process-wide cache instance.
func Default() Cache {
	if defaultCache == nil {
		Setup()
	}
	return defaultCache
}
