package reccache

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/pairsell/pairsell/internal/pkg/cache"
)

const redisKeyPrefix = "recs:"

// RedisCache shares cached recommendation payloads across service instances
// through the central cache server. Expiry is delegated to redis TTLs, so
// Sweep is a no-op.
type RedisCache struct{}

func NewRedisCache() *RedisCache {
	return &RedisCache{}
}

func redisKey(shopID uint, productExternalID string, limit int) string {
	return fmt.Sprintf("%s%s", redisKeyPrefix, cacheKey(shopID, productExternalID, limit))
}

func (c *RedisCache) Get(shopID uint, productExternalID string, limit int) ([]byte, bool) {
	val, err := cache.Get(redisKey(shopID, productExternalID, limit))
	if err != nil {
		return nil, false
	}
	return []byte(val), true
}

func (c *RedisCache) Put(shopID uint, productExternalID string, limit int, payload []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := cache.Set(redisKey(shopID, productExternalID, limit), payload, ttl); err != nil {
		log.Warnf("[RecCache] Failed to store payload: %v", err)
	}
}

func (c *RedisCache) InvalidateShop(shopID uint) {
	pattern := fmt.Sprintf("%sshop:%d:*", redisKeyPrefix, shopID)
	if err := cache.DeleteByPattern(pattern); err != nil {
		log.Warnf("[RecCache] Failed to invalidate shop %d: %v", shopID, err)
	}
}

// Sweep is a no-op; redis evicts expired keys itself.
func (c *RedisCache) Sweep() {}
