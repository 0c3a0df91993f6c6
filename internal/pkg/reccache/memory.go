package reccache

import (
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	shopID    uint
	payload   []byte
	expiresAt time.Time
}

// MemoryCache is a process-local TTL map. Invalidation removes every entry of
// a shop; the sweeper evicts expired entries in the background so the map
// does not grow unbounded between reads.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	stopCh  chan struct{}
	once    sync.Once
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		stopCh:  make(chan struct{}),
	}
}

func cacheKey(shopID uint, productExternalID string, limit int) string {
	return fmt.Sprintf("shop:%d:product:%s:limit:%d", shopID, productExternalID, limit)
}

func (c *MemoryCache) Get(shopID uint, productExternalID string, limit int) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(shopID, productExternalID, limit)]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.payload, true
}

func (c *MemoryCache) Put(shopID uint, productExternalID string, limit int, payload []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	c.entries[cacheKey(shopID, productExternalID, limit)] = memoryEntry{
		shopID:    shopID,
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *MemoryCache) InvalidateShop(shopID uint) {
	c.mu.Lock()
	for key, entry := range c.entries {
		if entry.shopID == shopID {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Sweep evicts expired entries.
func (c *MemoryCache) Sweep() {
	now := time.Now()
	c.mu.Lock()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// StartSweeper runs Sweep on the given interval until Stop is called.
func (c *MemoryCache) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = SweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-c.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the background sweeper.
func (c *MemoryCache) Stop() {
	c.once.Do(func() {
		close(c.stopCh)
	})
}

// Len reports the current number of entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
