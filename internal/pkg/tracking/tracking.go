package tracking

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/pairsell/pairsell/internal/pkg/cache"
	"github.com/pairsell/pairsell/internal/pkg/database"
)

const (
	impressionsKey = "recommendation:counters:impressions"
	clicksKey      = "recommendation:counters:clicks"
)

// AddImpression increments the pending impression counter for an edge in Redis
func AddImpression(recommendationID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(recommendationID), 10)
	return cache.GetClient().HIncrBy(ctx, impressionsKey, field, 1).Err()
}

// AddClick increments the pending click counter for an edge in Redis
func AddClick(recommendationID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(recommendationID), 10)
	return cache.GetClient().HIncrBy(ctx, clicksKey, field, 1).Err()
}

// FlushAll flushes pending impression and click counters to the database
func FlushAll() error {
	if err := flushHashToColumn(impressionsKey, "impressions"); err != nil {
		return err
	}
	return flushHashToColumn(clicksKey, "clicks")
}

// StartFlusher flushes the buffered counters on a fixed interval.
func StartFlusher(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if err := FlushAll(); err != nil {
				log.Warnf("[Tracking] Flush failed: %v", err)
			}
		}
	}()
}

// flushHashToColumn drains a Redis hash atomically and applies batched
// increments to the recommendations table. Uses RENAME to a temporary key so
// in-flight increments are never lost during the drain.
func flushHashToColumn(redisKey, column string) error {
	ctx := context.Background()
	rdb := cache.GetClient()

	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", redisKey, tmpKey).Err(); err != nil {
		// If key does not exist, nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		return err
	}

	counts, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}

	db := database.GetDB()
	for field, value := range counts {
		id, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue
		}
		delta, err := strconv.ParseInt(value, 10, 64)
		if err != nil || delta == 0 {
			continue
		}
		query := fmt.Sprintf("UPDATE recommendations SET %s = %s + ? WHERE id = ?", column, column)
		if err := db.Exec(query, delta, id).Error; err != nil {
			log.Warnf("[Tracking] Failed to apply %s delta for edge %d: %v", column, id, err)
		}
	}

	return rdb.Del(ctx, tmpKey).Err()
}
