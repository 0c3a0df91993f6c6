package quota

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pairsell/pairsell/app/models"
)

// globalQuotaID is the primary key of the singleton budget row.
const globalQuotaID = 1

// Ledger owns the shared token and refresh counters. Admission checks use the
// plain read-side; the debit side always runs inside the caller's transaction
// and takes a row lock before the read-modify-write, so concurrent runs can
// never apply a stale base value.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// GlobalState is a read-only snapshot of the shared daily token budget.
type GlobalState struct {
	Budget  int64
	Used    int64
	ResetAt time.Time
}

func (s GlobalState) Remaining() int64 {
	if s.Used >= s.Budget {
		return 0
	}
	return s.Budget - s.Used
}

// GlobalState reads the shared budget without locking. A stale reset date
// counts as zero usage; the physical reset write is deferred to the next
// debit, which runs under the row lock.
func (l *Ledger) GlobalState(now time.Time) (*GlobalState, error) {
	var quota models.GlobalQuota
	if err := l.db.First(&quota, globalQuotaID).Error; err != nil {
		return nil, err
	}
	used := quota.TokensUsedToday
	if quota.ResetDate != DayKey(now) {
		used = 0
	}
	return &GlobalState{
		Budget:  quota.DailyTokenBudget,
		Used:    used,
		ResetAt: NextDailyReset(now),
	}, nil
}

// EffectiveShopTokens returns today's token usage of a shop, treating a stale
// counter date as zero.
func EffectiveShopTokens(shop *models.Shop, now time.Time) int64 {
	if shop.TokensDate != DayKey(now) {
		return 0
	}
	return shop.TokensUsedToday
}

// EffectiveRefreshCount returns the shop's refresh usage within the current
// billing cycle, treating a stale cycle key as zero.
func EffectiveRefreshCount(shop *models.Shop, now time.Time) int {
	if shop.RefreshCycleKey != CycleKey(shop.SubscriptionAnchor, now) {
		return 0
	}
	return shop.RefreshCount
}

// DebitGlobal adds the run's token spend to the shared counter. Must be
// called inside the run's transaction; the lock is held until that
// transaction commits or rolls back.
func (l *Ledger) DebitGlobal(tx *gorm.DB, now time.Time, tokens int64) error {
	var quota models.GlobalQuota
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&quota, globalQuotaID).Error; err != nil {
		return err
	}
	day := DayKey(now)
	if quota.ResetDate != day {
		quota.TokensUsedToday = 0
		quota.ResetDate = day
	}
	quota.TokensUsedToday += tokens
	return tx.Model(&models.GlobalQuota{}).
		Where("id = ?", globalQuotaID).
		Updates(map[string]any{
			"tokens_used_today": quota.TokensUsedToday,
			"reset_date":        quota.ResetDate,
		}).Error
}

// DebitShopTokens adds the run's token spend to the shop's daily counter
// under a row lock, lazily resetting a stale day first. Returns the counter
// value after the debit.
func (l *Ledger) DebitShopTokens(tx *gorm.DB, shopID uint, now time.Time, tokens int64) (int64, error) {
	var shop models.Shop
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&shop, shopID).Error; err != nil {
		return 0, err
	}
	day := DayKey(now)
	used := shop.TokensUsedToday
	if shop.TokensDate != day {
		used = 0
	}
	used += tokens
	err := tx.Model(&models.Shop{}).
		Where("id = ?", shopID).
		Updates(map[string]any{
			"tokens_used_today": used,
			"tokens_date":       day,
		}).Error
	return used, err
}

// RecordRefresh increments the shop's refresh counter for the current cycle
// under a row lock, resetting first when the stored cycle key is stale.
// Returns the counter value and cycle key after the increment.
func (l *Ledger) RecordRefresh(tx *gorm.DB, shopID uint, now time.Time) (int, string, error) {
	var shop models.Shop
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&shop, shopID).Error; err != nil {
		return 0, "", err
	}
	key := CycleKey(shop.SubscriptionAnchor, now)
	count := shop.RefreshCount
	if shop.RefreshCycleKey != key {
		count = 0
	}
	count++
	err := tx.Model(&models.Shop{}).
		Where("id = ?", shopID).
		Updates(map[string]any{
			"refresh_count":     count,
			"refresh_cycle_key": key,
			"last_refresh_at":   now,
		}).Error
	return count, key, err
}
