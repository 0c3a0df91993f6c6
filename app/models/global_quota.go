package models

import (
	"time"
)

// DefaultGlobalDailyTokenBudget seeds the singleton quota row on first boot.
const DefaultGlobalDailyTokenBudget int64 = 1000000

// GlobalQuota is the singleton daily token budget shared by every free plan
// shop. TokensUsedToday only counts for the day stored in ResetDate; readers
// treat a stale ResetDate as zero usage and the physical reset happens lazily
// under a row lock on the next debit.
type GlobalQuota struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	DailyTokenBudget int64     `gorm:"default:1000000" json:"daily_token_budget"`
	TokensUsedToday  int64     `gorm:"default:0" json:"tokens_used_today"`
	ResetDate        string    `gorm:"type:varchar(10)" json:"reset_date"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
