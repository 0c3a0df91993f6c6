package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SYNC_RUN_STARTED = "started"
	SYNC_RUN_SUCCESS = "success"
	SYNC_RUN_FAILED  = "failed"
)

// SyncRun is the append-only audit record of one orchestrator invocation.
// It is created as `started` and finalized exactly once as `success` or
// `failed`; a finalized run is never mutated again.
type SyncRun struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	UUID                   string     `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	ShopID                 uint       `gorm:"index;not null" json:"shop_id"`
	Mode                   string     `gorm:"type:varchar(20)" json:"mode"`
	Status                 string     `gorm:"type:varchar(20);default:'started'" json:"status"`
	StartedAt              time.Time  `gorm:"type:timestamp" json:"started_at"`
	FinishedAt             *time.Time `gorm:"type:timestamp;default:null" json:"finished_at"`
	ProductsSubmitted      int        `gorm:"default:0" json:"products_submitted"`
	ProductsSynced         int        `gorm:"default:0" json:"products_synced"`
	ProductsSkipped        int        `gorm:"default:0" json:"products_skipped"`
	RecommendationsCreated int        `gorm:"default:0" json:"recommendations_created"`
	PromptTokens           int        `gorm:"default:0" json:"prompt_tokens"`
	CompletionTokens       int        `gorm:"default:0" json:"completion_tokens"`
	TotalTokens            int        `gorm:"default:0" json:"total_tokens"`
	ErrorMessage           string     `gorm:"type:text" json:"error_message,omitempty"`

	Shop Shop `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// NewSyncRun opens a run record for a shop; the caller persists it before the
// unit of work begins so failed runs survive the rollback.
func NewSyncRun(shopID uint, mode string, submitted int, now time.Time) *SyncRun {
	return &SyncRun{
		UUID:              uuid.New().String(),
		ShopID:            shopID,
		Mode:              mode,
		Status:            SYNC_RUN_STARTED,
		StartedAt:         now,
		ProductsSubmitted: submitted,
	}
}

// Finalize stamps the terminal state. It is a no-op when the run already left
// the started state, which keeps the record immutable after its first finish.
func (r *SyncRun) Finalize(status string, errMsg string, now time.Time) bool {
	if r.Status != SYNC_RUN_STARTED {
		return false
	}
	r.Status = status
	r.ErrorMessage = errMsg
	r.FinishedAt = &now
	return true
}

// Duration reports the wall time of a finalized run.
func (r *SyncRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
