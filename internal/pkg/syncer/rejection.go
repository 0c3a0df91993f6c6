package syncer

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Rejection codes. Eligibility codes are permanent until an operator flips a
// flag; quota and rate codes are retryable after the carried RetryAt.
const (
	CodeSyncDisabled          = "SYNC_DISABLED"
	CodeShopNotEligible       = "SHOP_NOT_ELIGIBLE"
	CodeGlobalTokensExhausted = "GLOBAL_TOKENS_EXHAUSTED"
	CodeShopTokensExhausted   = "SHOP_TOKENS_EXHAUSTED"
	CodeRefreshNotAvailable   = "REFRESH_NOT_AVAILABLE"
	CodeRefreshLimitReached   = "REFRESH_LIMIT_REACHED"
	CodeValidationFailed      = "VALIDATION_FAILED"
)

// ErrInternal is returned to callers when the unit of work fails; the audit
// record carries the detail, the caller only sees a generic error.
var ErrInternal = errors.New("sync failed due to an internal error")

// Rejection is a structured admission refusal. It leaves no persisted side
// effects besides the finalized audit record.
type Rejection struct {
	Code      string     `json:"error"`
	Message   string     `json:"message"`
	Status    int        `json:"-"`
	RetryAt   *time.Time `json:"retry_at,omitempty"`
	Used      int        `json:"used,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Remaining *int       `json:"remaining,omitempty"`
}

// WithUsage attaches counter context to a quota rejection. Remaining is
// clamped at zero since the last debit may have overshot the limit.
func (r *Rejection) WithUsage(used, limit int) *Rejection {
	r.Used = used
	r.Limit = limit
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	r.Remaining = &remaining
	return r
}

func (r *Rejection) Error() string {
	return r.Code + ": " + r.Message
}

// Retryable reports whether the caller may retry after RetryAt.
func (r *Rejection) Retryable() bool {
	return r.RetryAt != nil
}

func rejectForbidden(code, message string) *Rejection {
	return &Rejection{Code: code, Message: message, Status: fiber.StatusForbidden}
}

func rejectRateLimited(code, message string, retryAt time.Time) *Rejection {
	return &Rejection{Code: code, Message: message, Status: fiber.StatusTooManyRequests, RetryAt: &retryAt}
}

func rejectValidation(message string) *Rejection {
	return &Rejection{Code: CodeValidationFailed, Message: message, Status: fiber.StatusUnprocessableEntity}
}
