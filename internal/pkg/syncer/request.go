package syncer

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// ProductInput is one product payload of a sync request.
type ProductInput struct {
	ExternalID  string   `json:"external_id" validate:"required,max=100"`
	Handle      string   `json:"handle" validate:"max=255"`
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description"`
	ProductType string   `json:"product_type" validate:"max=150"`
	Vendor      string   `json:"vendor" validate:"max=150"`
	Price       float64  `json:"price" validate:"gte=0"`
	ImageURL    string   `json:"image_url" validate:"max=500"`
	Tags        []string `json:"tags"`
}

// Request is an inbound sync request. The regenerate flag is the legacy
// equivalent of mode=refresh and is collapsed into the resolved mode.
type Request struct {
	Mode       string         `json:"mode" validate:"omitempty,oneof=auto refresh"`
	Regenerate bool           `json:"regenerate"`
	Products   []ProductInput `json:"products" validate:"required,min=1,max=1000,dive"`
}

var validate = validator.New()

// Validate checks the request shape; failures map to a validation rejection.
func (r *Request) Validate() error {
	return validate.Struct(r)
}

// RefreshState reports a shop's refresh budget in the response.
type RefreshState struct {
	Used        int       `json:"used"`
	Limit       int       `json:"limit"`
	Remaining   int       `json:"remaining"`
	NextCycleAt time.Time `json:"next_cycle_at"`
}

// Result is the outcome of one admitted, committed sync run.
type Result struct {
	RunUUID                string       `json:"run_id"`
	Mode                   Mode         `json:"mode"`
	ProductsSynced         int          `json:"products_synced"`
	ProductsSkipped        int          `json:"products_skipped"`
	RecommendationsCreated int          `json:"recommendations_created"`
	TotalRecommendations   int64        `json:"total_recommendations"`
	TokensUsed             int          `json:"tokens_used"`
	Refresh                RefreshState `json:"refresh"`
	TokensRemainingToday   *int64       `json:"tokens_remaining_today,omitempty"`
}
