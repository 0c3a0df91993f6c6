package recommend

import (
	"context"

	"github.com/pairsell/pairsell/app/models"
)

// MaxPicks is how many recommendations a generator returns per source product.
const MaxPicks = 3

// Pick is one recommended target with its rationale.
type Pick struct {
	Product models.Product
	Reason  string
}

// Usage is the token accounting of one or more generator calls.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

func (u Usage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

// Add accumulates another call's usage.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
}

// Generator produces up to MaxPicks recommendations for a source product out
// of an already filtered, ranked candidate list. Implementations must only
// return products present in candidates.
type Generator interface {
	Generate(ctx context.Context, source models.Product, candidates []models.Product) ([]Pick, Usage, error)
}
