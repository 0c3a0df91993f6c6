package recommend

import (
	"context"

	"github.com/pairsell/pairsell/app/models"
)

// FallbackReason is the fixed rationale attached to heuristic picks.
const FallbackReason = "Frequently paired with this product"

// FallbackGenerator picks deterministically from the ranked candidate list:
// accessories first, then the top of the list, up to MaxPicks. It never
// fails and spends no tokens, so it is safe as the degradation path when the
// text-generation collaborator is unavailable or disabled.
type FallbackGenerator struct{}

func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

func (g *FallbackGenerator) Generate(_ context.Context, _ models.Product, candidates []models.Product) ([]Pick, Usage, error) {
	picks := make([]Pick, 0, MaxPicks)
	taken := make(map[uint]bool, MaxPicks)

	for _, candidate := range candidates {
		if len(picks) == MaxPicks {
			break
		}
		if IsAccessoryCategory(ClassifyCategory(candidate)) && !taken[candidate.ID] {
			picks = append(picks, Pick{Product: candidate, Reason: FallbackReason})
			taken[candidate.ID] = true
		}
	}
	for _, candidate := range candidates {
		if len(picks) == MaxPicks {
			break
		}
		if !taken[candidate.ID] {
			picks = append(picks, Pick{Product: candidate, Reason: FallbackReason})
			taken[candidate.ID] = true
		}
	}

	return picks, Usage{}, nil
}
