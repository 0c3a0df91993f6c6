package plans

import (
	"strings"

	"github.com/pairsell/pairsell/app/models"
)

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
	PlanMax  Plan = "max"
)

// Normalize maps any stored plan string onto a known plan, falling back to
// free for unknown values so a corrupted row can never unlock paid limits.
func Normalize(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanPro):
		return PlanPro
	case string(PlanMax):
		return PlanMax
	default:
		return PlanFree
	}
}

// Rank orders plans for upgrade/downgrade comparisons
func Rank(plan string) int {
	switch Normalize(plan) {
	case PlanMax:
		return 2
	case PlanPro:
		return 1
	default:
		return 0
	}
}

// RefreshLimit returns how many full catalog refreshes a plan may run per
// billing cycle. Free shops can never refresh.
func RefreshLimit(plan string) int {
	switch Normalize(plan) {
	case PlanMax:
		return 10
	case PlanPro:
		return 3
	default:
		return 0
	}
}

// UsesGlobalTokenBudget reports whether a shop's token spend counts against
// the shared global daily budget. Paid plans only consume their own budget.
func UsesGlobalTokenBudget(plan string) bool {
	return Normalize(plan) == PlanFree
}

// DailyTokenBudget returns the effective per-shop daily token budget,
// honouring an operator override stored on the shop row.
func DailyTokenBudget(shop *models.Shop) int64 {
	if shop.DailyTokenBudget > 0 {
		return shop.DailyTokenBudget
	}
	return models.DefaultDailyTokenBudget
}
