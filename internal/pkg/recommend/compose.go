package recommend

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/pairsell/pairsell/app/models"
)

// fallbackComposite tries the primary generator and degrades to the fallback
// per product. Primary failures are logged and swallowed; token usage of a
// failed primary call is still reported, since the tokens were spent.
type fallbackComposite struct {
	primary  Generator
	fallback Generator
}

// WithFallback composes a primary generator with a fallback. A nil primary
// yields a generator that always uses the fallback, covering the case where
// no text-generation collaborator is configured at all.
func WithFallback(primary Generator, fallback Generator) Generator {
	return &fallbackComposite{primary: primary, fallback: fallback}
}

// NewDefaultGenerator wires the environment-configured live generator (when
// present) with the deterministic fallback.
func NewDefaultGenerator() Generator {
	var primary Generator
	if live := NewLiveGenerator(); live != nil {
		primary = live
	}
	return WithFallback(primary, NewFallbackGenerator())
}

func (g *fallbackComposite) Generate(ctx context.Context, source models.Product, candidates []models.Product) ([]Pick, Usage, error) {
	if g.primary == nil {
		return g.fallback.Generate(ctx, source, candidates)
	}

	picks, usage, err := g.primary.Generate(ctx, source, candidates)
	if err == nil && len(picks) > 0 {
		return picks, usage, nil
	}
	// A cancelled request propagates instead of degrading to the fallback.
	if ctx.Err() != nil {
		return nil, usage, ctx.Err()
	}
	if err != nil {
		log.Warnf("[Recommend] Generator failed for product %s, using fallback: %v", source.ExternalID, err)
	}

	fallbackPicks, fallbackUsage, fallbackErr := g.fallback.Generate(ctx, source, candidates)
	usage.Add(fallbackUsage)
	return fallbackPicks, usage, fallbackErr
}
