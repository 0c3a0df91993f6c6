package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sashabaranov/go-openai"

	"github.com/pairsell/pairsell/app/models"
	"github.com/pairsell/pairsell/internal/pkg/env"
)

// InterCallDelay paces consecutive completion calls so one large catalog sync
// stays inside the provider's own rate limits.
const InterCallDelay = 500 * time.Millisecond

const systemPrompt = "You are a merchandising assistant for an online shop. " +
	"You suggest which products pair well together and answer with a single JSON object."

// LiveGenerator asks a chat completion model for up to MaxPicks pairings.
// The model's answer is advisory free text expected to contain one JSON
// object; anything unusable is reported as an error so the caller can fall
// back to the heuristic picker.
type LiveGenerator struct {
	client *openai.Client
	model  string

	mu       sync.Mutex
	lastCall time.Time
}

// NewLiveGenerator builds a generator from the environment. It returns nil
// when no API key is configured, which callers treat as "collaborator absent".
func NewLiveGenerator() *LiveGenerator {
	apiKey := env.GetEnv("OPENAI_API_KEY", "")
	if apiKey == "" {
		return nil
	}
	model := env.GetEnv("OPENAI_MODEL", openai.GPT4oMini)
	return &LiveGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (g *LiveGenerator) Generate(ctx context.Context, source models.Product, candidates []models.Product) ([]Pick, Usage, error) {
	if err := g.throttle(ctx); err != nil {
		return nil, Usage{}, err
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(source, candidates)},
		},
	})
	if err != nil {
		return nil, Usage{}, fmt.Errorf("completion call failed: %w", err)
	}

	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}

	if len(resp.Choices) == 0 {
		return nil, usage, fmt.Errorf("completion returned no choices")
	}

	picks, err := ParsePicks(resp.Choices[0].Message.Content, candidates)
	if err != nil {
		return nil, usage, err
	}
	return picks, usage, nil
}

// throttle enforces InterCallDelay between consecutive calls. Each caller
// reserves its slot under the lock, so concurrent calls queue up instead of
// racing past each other.
func (g *LiveGenerator) throttle(ctx context.Context) error {
	g.mu.Lock()
	now := time.Now()
	wait := InterCallDelay - now.Sub(g.lastCall)
	if wait < 0 {
		wait = 0
	}
	g.lastCall = now.Add(wait)
	g.mu.Unlock()

	if wait == 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BuildPrompt renders the bounded request for one source product. The
// candidate list is already filtered, ranked and capped, so prompt size is
// bounded by CandidateLimit.
func BuildPrompt(source models.Product, candidates []models.Product) string {
	var b strings.Builder
	b.WriteString("Pick up to 3 products from the candidate list that pair well with this product:\n\n")
	fmt.Fprintf(&b, "Product: %s (type: %s, vendor: %s, price: %.2f)\n\n", source.Title, source.ProductType, source.Vendor, source.Price)
	b.WriteString("Candidates:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- id=%s: %s (type: %s, price: %.2f)\n", c.ExternalID, c.Title, c.ProductType, c.Price)
	}
	b.WriteString("\nAnswer with one JSON object of the form " +
		`{"recommendations":[{"id":"<candidate id>","reason":"<short reason>"}]}` +
		". Use only ids from the candidate list.")
	return b.String()
}

type pickPayload struct {
	Recommendations []struct {
		ID     string `json:"id"`
		Reason string `json:"reason"`
	} `json:"recommendations"`
}

// ParsePicks extracts the first top-level JSON object from the model's answer
// and maps its ids back onto candidate products. Unknown ids are dropped with
// a log line, repeated ids are deduplicated, and an answer without any usable
// pick is an error.
func ParsePicks(content string, candidates []models.Product) ([]Pick, error) {
	raw, ok := extractJSONObject(content)
	if !ok {
		return nil, fmt.Errorf("no JSON object in completion content")
	}

	var payload pickPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("unparseable completion JSON: %w", err)
	}

	byExternalID := make(map[string]models.Product, len(candidates))
	for _, c := range candidates {
		byExternalID[c.ExternalID] = c
	}

	picks := make([]Pick, 0, MaxPicks)
	seen := make(map[string]bool, MaxPicks)
	for _, rec := range payload.Recommendations {
		if len(picks) == MaxPicks {
			break
		}
		id := strings.TrimSpace(rec.ID)
		if id == "" || seen[id] {
			continue
		}
		product, ok := byExternalID[id]
		if !ok {
			log.Warnf("[Recommend] Dropping pick with unknown candidate id %q", id)
			continue
		}
		seen[id] = true
		reason := strings.TrimSpace(rec.Reason)
		if reason == "" {
			reason = FallbackReason
		}
		picks = append(picks, Pick{Product: product, Reason: reason})
	}

	if len(picks) == 0 {
		return nil, fmt.Errorf("completion contained no usable picks")
	}
	return picks, nil
}

// extractJSONObject returns the first balanced top-level {...} substring.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
