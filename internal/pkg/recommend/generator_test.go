package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairsell/pairsell/app/models"
)

func testCandidates() []models.Product {
	return []models.Product{
		{ID: 10, ExternalID: "belt", Title: "Woven Belt", Price: 25},
		{ID: 11, ExternalID: "cap", Title: "Baseball Cap", Price: 15},
		{ID: 12, ExternalID: "tee", Title: "Graphic Tee", Price: 30},
		{ID: 13, ExternalID: "coat", Title: "Wool Coat", Price: 150},
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"surrounded by prose", `Sure! Here you go: {"a":1} hope that helps`, `{"a":1}`, true},
		{"nested objects", `{"a":{"b":2}}`, `{"a":{"b":2}}`, true},
		{"brace inside string", `{"a":"}"}`, `{"a":"}"}`, true},
		{"unbalanced", `{"a":1`, "", false},
		{"no object", "no json here", "", false},
	}

	for _, tt := range tests {
		got, ok := extractJSONObject(tt.in)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestParsePicks(t *testing.T) {
	content := `Here are my picks:
{"recommendations":[
  {"id":"belt","reason":"completes the outfit"},
  {"id":"belt","reason":"duplicate"},
  {"id":"unknown","reason":"not a candidate"},
  {"id":"cap","reason":"casual match"}
]}`

	picks, err := ParsePicks(content, testCandidates())
	require.NoError(t, err)
	require.Len(t, picks, 2)
	assert.Equal(t, uint(10), picks[0].Product.ID)
	assert.Equal(t, "completes the outfit", picks[0].Reason)
	assert.Equal(t, uint(11), picks[1].Product.ID)
}

func TestParsePicksCapsAtMaxPicks(t *testing.T) {
	content := `{"recommendations":[
  {"id":"belt","reason":"r1"},
  {"id":"cap","reason":"r2"},
  {"id":"tee","reason":"r3"},
  {"id":"coat","reason":"r4"}
]}`

	picks, err := ParsePicks(content, testCandidates())
	require.NoError(t, err)
	assert.Len(t, picks, MaxPicks)
}

func TestParsePicksUnusable(t *testing.T) {
	_, err := ParsePicks("no json at all", testCandidates())
	assert.Error(t, err)

	_, err = ParsePicks(`{"recommendations":[{"id":"ghost","reason":"x"}]}`, testCandidates())
	assert.Error(t, err)

	_, err = ParsePicks(`{"recommendations": broken]`, testCandidates())
	assert.Error(t, err)
}

func TestFallbackGeneratorPrefersAccessories(t *testing.T) {
	gen := NewFallbackGenerator()
	picks, usage, err := gen.Generate(context.Background(), models.Product{ID: 1}, testCandidates())
	require.NoError(t, err)
	require.Len(t, picks, MaxPicks)

	// Both accessories first, then the top of the ranked list.
	assert.Equal(t, uint(10), picks[0].Product.ID)
	assert.Equal(t, uint(11), picks[1].Product.ID)
	assert.Equal(t, uint(12), picks[2].Product.ID)
	for _, p := range picks {
		assert.Equal(t, FallbackReason, p.Reason)
	}
	assert.Zero(t, usage.Total())
}

func TestFallbackGeneratorShortCandidateList(t *testing.T) {
	gen := NewFallbackGenerator()
	picks, _, err := gen.Generate(context.Background(), models.Product{ID: 1}, testCandidates()[:2])
	require.NoError(t, err)
	assert.Len(t, picks, 2)
}

type stubGenerator struct {
	picks []Pick
	usage Usage
	err   error
	calls int
}

func (s *stubGenerator) Generate(_ context.Context, _ models.Product, _ []models.Product) ([]Pick, Usage, error) {
	s.calls++
	return s.picks, s.usage, s.err
}

func TestWithFallbackUsesPrimaryResult(t *testing.T) {
	primary := &stubGenerator{
		picks: []Pick{{Product: models.Product{ID: 10}, Reason: "from model"}},
		usage: Usage{PromptTokens: 100, CompletionTokens: 20},
	}
	gen := WithFallback(primary, NewFallbackGenerator())

	picks, usage, err := gen.Generate(context.Background(), models.Product{ID: 1}, testCandidates())
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, "from model", picks[0].Reason)
	assert.Equal(t, 120, usage.Total())
}

func TestWithFallbackDegradesOnPrimaryError(t *testing.T) {
	primary := &stubGenerator{
		err:   errors.New("upstream unavailable"),
		usage: Usage{PromptTokens: 50},
	}
	gen := WithFallback(primary, NewFallbackGenerator())

	picks, usage, err := gen.Generate(context.Background(), models.Product{ID: 1}, testCandidates())
	require.NoError(t, err)
	require.Len(t, picks, MaxPicks)
	assert.Equal(t, FallbackReason, picks[0].Reason)
	// Tokens of the failed call are still accounted for.
	assert.Equal(t, 50, usage.Total())
	assert.Equal(t, 1, primary.calls)
}

func TestWithFallbackWithoutPrimary(t *testing.T) {
	gen := WithFallback(nil, NewFallbackGenerator())
	picks, usage, err := gen.Generate(context.Background(), models.Product{ID: 1}, testCandidates())
	require.NoError(t, err)
	assert.Len(t, picks, MaxPicks)
	assert.Zero(t, usage.Total())
}

func TestBuildPromptContainsCandidateIDs(t *testing.T) {
	prompt := BuildPrompt(models.Product{ExternalID: "src", Title: "Slim Jeans"}, testCandidates())
	for _, c := range testCandidates() {
		assert.Contains(t, prompt, "id="+c.ExternalID)
	}
}
