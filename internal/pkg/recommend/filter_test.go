package recommend

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pairsell/pairsell/app/models"
)

func TestCandidatesExclusions(t *testing.T) {
	source := models.Product{ID: 1, ExternalID: "p1", Handle: "linen-shirt-navy", Title: "Men's Linen Shirt"}
	pool := []models.Product{
		source,
		{ID: 2, ExternalID: "p2", Handle: "linen-shirt-white", Title: "Men's Linen Shirt"},
		{ID: 3, ExternalID: "p3", Handle: "wrap-dress", Title: "Wrap Dress"},
		{ID: 4, ExternalID: "p4", Handle: "oxford-shirt", Title: "Oxford Shirt"},
		{ID: 5, ExternalID: "p5", Handle: "woven-belt", Title: "Woven Belt", Price: 25},
		{ID: 6, ExternalID: "p6", Handle: "slim-jeans", Title: "Slim Jeans", Price: 80},
	}

	got := Candidates(source, pool)

	ids := make(map[string]bool, len(got))
	for _, c := range got {
		ids[c.ExternalID] = true
	}

	assert.False(t, ids["p1"], "source itself must be excluded")
	assert.False(t, ids["p2"], "variant sibling must be excluded")
	assert.False(t, ids["p3"], "female item must be excluded for a male source")
	assert.False(t, ids["p4"], "same category (top) must be excluded")
	assert.True(t, ids["p5"], "accessory must be admissible")
	assert.True(t, ids["p6"], "cross category bottom must be admissible")
}

func TestCandidatesFilterSymmetry(t *testing.T) {
	male := models.Product{ID: 1, ExternalID: "m", Title: "Men's Chinos"}
	female := models.Product{ID: 2, ExternalID: "f", Title: "Women's Heels"}
	pool := []models.Product{male, female}

	for _, c := range Candidates(male, pool) {
		assert.NotEqual(t, "f", c.ExternalID, "female product offered to male source")
	}
	for _, c := range Candidates(female, pool) {
		assert.NotEqual(t, "m", c.ExternalID, "male product offered to female source")
	}
}

func TestCandidatesRanking(t *testing.T) {
	source := models.Product{ID: 1, ExternalID: "src", Title: "Slim Jeans"}
	pool := []models.Product{
		source,
		{ID: 2, ExternalID: "tee", Title: "Graphic Tee", Price: 30},
		{ID: 3, ExternalID: "belt", Title: "Woven Belt", Price: 25},
		{ID: 4, ExternalID: "coat", Title: "Wool Coat", Price: 150},
		{ID: 5, ExternalID: "cap", Title: "Baseball Cap", Price: 15},
	}

	got := Candidates(source, pool)
	assert.Len(t, got, 4)
	// Accessories first (cap before belt by price), then remaining ascending by price.
	assert.Equal(t, "cap", got[0].ExternalID)
	assert.Equal(t, "belt", got[1].ExternalID)
	assert.Equal(t, "tee", got[2].ExternalID)
	assert.Equal(t, "coat", got[3].ExternalID)
}

func TestCandidatesCap(t *testing.T) {
	source := models.Product{ID: 1, ExternalID: "src", Title: "Slim Jeans"}
	pool := make([]models.Product, 0, 40)
	for i := 0; i < 40; i++ {
		pool = append(pool, models.Product{
			ID:         uint(i + 2),
			ExternalID: fmt.Sprintf("tee-%d", i),
			Title:      fmt.Sprintf("Graphic Tee %d", i),
			Price:      float64(i),
		})
	}

	got := Candidates(source, pool)
	assert.Len(t, got, CandidateLimit)
}
