package recommend

import (
	"sort"
	"strings"

	"github.com/pairsell/pairsell/app/models"
)

// CandidateLimit caps the ranked candidate list handed to a generator, which
// also bounds the size of any prompt built from it.
const CandidateLimit = 20

// Candidates selects and ranks the admissible recommendation targets for a
// source product out of a pool. Exclusions, in order: the product itself,
// variant siblings of the same physical product, gender-incompatible items,
// and items of the identical fine-grained category (unless that category is
// the generic fallback). Survivors are ranked accessories first, then by
// ascending price, and capped at CandidateLimit.
func Candidates(source models.Product, pool []models.Product) []models.Product {
	sourceGender := ClassifyGender(source)
	sourceCategory := ClassifyCategory(source)

	filtered := make([]models.Product, 0, len(pool))
	for _, candidate := range pool {
		if strings.EqualFold(candidate.ExternalID, source.ExternalID) {
			continue
		}
		if SamePhysicalProduct(source, candidate) {
			continue
		}
		if !GenderCompatible(sourceGender, ClassifyGender(candidate)) {
			continue
		}
		candidateCategory := ClassifyCategory(candidate)
		if candidateCategory == sourceCategory && sourceCategory != CategoryOther {
			continue
		}
		filtered = append(filtered, candidate)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		accI := IsAccessoryCategory(ClassifyCategory(filtered[i]))
		accJ := IsAccessoryCategory(ClassifyCategory(filtered[j]))
		if accI != accJ {
			return accI
		}
		return filtered[i].Price < filtered[j].Price
	})

	if len(filtered) > CandidateLimit {
		filtered = filtered[:CandidateLimit]
	}
	return filtered
}
