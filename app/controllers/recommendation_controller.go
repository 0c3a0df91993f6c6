package controllers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/pairsell/pairsell/app/models"
	"github.com/pairsell/pairsell/app/repository"
	"github.com/pairsell/pairsell/internal/pkg/database"
	"github.com/pairsell/pairsell/internal/pkg/reccache"
	"github.com/pairsell/pairsell/internal/pkg/shopcontext"
	"github.com/pairsell/pairsell/internal/pkg/tracking"
)

const (
	defaultRecommendationLimit = 4
	maxRecommendationLimit     = 10
)

type recommendedProductView struct {
	ExternalID  string  `json:"external_id"`
	Handle      string  `json:"handle"`
	Title       string  `json:"title"`
	ProductType string  `json:"product_type"`
	Vendor      string  `json:"vendor"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
}

type recommendationView struct {
	ID      uint                   `json:"id"`
	Reason  string                 `json:"reason"`
	Product recommendedProductView `json:"product"`
}

type recommendationsResponse struct {
	ProductExternalID string               `json:"product_external_id"`
	Recommendations   []recommendationView `json:"recommendations"`
}

// HandleGetRecommendationsAPI returns the recommendations for a source
// product, served from the read-side cache when fresh. Every served edge
// records one impression through the tracking buffer.
// Security: API Key required via router middleware
func HandleGetRecommendationsAPI(c *fiber.Ctx) error {
	sc := shopcontext.Get(c)
	if !sc.IsAuthenticated {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	externalID := c.Params("external_id")
	if externalID == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "product external id missing")
	}
	limit := parseLimitQuery(c, "limit", defaultRecommendationLimit, maxRecommendationLimit)

	cache := reccache.Default()
	if payload, ok := cache.Get(sc.ShopID, externalID, limit); ok {
		recordImpressions(payload)
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(payload)
	}

	factory := repository.GetGlobalFactory()
	product, err := factory.GetProductRepository().GetByExternalID(sc.ShopID, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "product not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "product lookup failed")
	}

	recs, err := factory.GetRecommendationRepository().ListBySource(sc.ShopID, product.ID, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "recommendation lookup failed")
	}

	response := recommendationsResponse{
		ProductExternalID: externalID,
		Recommendations:   make([]recommendationView, 0, len(recs)),
	}
	for _, rec := range recs {
		response.Recommendations = append(response.Recommendations, recommendationView{
			ID:     rec.ID,
			Reason: rec.Reason,
			Product: recommendedProductView{
				ExternalID:  rec.RecommendedProduct.ExternalID,
				Handle:      rec.RecommendedProduct.Handle,
				Title:       rec.RecommendedProduct.Title,
				ProductType: rec.RecommendedProduct.ProductType,
				Vendor:      rec.RecommendedProduct.Vendor,
				Price:       rec.RecommendedProduct.Price,
				ImageURL:    rec.RecommendedProduct.ImageURL,
			},
		})
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "failed to encode response")
	}
	cache.Put(sc.ShopID, externalID, limit, payload, reccache.DefaultTTL)
	recordImpressions(payload)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

// HandleTrackClickAPI records a click on a served recommendation edge.
// Security: API Key required via router middleware
func HandleTrackClickAPI(c *fiber.Ctx) error {
	sc := shopcontext.Get(c)
	if !sc.IsAuthenticated {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "recommendation id missing")
	}

	// Ownership check keeps one shop from inflating another shop's counters.
	var rec models.Recommendation
	if err := database.GetDB().Select("id").
		Where("id = ? AND shop_id = ?", id, sc.ShopID).
		First(&rec).Error; err != nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "recommendation not found")
	}

	if err := tracking.AddClick(uint(id)); err != nil {
		log.Warnf("[Tracking] Failed to buffer click for edge %d: %v", id, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// recordImpressions buffers one impression per edge in a served payload.
func recordImpressions(payload []byte) {
	recordImpressionsWith(payload, tracking.AddImpression)
}

// recordImpressionsWith keeps counting past individual buffering failures so
// one hiccup never skews the counters of the other served edges.
func recordImpressionsWith(payload []byte, add func(uint) error) {
	var response recommendationsResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return
	}
	for _, rec := range response.Recommendations {
		if err := add(rec.ID); err != nil {
			log.Warnf("[Tracking] Failed to buffer impression for edge %d: %v", rec.ID, err)
			continue
		}
	}
}
