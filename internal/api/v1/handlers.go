package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/pairsell/pairsell/app/controllers"
	"github.com/pairsell/pairsell/internal/pkg/middleware"
)

// APIServer implements the v1 API surface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ping": "pong"})
}

// PostSync ingests a catalog payload and runs the sync pipeline.
// Security is enforced via API key middleware attached in RegisterHandlers.
func (s *APIServer) PostSync(c *fiber.Ctx) error {
	return controllers.HandleSyncAPI(c)
}

// GetRecommendations serves the recommendations of a source product.
func (s *APIServer) GetRecommendations(c *fiber.Ctx) error {
	return controllers.HandleGetRecommendationsAPI(c)
}

// PostRecommendationClick records a click on a served edge.
func (s *APIServer) PostRecommendationClick(c *fiber.Ctx) error {
	return controllers.HandleTrackClickAPI(c)
}

// GetSyncRuns lists the shop's recent sync audit records.
func (s *APIServer) GetSyncRuns(c *fiber.Ctx) error {
	return controllers.HandleListSyncRunsAPI(c)
}

// RegisterHandlers attaches the v1 routes to the given router group.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)

	authed := router.Group("", middleware.APIKeyAuthMiddleware())
	authed.Post("/sync", s.PostSync)
	authed.Get("/sync/runs", s.GetSyncRuns)
	authed.Get("/products/:external_id/recommendations", s.GetRecommendations)
	authed.Post("/recommendations/:id/click", s.PostRecommendationClick)
}
