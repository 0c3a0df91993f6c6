package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pairsell/pairsell/app/repository"
	"github.com/pairsell/pairsell/internal/pkg/shopcontext"
	"github.com/pairsell/pairsell/internal/pkg/syncer"
)

// HandleSyncAPI ingests a product catalog payload and runs the sync pipeline
// for the authenticated shop.
// Security: API Key required via router middleware
func HandleSyncAPI(c *fiber.Ctx) error {
	sc := shopcontext.Get(c)
	if !sc.IsAuthenticated {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	var req syncer.Request
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Malformed request body")
	}

	shopRepo := repository.GetGlobalFactory().GetShopRepository()
	shop, err := shopRepo.GetByID(sc.ShopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "shop not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "shop lookup failed")
	}

	result, err := syncer.Default().Run(c.Context(), shop, &req)
	if err != nil {
		var rejection *syncer.Rejection
		if errors.As(err, &rejection) {
			return c.Status(rejection.Status).JSON(rejection)
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "sync failed")
	}

	return c.JSON(result)
}

// HandleListSyncRunsAPI returns the shop's most recent sync audit records.
// Security: API Key required via router middleware
func HandleListSyncRunsAPI(c *fiber.Ctx) error {
	sc := shopcontext.Get(c)
	if !sc.IsAuthenticated {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	limit := parseLimitQuery(c, "limit", 20, 100)
	runs, err := repository.GetGlobalFactory().GetSyncRunRepository().ListByShop(sc.ShopID, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "failed to load sync runs")
	}

	return c.JSON(fiber.Map{"runs": runs})
}
