package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// parseLimitQuery reads a bounded limit query parameter with a default.
func parseLimitQuery(c *fiber.Ctx, name string, def, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}
