package shopcontext

import "github.com/gofiber/fiber/v2"

const contextKey = "SHOP_CONTEXT"

// ShopContext represents the authenticated shop for a request
type ShopContext struct {
	ShopID          uint   `json:"shop_id"`
	Domain          string `json:"domain"`
	Plan            string `json:"plan"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// Set stores the shop context on the request
func Set(c *fiber.Ctx, ctx ShopContext) {
	c.Locals(contextKey, ctx)
}

// Get retrieves the shop context from a request.
// Returns an unauthenticated context if none is set.
func Get(c *fiber.Ctx) ShopContext {
	if ctx := c.Locals(contextKey); ctx != nil {
		return ctx.(ShopContext)
	}
	return ShopContext{IsAuthenticated: false}
}

// IsAuthenticated checks if the current request carries a valid shop
func IsAuthenticated(c *fiber.Ctx) bool {
	return Get(c).IsAuthenticated
}

// GetShopID returns the current shop's ID, or 0 when unauthenticated
func GetShopID(c *fiber.Ctx) uint {
	return Get(c).ShopID
}
