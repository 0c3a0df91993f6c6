package apiv1

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp() *fiber.App {
	app := fiber.New()
	RegisterHandlers(app.Group("/api/v1"), NewAPIServer())
	return app
}

func TestGetPing(t *testing.T) {
	app := testApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "pong", payload["ping"])
}

func TestAuthedRoutesRequireAPIKey(t *testing.T) {
	app := testApp()

	for _, route := range []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/sync"},
		{"GET", "/api/v1/sync/runs"},
		{"GET", "/api/v1/products/p-1/recommendations"},
		{"POST", "/api/v1/recommendations/5/click"},
	} {
		resp, err := app.Test(httptest.NewRequest(route.method, route.path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, route.path)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "unauthorized", payload["error"], route.path)
	}
}
