package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCORSApp(origins []string, credentials bool) *fiber.App {
	app := fiber.New()
	app.Use(NewCORSMiddleware(
		origins,
		[]string{"GET", "POST", "DELETE"},
		credentials,
		[]string{"X-Run-Id"},
		"600",
	).Middleware())
	app.Post("/api/v1/runs", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusAccepted) })
	return app
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	app := newCORSApp([]string{"https://dashboard.example.com"}, false)

	req := httptest.NewRequest("OPTIONS", "/api/v1/runs", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Authorization")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://dashboard.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, DELETE", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", resp.Header.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", resp.Header.Get("Access-Control-Max-Age"))
}

func TestCORSMiddleware_SimpleRequest(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		credentials bool
		origin      string
		allowOrigin string
		allowCreds  string
	}{
		{"wildcard", []string{"*"}, false, "https://a.example.com", "*", ""},
		{"wildcard with credentials echoes origin", []string{"*"}, true, "https://a.example.com", "https://a.example.com", "true"},
		{"listed origin", []string{"https://a.example.com"}, false, "https://A.example.com", "https://A.example.com", ""},
		{"unlisted origin", []string{"https://a.example.com"}, false, "https://b.example.com", "", ""},
		{"no origin", []string{"*"}, false, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newCORSApp(tt.origins, tt.credentials)
			req := httptest.NewRequest("POST", "/api/v1/runs", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
			assert.Equal(t, tt.allowOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.allowCreds, resp.Header.Get("Access-Control-Allow-Credentials"))
			if tt.allowOrigin != "" {
				assert.Equal(t, "X-Run-Id", resp.Header.Get("Access-Control-Expose-Headers"))
			}
		})
	}
}
