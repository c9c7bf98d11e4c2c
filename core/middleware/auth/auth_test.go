package auth_test

import (
	"net/http/httptest"
	"testing"

	"equipment-inventory/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(key string) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(auth.Config{ApiKey: key}))
	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/api/equipos", ok)
	app.Get("/health", ok)
	return app
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		path   string
		header string
		want   int
	}{
		{"Disabled", "", "/api/equipos", "", 200},
		{"Missing", "secret", "/api/equipos", "", 401},
		{"Wrong", "secret", "/api/equipos", "nope", 401},
		{"Valid", "secret", "/api/equipos", "secret", 200},
		{"PublicHealth", "secret", "/health", "", 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(tt.key)
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set(auth.HeaderName, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
