package router

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/semenggoh/parkguide-api/internal/config"
)

func TestRegisterRequiresAuthMiddlewares(t *testing.T) {
	require.Panics(t, func() {
		Register(fiber.New(), config.Config{}, Dependencies{})
	})

	noop := func(c *fiber.Ctx) error { return c.Next() }
	require.Panics(t, func() {
		Register(fiber.New(), config.Config{}, Dependencies{JWTMiddleware: noop})
	})

	app := fiber.New()
	require.NotPanics(t, func() {
		Register(app, config.Config{AppName: "parkguide-api"}, Dependencies{JWTMiddleware: noop, AccountMiddleware: noop})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
