package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Register attaches the shared middleware chain. Order matters: panics are
// recovered first, and the correlation id must exist before metrics and
// request logs reference it.
func Register(app *fiber.App, log zerolog.Logger) {
	app.Use(recover.New())
	app.Use(CorrelationID())
	app.Use(Observability(log))
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
}
