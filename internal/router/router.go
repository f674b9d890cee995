package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/semenggoh/parkguide-api/internal/config"
	"github.com/semenggoh/parkguide-api/internal/handler"
	"github.com/semenggoh/parkguide-api/internal/middleware"
	"github.com/semenggoh/parkguide-api/internal/models"
	"github.com/semenggoh/parkguide-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ModuleHandler        *handler.ModuleHandler
	QuizHandler          *handler.QuizHandler
	PaymentHandler       *handler.PaymentHandler
	GuideHandler         *handler.GuideHandler
	CertificationHandler *handler.CertificationHandler
	DashboardHandler     *handler.DashboardHandler
	JWTMiddleware        fiber.Handler
	AccountMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application. The auth
// middlewares guard every non-public route and must be provided.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	if deps.JWTMiddleware == nil || deps.AccountMiddleware == nil {
		panic("router: jwt and account middlewares are required")
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	accountMiddleware := deps.AccountMiddleware

	// Training modules (access, enrollment, progress, quizzes)
	if deps.ModuleHandler != nil {
		modules := app.Group("/api/v1/training-modules", jwtMiddleware, accountMiddleware, middleware.RateLimit("training", 60, time.Minute))
		deps.ModuleHandler.Register(modules)

		if deps.QuizHandler != nil {
			deps.QuizHandler.Register(modules)
		}
	}

	// Payment history for the authenticated user
	if deps.PaymentHandler != nil {
		payments := app.Group("/api/v1/payment-transactions", jwtMiddleware, accountMiddleware)
		deps.PaymentHandler.Register(payments)

		adminPayments := app.Group("/api/v1/admin/payment-transactions", jwtMiddleware, accountMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.PaymentHandler.RegisterAdmin(adminPayments)
	}

	// License lifecycle
	if deps.GuideHandler != nil {
		guides := app.Group("/api/v1/park-guides", jwtMiddleware, accountMiddleware)
		deps.GuideHandler.Register(guides)

		admin := app.Group("/api/v1/admin", jwtMiddleware, accountMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.GuideHandler.RegisterAdmin(admin)
	}

	// Earned certifications
	if deps.CertificationHandler != nil {
		certifications := app.Group("/api/v1/certifications", jwtMiddleware, accountMiddleware)
		deps.CertificationHandler.Register(certifications)
	}

	// Guide dashboard
	if deps.DashboardHandler != nil {
		dashboard := app.Group("/api/v1/dashboard", jwtMiddleware, accountMiddleware)
		deps.DashboardHandler.Register(dashboard)
	}
}
