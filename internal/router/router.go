package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/claims-api/internal/config"
	"github.com/noah-isme/claims-api/internal/handler"
	"github.com/noah-isme/claims-api/internal/middleware"
	"github.com/noah-isme/claims-api/internal/models"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	ClaimHandler     *handler.ClaimHandler
	DocumentHandler  *handler.DocumentHandler
	ReportHandler    *handler.ReportHandler
	AuditHandler     *handler.AuditHandler
	DashboardHandler *handler.DashboardHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	reviewerOnly := middleware.RequireRole(models.RoleCoordinator, models.RoleManager)
	managerOnly := middleware.RequireRole(models.RoleManager)

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	if deps.ClaimHandler != nil {
		claims := api.Group("/claims", jwtMiddleware)
		deps.ClaimHandler.Register(claims, reviewerOnly)

		if deps.DocumentHandler != nil {
			deps.DocumentHandler.RegisterClaimRoutes(claims)
		}
	}

	if deps.DocumentHandler != nil {
		documents := api.Group("/documents", jwtMiddleware)
		deps.DocumentHandler.Register(documents)
	}

	if deps.ReportHandler != nil {
		reports := api.Group("/reports", jwtMiddleware, reviewerOnly)
		deps.ReportHandler.Register(reports)
	}

	if deps.AuditHandler != nil {
		audit := api.Group("/audit-logs", jwtMiddleware, managerOnly)
		deps.AuditHandler.Register(audit)
	}

	if deps.DashboardHandler != nil {
		dashboard := api.Group("/dashboard", jwtMiddleware)
		deps.DashboardHandler.Register(dashboard)
	}
}
