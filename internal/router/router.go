package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rankpilot/rankpilot-api/internal/config"
	"github.com/rankpilot/rankpilot-api/internal/handler"
	"github.com/rankpilot/rankpilot-api/internal/middleware"
	"github.com/rankpilot/rankpilot-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ToolHandler      *handler.ToolHandler
	ActivityHandler  *handler.ActivityHandler
	AssistantHandler *handler.AssistantHandler
	MigrationHandler *handler.AdminMigrationHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ToolHandler != nil {
		toolGroup := app.Group("/api/v1/tools", jwtMiddleware,
			middleware.RateLimit("tools", cfg.ToolRateLimit, cfg.ToolRateWindow))
		deps.ToolHandler.Register(toolGroup)
	}

	if deps.ActivityHandler != nil {
		activityGroup := app.Group("/api/v1/activities", jwtMiddleware)
		deps.ActivityHandler.Register(activityGroup)
	}

	if deps.AssistantHandler != nil {
		assistantGroup := app.Group("/api/v1/assistant", jwtMiddleware)
		deps.AssistantHandler.Register(assistantGroup)
	}

	if deps.MigrationHandler != nil {
		adminGroup := app.Group("/api/admin/migrations", jwtMiddleware, middleware.RequireRole("admin"))
		deps.MigrationHandler.Register(adminGroup)
	}
}
