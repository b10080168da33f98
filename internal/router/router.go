package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lumoclass/lumoclass-api/internal/config"
	"github.com/lumoclass/lumoclass-api/internal/handler"
	"github.com/lumoclass/lumoclass-api/internal/middleware"
	"github.com/lumoclass/lumoclass-api/internal/models"
	"github.com/lumoclass/lumoclass-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AttemptHandler     *handler.AttemptHandler
	GradingHandler     *handler.GradingHandler
	LeaderboardHandler *handler.LeaderboardHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
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

	if deps.AttemptHandler != nil {
		attempts := api.Group("/attempts", jwtMiddleware,
			middleware.RateLimit("attempts", 60, time.Minute))
		deps.AttemptHandler.Register(attempts)
	}

	if deps.GradingHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware,
			middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
		deps.GradingHandler.Register(submissions)
	}

	if deps.LeaderboardHandler != nil {
		leaderboard := api.Group("/leaderboard", jwtMiddleware)
		deps.LeaderboardHandler.Register(leaderboard)
	}
}
