package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/hackjudge/internal/config"
	"github.com/noah-isme/hackjudge/internal/handler"
	"github.com/noah-isme/hackjudge/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	HackathonHandler  *handler.HackathonHandler
	SubmissionHandler *handler.SubmissionHandler
	DashboardHandler  *handler.DashboardHandler
	HealthHandler     fiber.Handler
	JudgeMiddleware   fiber.Handler
	SubmitLimiter     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	passthrough := func(c *fiber.Ctx) error { return c.Next() }

	judgeMiddleware := deps.JudgeMiddleware
	if judgeMiddleware == nil {
		judgeMiddleware = passthrough
	}
	submitLimiter := deps.SubmitLimiter
	if submitLimiter == nil {
		submitLimiter = passthrough
	}

	if deps.HealthHandler != nil {
		app.Get("/health", deps.HealthHandler)
	}
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	}, judgeMiddleware)

	if deps.HackathonHandler != nil {
		deps.HackathonHandler.Register(api.Group("/hackathons"))
	}

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard"))
	}

	if deps.SubmissionHandler != nil {
		app.Post("/submit", submitLimiter, deps.SubmissionHandler.Submit)
	}
}
