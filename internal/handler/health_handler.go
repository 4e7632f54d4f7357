package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/hackjudge/internal/config"
	"github.com/noah-isme/hackjudge/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Service     string    `json:"service"`
	Database    string    `json:"database"`
	Environment string    `json:"environment"`
	Timestamp   time.Time `json:"timestamp"`
}

// HealthCheck returns a handler that reports service and database health.
func HealthCheck(cfg config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "healthy",
			Service:     cfg.AppName,
			Database:    databaseState(c.UserContext(), db),
			Environment: cfg.AppEnv,
			Timestamp:   time.Now().UTC(),
		}

		status := fiber.StatusOK
		if payload.Database != "connected" {
			payload.Status = "degraded"
			status = fiber.StatusServiceUnavailable
		}
		return utils.SendJSON(c, status, payload)
	}
}

func databaseState(ctx context.Context, db *gorm.DB) string {
	if db == nil {
		return "unavailable"
	}
	sqlDB, err := db.DB()
	if err != nil {
		return "unavailable"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return "unreachable"
	}
	return "connected"
}
