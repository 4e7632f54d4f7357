package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackjudge/internal/service"
	"github.com/noah-isme/hackjudge/internal/utils"
)

// DashboardHandler serves the judge dashboard rows.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register wires GET /:hackathonId under /api/dashboard.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/:hackathonId", h.list)
}

func (h *DashboardHandler) list(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "hackathonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusNotFound, "Not Found")
	}

	rows, err := h.service.ListSubmissions(c.UserContext(), id)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("hackathon_id", id).Msg("failed to load dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to load dashboard")
	}
	return utils.SendJSON(c, fiber.StatusOK, rows)
}
