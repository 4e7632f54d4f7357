package handler

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackjudge/internal/dto"
	"github.com/noah-isme/hackjudge/internal/middleware"
	"github.com/noah-isme/hackjudge/internal/service"
	"github.com/noah-isme/hackjudge/internal/utils"
)

// HackathonHandler exposes the hackathon registry.
type HackathonHandler struct {
	service service.HackathonService
	logger  zerolog.Logger
	verify  fiber.Handler
}

// NewHackathonHandler constructs the handler. verifyLimiter may be nil.
func NewHackathonHandler(service service.HackathonService, verifyLimiter fiber.Handler, logger zerolog.Logger) *HackathonHandler {
	if verifyLimiter == nil {
		verifyLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &HackathonHandler{
		service: service,
		logger:  logger.With().Str("component", "hackathon_handler").Logger(),
		verify:  verifyLimiter,
	}
}

// Register wires hackathon routes under /api/hackathons.
func (h *HackathonHandler) Register(router fiber.Router) {
	router.Post("/create", h.create)
	router.Get("", middleware.WithJudgeScope(h.list, middleware.JudgeScopeOptions{}))
	router.Post("/verify", h.verify, h.verifyID)
	router.Get("/:id/criteria", h.getCriteria)
	router.Post("/:id/criteria", h.updateCriteria)
}

func (h *HackathonHandler) create(c *fiber.Ctx) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Missing name or judge_id")
	}
	if _, ok := raw["name"]; !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "Missing name or judge_id")
	}
	if _, ok := raw["judge_id"]; !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "Missing name or judge_id")
	}

	var payload dto.HackathonCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Missing name or judge_id")
	}
	if identity := judgeIDFromContext(c); identity != "" && identity != strings.TrimSpace(payload.JudgeID) {
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}

	created, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusCreated, dto.HackathonCreateResponse{
		Message:   "Hackathon created!",
		Hackathon: created,
	})
}

func (h *HackathonHandler) list(c *fiber.Ctx) error {
	items, err := h.service.ListByJudge(c.UserContext(), c.Query("judge_id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendJSON(c, fiber.StatusOK, items)
}

func (h *HackathonHandler) verifyID(c *fiber.Ctx) error {
	var payload dto.VerifyRequest
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return utils.SendJSON(c, fiber.StatusBadRequest, dto.VerifyResponse{Valid: false, Message: "Invalid Hackathon ID format"})
	}

	hackathon, err := h.service.Verify(c.UserContext(), payload.HackathonID)
	switch {
	case err == nil:
		return utils.SendJSON(c, fiber.StatusOK, dto.VerifyResponse{Valid: true, HackathonName: hackathon.Name})
	case errors.Is(err, service.ErrInvalidHackathonIDFormat):
		return utils.SendJSON(c, fiber.StatusBadRequest, dto.VerifyResponse{Valid: false, Message: "Invalid Hackathon ID format"})
	case errors.Is(err, service.ErrHackathonNotFound):
		return utils.SendJSON(c, fiber.StatusNotFound, dto.VerifyResponse{Valid: false, Message: "Invalid Hackathon ID"})
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to verify hackathon")
		return utils.SendJSON(c, fiber.StatusInternalServerError, dto.VerifyResponse{Valid: false, Message: "Verification failed."})
	}
}

func (h *HackathonHandler) getCriteria(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid Hackathon ID format")
	}

	criteria, err := h.service.GetCriteria(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendJSON(c, fiber.StatusOK, dto.CriteriaResponse{CurrentCriteria: criteria})
}

func (h *HackathonHandler) updateCriteria(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid Hackathon ID format")
	}

	var payload dto.CriteriaUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.UpdateCriteria(c.UserContext(), id, judgeIDFromContext(c), payload); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendJSON(c, fiber.StatusOK, fiber.Map{"message": "Criteria updated successfully!"})
}

func (h *HackathonHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrHackathonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Invalid Hackathon ID")
	case errors.Is(err, service.ErrInvalidHackathonIDFormat):
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid Hackathon ID format")
	case errors.Is(err, service.ErrJudgeIDRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "Judge ID is required")
	case errors.Is(err, service.ErrHackathonNameRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "Missing name or judge_id")
	case errors.Is(err, service.ErrHackathonForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("hackathon request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "An unexpected error occurred")
	}
}
