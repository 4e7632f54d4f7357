package handler

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackjudge/internal/dto"
	"github.com/noah-isme/hackjudge/internal/service"
	"github.com/noah-isme/hackjudge/internal/utils"
)

// SubmissionHandler accepts project submissions.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Submit handles POST /submit.
func (h *SubmissionHandler) Submit(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "No data provided")
	}

	var payload dto.SubmissionCreateRequest
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "No data provided")
	}

	response, err := h.service.Submit(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusCreated, response)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var missing *service.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		return utils.SendError(c, fiber.StatusBadRequest, missing.Error())
	case errors.Is(err, service.ErrInvalidHackathonIDFormat):
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid Hackathon ID format")
	case errors.Is(err, service.ErrHackathonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Invalid Hackathon ID")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to store submission")
		return utils.SendError(c, fiber.StatusInternalServerError, "An unexpected error occurred")
	}
}
