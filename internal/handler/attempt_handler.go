package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lumoclass/lumoclass-api/internal/dto"
	"github.com/lumoclass/lumoclass-api/internal/service"
	"github.com/lumoclass/lumoclass-api/internal/utils"
)

// AttemptHandler wires the attempt lifecycle endpoints.
type AttemptHandler struct {
	service service.AttemptService
	logger  zerolog.Logger
}

// NewAttemptHandler constructs the handler.
func NewAttemptHandler(service service.AttemptService, logger zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		service: service,
		logger:  logger.With().Str("component", "attempt_handler").Logger(),
	}
}

// Register attaches attempt endpoints to the router group.
func (h *AttemptHandler) Register(router fiber.Router) {
	router.Post("/", h.upsert)
	router.Get("/:id", h.get)
}

func (h *AttemptHandler) upsert(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.AttemptUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Upsert(c.UserContext(), studentID, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "task not found")
		case errors.Is(err, service.ErrAttemptNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "attempt not found")
		case errors.Is(err, service.ErrAttemptClosed):
			return utils.SendError(c, fiber.StatusConflict, "attempt is closed for edits")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("student_id", studentID).Msg("failed to upsert attempt")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to upsert attempt")
		}
	}

	return utils.SendSuccess(c, "attempt saved", response)
}

func (h *AttemptHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	attempt, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "attempt not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("attempt_id", id).Msg("failed to load attempt")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load attempt")
	}

	return utils.SendSuccess(c, "attempt found", attempt)
}
