package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lumoclass/lumoclass-api/internal/service"
	"github.com/lumoclass/lumoclass-api/internal/utils"
)

// LeaderboardHandler wires the ranked standings endpoints.
type LeaderboardHandler struct {
	service service.LeaderboardService
	logger  zerolog.Logger
}

// NewLeaderboardHandler constructs the handler.
func NewLeaderboardHandler(service service.LeaderboardService, logger zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		logger:  logger.With().Str("component", "leaderboard_handler").Logger(),
	}
}

// Register attaches leaderboard endpoints to the router group.
func (h *LeaderboardHandler) Register(router fiber.Router) {
	router.Get("/students", h.students)
	router.Get("/classes", h.classes)
}

func (h *LeaderboardHandler) students(c *fiber.Ctx) error {
	scope, err := service.ParseScope(c.Query("scope"))
	if err != nil {
		if errors.Is(err, service.ErrUnknownScope) {
			return utils.SendError(c, fiber.StatusBadRequest, "unknown leaderboard scope")
		}
		return utils.SendError(c, fiber.StatusBadRequest, "invalid scope")
	}

	classID, err := parseQueryUint(c, "class_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	response, err := h.service.StudentLeaderboard(c.UserContext(), scope, classID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("scope", string(scope)).Msg("failed to build leaderboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build leaderboard")
	}

	return utils.SendSuccess(c, "leaderboard built", response)
}

func (h *LeaderboardHandler) classes(c *fiber.Ctx) error {
	response, err := h.service.ClassLeaderboard(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build class leaderboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build class leaderboard")
	}

	return utils.SendSuccess(c, "leaderboard built", response)
}
