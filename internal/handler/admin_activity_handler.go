package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bloodlagbe/bloodlagbe-api/internal/service"
	"github.com/bloodlagbe/bloodlagbe-api/internal/utils"
)

// AdminActivityHandler exposes the recent admin audit trail.
type AdminActivityHandler struct {
	activity service.ActivityRecorder
	logger   zerolog.Logger
}

// NewAdminActivityHandler builds the activity handler.
func NewAdminActivityHandler(activity service.ActivityRecorder, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		activity: activity,
		logger:   logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AdminActivityHandler) Register(router fiber.Router) {
	router.Get("", h.listRecent)
}

func (h *AdminActivityHandler) listRecent(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entries, err := h.activity.ListRecent(c.UserContext(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "activity retrieved", entries)
}
