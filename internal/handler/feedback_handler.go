package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bloodlagbe/bloodlagbe-api/internal/dto"
	"github.com/bloodlagbe/bloodlagbe-api/internal/service"
	"github.com/bloodlagbe/bloodlagbe-api/internal/utils"
)

// FeedbackHandler serves the public feedback intake and the admin inbox.
type FeedbackHandler struct {
	service service.FeedbackService
	logger  zerolog.Logger
}

// NewFeedbackHandler builds a feedback handler instance.
func NewFeedbackHandler(service service.FeedbackService, logger zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  logger.With().Str("component", "feedback_handler").Logger(),
	}
}

// RegisterPublic attaches the intake route. It sits behind optional auth so
// the submitting user is linked when a token is present.
func (h *FeedbackHandler) RegisterPublic(router fiber.Router) {
	router.Post("/feedback", h.submit)
}

// RegisterAdmin attaches the admin inbox routes.
func (h *FeedbackHandler) RegisterAdmin(router fiber.Router) {
	router.Get("", h.list)
	router.Patch("/:id/status", h.setReadStatus)
}

func (h *FeedbackHandler) submit(c *fiber.Ctx) error {
	var payload dto.FeedbackCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	var userID *uint
	if id := userIDFromContext(c); id != 0 {
		userID = &id
	}

	feedback, err := h.service.Submit(c.UserContext(), userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "feedback received", feedback)
}

func (h *FeedbackHandler) list(c *fiber.Ctx) error {
	feedbacks, err := h.service.ListForAdmin(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "feedback retrieved", feedbacks)
}

func (h *FeedbackHandler) setReadStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.FeedbackStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	feedback, err := h.service.SetReadStatus(c.UserContext(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "feedback updated", feedback)
}

func (h *FeedbackHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrFeedbackNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "feedback not found")
	case errors.Is(err, service.ErrInvalidFeedbackType):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
