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

// ReferenceHandler serves admin curation for one reference directory. One
// instance is registered for campuses and another for groups.
type ReferenceHandler struct {
	kind    string
	service service.ReferenceService
	logger  zerolog.Logger
}

// NewReferenceHandler builds a curation handler for one reference kind.
func NewReferenceHandler(kind string, service service.ReferenceService, logger zerolog.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		kind:    kind,
		service: service,
		logger:  logger.With().Str("component", kind+"_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ReferenceHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Put("/:id", h.rename)
	router.Delete("/:id", h.delete)
}

func (h *ReferenceHandler) list(c *fiber.Ctx) error {
	entities, err := h.service.List(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, h.kind+" list retrieved", entities)
}

func (h *ReferenceHandler) create(c *fiber.Ctx) error {
	var payload dto.ReferenceCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entity, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, h.kind+" created", entity)
}

func (h *ReferenceHandler) rename(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ReferenceUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entity, err := h.service.Rename(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, h.kind+" updated", entity)
}

func (h *ReferenceHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, h.kind+" deleted", nil)
}

func (h *ReferenceHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrReferenceNotFound):
		return utils.SendError(c, fiber.StatusNotFound, h.kind+" not found")
	case errors.Is(err, service.ErrReferenceNameTaken):
		return utils.SendError(c, fiber.StatusConflict, "name is already in use")
	case errors.Is(err, service.ErrReferenceInUse):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
