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

// DonorHandler serves the public donor directory and the donor's own
// availability toggle.
type DonorHandler struct {
	service service.DonorService
	logger  zerolog.Logger
}

// NewDonorHandler builds a donor handler instance.
func NewDonorHandler(service service.DonorService, logger zerolog.Logger) *DonorHandler {
	return &DonorHandler{
		service: service,
		logger:  logger.With().Str("component", "donor_handler").Logger(),
	}
}

// RegisterPublic attaches the unauthenticated directory routes.
func (h *DonorHandler) RegisterPublic(router fiber.Router) {
	router.Get("/donors", h.search)
	router.Get("/donors/:id", h.get)
	router.Get("/filters/options", h.filterOptions)
}

// RegisterProtected attaches routes requiring an authenticated user.
func (h *DonorHandler) RegisterProtected(router fiber.Router) {
	router.Patch("/donors/me/availability", h.setAvailability)
}

func (h *DonorHandler) search(c *fiber.Ctx) error {
	var filter dto.DonorSearchFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.service.Search(c.UserContext(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "donors retrieved", response)
}

func (h *DonorHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	donor, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "donor retrieved", donor)
}

func (h *DonorHandler) filterOptions(c *fiber.Ctx) error {
	options, err := h.service.FilterOptions(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}

	if options.CacheHit {
		c.Set("X-Cache-Hit", "true")
	}
	return utils.SendSuccess(c, "filter options retrieved", options)
}

func (h *DonorHandler) setAvailability(c *fiber.Ctx) error {
	var payload dto.AvailabilityUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	donor, err := h.service.SetAvailability(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "availability updated", donor)
}

func (h *DonorHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrDonorNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "donor not found")
	case errors.Is(err, service.ErrDonorProfileNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "no donor profile linked to this account")
	case errors.Is(err, service.ErrInvalidSearchFilter):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
