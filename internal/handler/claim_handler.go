package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/service"
	"github.com/noah-isme/claims-api/internal/utils"
)

// ClaimHandler wires claim lifecycle HTTP routes.
type ClaimHandler struct {
	service service.ClaimService
	logger  zerolog.Logger
}

// NewClaimHandler constructs the handler.
func NewClaimHandler(service service.ClaimService, logger zerolog.Logger) *ClaimHandler {
	return &ClaimHandler{
		service: service,
		logger:  logger.With().Str("component", "claim_handler").Logger(),
	}
}

// Register attaches claim endpoints to the router group. The pending queue
// and decision endpoints are additionally guarded by role middleware in the
// router; ownership checks live in the service.
func (h *ClaimHandler) Register(router fiber.Router, reviewerOnly fiber.Handler) {
	router.Get("", h.list)
	router.Post("", h.submit)
	router.Get("/pending", reviewerOnly, h.listPending)
	router.Get("/:id", h.get)
	router.Put("/:id", h.edit)
	router.Delete("/:id", h.delete)
	router.Post("/:id/decision", reviewerOnly, h.decide)
}

func (h *ClaimHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitClaimRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	claim, err := h.service.Submit(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "claim submitted", claim)
}

func (h *ClaimHandler) list(c *fiber.Ctx) error {
	var filter dto.ClaimFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	claims, err := h.service.ListForLecturer(c.Context(), actorFromContext(c), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "claims retrieved", claims)
}

func (h *ClaimHandler) listPending(c *fiber.Ctx) error {
	claims, err := h.service.ListPending(c.Context(), actorFromContext(c), c.Query("sort"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "pending claims retrieved", claims)
}

func (h *ClaimHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	claim, err := h.service.GetByID(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "claim retrieved", claim)
}

func (h *ClaimHandler) edit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitClaimRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	claim, err := h.service.Edit(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "claim updated", claim)
}

func (h *ClaimHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "claim deleted", fiber.Map{"id": id})
}

func (h *ClaimHandler) decide(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DecideClaimRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	claim, err := h.service.Decide(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "decision recorded", claim)
}

func (h *ClaimHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrClaimNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "claim not found")
	case errors.Is(err, service.ErrRoleNotAllowed), errors.Is(err, service.ErrNotClaimOwner):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrClaimLocked):
		return utils.SendError(c, fiber.StatusConflict, "claim is no longer pending")
	case errors.Is(err, service.ErrClaimConflict):
		return utils.SendError(c, fiber.StatusConflict, "claim was already decided")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
