package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/claims-api/internal/service"
	"github.com/noah-isme/claims-api/internal/utils"
)

// DocumentHandler wires supporting document HTTP routes.
type DocumentHandler struct {
	service service.DocumentService
	logger  zerolog.Logger
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service service.DocumentService, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger.With().Str("component", "document_handler").Logger(),
	}
}

// RegisterClaimRoutes attaches the upload endpoint under a claim.
func (h *DocumentHandler) RegisterClaimRoutes(router fiber.Router) {
	router.Post("/:id/documents", h.upload)
}

// Register attaches the standalone document endpoints.
func (h *DocumentHandler) Register(router fiber.Router) {
	router.Get("/:id", h.download)
	router.Delete("/:id", h.remove)
}

func (h *DocumentHandler) upload(c *fiber.Ctx) error {
	claimID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	document, err := h.service.Attach(c.Context(), actorFromContext(c), claimID, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "document uploaded", document)
}

func (h *DocumentHandler) download(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	content, err := h.service.Fetch(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, content.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", content.FileName))
	return c.Send(content.Data)
}

func (h *DocumentHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Remove(c.Context(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "document deleted", fiber.Map{"id": id})
}

func (h *DocumentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound), errors.Is(err, service.ErrClaimNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotClaimOwner), errors.Is(err, service.ErrRoleNotAllowed):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrClaimLocked):
		return utils.SendError(c, fiber.StatusConflict, "claim is no longer pending")
	case errors.Is(err, service.ErrDocumentTooLarge), errors.Is(err, service.ErrDocumentTypeNotAllowed):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
