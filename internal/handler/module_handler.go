package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/semenggoh/parkguide-api/internal/dto"
	"github.com/semenggoh/parkguide-api/internal/observability"
	"github.com/semenggoh/parkguide-api/internal/service"
	"github.com/semenggoh/parkguide-api/internal/utils"
)

// ModuleHandler manages training module access, enrollment, and progress
// endpoints.
type ModuleHandler struct {
	access     service.AccessResolver
	enrollment service.EnrollmentService
	progress   service.ProgressTracker
	logger     zerolog.Logger
}

// NewModuleHandler builds a module handler instance.
func NewModuleHandler(access service.AccessResolver, enrollment service.EnrollmentService, progress service.ProgressTracker, logger zerolog.Logger) *ModuleHandler {
	return &ModuleHandler{
		access:     access,
		enrollment: enrollment,
		progress:   progress,
		logger:     logger.With().Str("component", "module_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ModuleHandler) Register(router fiber.Router) {
	router.Get("/user", h.listUserModules)
	router.Post("/progress", h.updateProgress)
	router.Get("/:id/access", h.resolveAccess)
	router.Post("/:id/enroll", h.enrollFree)
	router.Post("/:id/purchase", h.purchase)
	router.Get("/:id/purchase-status", h.purchaseStatus)
}

func (h *ModuleHandler) resolveAccess(c *fiber.Ctx) error {
	moduleID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid module id")
	}

	state, err := h.access.Resolve(c.UserContext(), userIDFromContext(c), moduleID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "access resolved", state)
}

func (h *ModuleHandler) enrollFree(c *fiber.Ctx) error {
	moduleID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid module id")
	}

	result, err := h.enrollment.EnrollFree(c.UserContext(), userIDFromContext(c), moduleID)
	if err != nil {
		return h.handleError(c, err)
	}

	observability.WorkflowEvents().WithLabelValues("enrollment_free").Inc()

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, result.Message, result)
}

func (h *ModuleHandler) purchase(c *fiber.Ctx) error {
	moduleID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid module id")
	}

	var payload dto.PaidEnrollmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	receipt, err := c.FormFile("receipt")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "receipt file is required")
	}

	result, err := h.enrollment.InitiatePaid(c.UserContext(), userIDFromContext(c), moduleID, payload, receipt)
	if err != nil {
		return h.handleError(c, err)
	}

	observability.WorkflowEvents().WithLabelValues("enrollment_paid").Inc()

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, result.Message, result)
}

func (h *ModuleHandler) purchaseStatus(c *fiber.Ctx) error {
	moduleID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid module id")
	}

	status, err := h.access.PurchaseStatus(c.UserContext(), userIDFromContext(c), moduleID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "purchase status retrieved", status)
}

func (h *ModuleHandler) listUserModules(c *fiber.Ctx) error {
	modules, err := h.enrollment.ListUserModules(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "modules retrieved", modules)
}

func (h *ModuleHandler) updateProgress(c *fiber.Ctx) error {
	var payload dto.ProgressUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.progress.Update(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, result.Message, result)
}

func (h *ModuleHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrModuleNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "module not found")
	case errors.Is(err, service.ErrModuleNotFree):
		return utils.SendError(c, fiber.StatusBadRequest, "module requires purchase")
	case errors.Is(err, service.ErrNoActivePurchase):
		return utils.SendErrorWithReason(c, fiber.StatusForbidden, "no active purchase for module", service.AccessReasonNotPurchased)
	case errors.Is(err, service.ErrInvalidReceipt):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
