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

// GuideHandler manages license applications and admin license decisions.
type GuideHandler struct {
	payments service.PaymentService
	licenses service.LicenseService
	logger   zerolog.Logger
}

// NewGuideHandler builds a guide handler instance.
func NewGuideHandler(payments service.PaymentService, licenses service.LicenseService, logger zerolog.Logger) *GuideHandler {
	return &GuideHandler{
		payments: payments,
		licenses: licenses,
		logger:   logger.With().Str("component", "guide_handler").Logger(),
	}
}

// Register attaches the guide-facing routes to the provided router group.
func (h *GuideHandler) Register(router fiber.Router) {
	router.Post("/license-approval-request", h.applyForLicense)
}

// RegisterAdmin attaches the admin review routes.
func (h *GuideHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/pending-certifications", h.listPending)
	router.Put("/park-guides/:id", h.decideLicense)
}

func (h *GuideHandler) applyForLicense(c *fiber.Ctx) error {
	var payload dto.LicenseApplicationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.licenses.Apply(c.UserContext(), userIDFromContext(c), payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "license application submitted", nil)
}

func (h *GuideHandler) listPending(c *fiber.Ctx) error {
	pending, err := h.licenses.ListPending(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "pending license applications retrieved", pending)
}

func (h *GuideHandler) decideLicense(c *fiber.Ctx) error {
	guideID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid guide id")
	}

	var payload dto.LicenseDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.payments.DecideLicense(c.UserContext(), guideID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	observability.WorkflowEvents().WithLabelValues("license_decision").Inc()

	return utils.SendSuccess(c, result.Message, result)
}

func (h *GuideHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrGuideNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "park guide not found")
	case errors.Is(err, service.ErrAccessDenied):
		return utils.SendError(c, fiber.StatusForbidden, "guide record does not belong to caller")
	case errors.Is(err, service.ErrInvalidDecision):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
