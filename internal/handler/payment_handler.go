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

// PaymentHandler manages payment decision and history endpoints.
type PaymentHandler struct {
	payments service.PaymentService
	logger   zerolog.Logger
}

// NewPaymentHandler builds a payment handler instance.
func NewPaymentHandler(payments service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		logger:   logger.With().Str("component", "payment_handler").Logger(),
	}
}

// Register attaches the non-admin routes to the provided router group.
func (h *PaymentHandler) Register(router fiber.Router) {
	router.Get("/user-history", h.userHistory)
}

// RegisterAdmin attaches the admin decision route.
func (h *PaymentHandler) RegisterAdmin(router fiber.Router) {
	router.Put("/:id", h.decide)
}

func (h *PaymentHandler) decide(c *fiber.Ctx) error {
	paymentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payment id")
	}

	var payload dto.PaymentDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.payments.Decide(c.UserContext(), paymentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	observability.WorkflowEvents().WithLabelValues("payment_decision").Inc()

	return utils.SendSuccess(c, result.Message, result)
}

func (h *PaymentHandler) userHistory(c *fiber.Ctx) error {
	history, err := h.payments.ListUserHistory(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "payment history retrieved", history)
}

func (h *PaymentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrPaymentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "payment transaction not found")
	case errors.Is(err, service.ErrInvalidDecision):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
