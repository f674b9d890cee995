package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/semenggoh/parkguide-api/internal/dto"
	"github.com/semenggoh/parkguide-api/internal/service"
	"github.com/semenggoh/parkguide-api/internal/utils"
)

// QuizHandler serves quiz assembly and submission for training modules.
type QuizHandler struct {
	quizzes service.QuizEngine
	logger  zerolog.Logger
}

// NewQuizHandler builds a quiz handler instance.
func NewQuizHandler(quizzes service.QuizEngine, logger zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizzes: quizzes,
		logger:  logger.With().Str("component", "quiz_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *QuizHandler) Register(router fiber.Router) {
	router.Get("/:id/quiz", h.assemble)
	router.Post("/:id/quiz", h.submit)
}

func (h *QuizHandler) assemble(c *fiber.Ctx) error {
	moduleID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid module id")
	}

	quiz, err := h.quizzes.Assemble(c.UserContext(), userIDFromContext(c), moduleID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "quiz retrieved", quiz)
}

func (h *QuizHandler) submit(c *fiber.Ctx) error {
	moduleID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid module id")
	}

	var payload dto.QuizSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.quizzes.Submit(c.UserContext(), userIDFromContext(c), moduleID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, result.Message, result)
}

func (h *QuizHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrModuleNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "module not found")
	case errors.Is(err, service.ErrQuizNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "quiz not found for module")
	case errors.Is(err, service.ErrAttemptNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "attempt not found")
	case errors.Is(err, service.ErrAttemptMismatch):
		return utils.SendError(c, fiber.StatusForbidden, "attempt does not belong to this quiz")
	case errors.Is(err, service.ErrAttemptFinalized):
		return utils.SendError(c, fiber.StatusConflict, "attempt has already been scored")
	case errors.Is(err, service.ErrAccessDenied):
		return utils.SendErrorWithReason(c, fiber.StatusForbidden, "module access required", service.AccessReasonNotPurchased)
	case errors.Is(err, service.ErrInvalidAnswers):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
