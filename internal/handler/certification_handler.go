package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/semenggoh/parkguide-api/internal/service"
	"github.com/semenggoh/parkguide-api/internal/utils"
)

// CertificationHandler serves the caller's earned certifications.
type CertificationHandler struct {
	issuer service.CertificationIssuer
	logger zerolog.Logger
}

// NewCertificationHandler builds a certification handler instance.
func NewCertificationHandler(issuer service.CertificationIssuer, logger zerolog.Logger) *CertificationHandler {
	return &CertificationHandler{
		issuer: issuer,
		logger: logger.With().Str("component", "certification_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *CertificationHandler) Register(router fiber.Router) {
	router.Get("/user", h.listUserCertifications)
}

func (h *CertificationHandler) listUserCertifications(c *fiber.Ctx) error {
	certifications, err := h.issuer.ListForUser(c.UserContext(), userIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrGuideNotFound) {
			return utils.SendSuccess(c, "certifications retrieved", []struct{}{})
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "certifications retrieved", certifications)
}
