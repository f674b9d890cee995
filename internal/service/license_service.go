package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/dto"
	"github.com/semenggoh/parkguide-api/internal/models"
	"github.com/semenggoh/parkguide-api/internal/repository"
)

// LicenseService handles license applications and the admin review queue.
type LicenseService interface {
	Apply(ctx context.Context, userID uint, payload dto.LicenseApplicationRequest) error
	ListPending(ctx context.Context) ([]dto.PendingGuideResponse, error)
}

type licenseService struct {
	store     repository.Store
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewLicenseService constructs a LicenseService instance.
func NewLicenseService(store repository.Store, validate *validator.Validate, logger zerolog.Logger) LicenseService {
	return &licenseService{
		store:     store,
		validator: validate,
		logger:    logger.With().Str("component", "license_service").Logger(),
	}
}

// Apply records the guide's requested park and re-opens the license review.
// The guide record must belong to the calling user.
func (s *licenseService) Apply(ctx context.Context, userID uint, payload dto.LicenseApplicationRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	guide, err := s.store.Guides().GetByID(ctx, payload.GuideID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGuideNotFound
		}
		return err
	}

	if guide.UserID != userID {
		return ErrAccessDenied
	}

	if err := s.store.Guides().UpdateFields(ctx, guide.ID, map[string]interface{}{
		"requested_park_id":    payload.RequestedParkID,
		"certification_status": models.GuideLicensePending,
	}); err != nil {
		return err
	}

	s.logger.Info().
		Uint("guide_id", guide.ID).
		Uint("requested_park_id", payload.RequestedParkID).
		Msg("license application submitted")

	return nil
}

func (s *licenseService) ListPending(ctx context.Context) ([]dto.PendingGuideResponse, error) {
	guides, err := s.store.Guides().ListPendingLicense(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]dto.PendingGuideResponse, 0, len(guides))
	for _, guide := range guides {
		pending = append(pending, dto.NewPendingGuideResponse(guide))
	}

	return pending, nil
}
