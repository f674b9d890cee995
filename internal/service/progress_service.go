package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/dto"
	"github.com/semenggoh/parkguide-api/internal/models"
	"github.com/semenggoh/parkguide-api/internal/repository"
)

// ProgressTracker advances a purchase's completion percentage. Percentages
// only move forward; the sole exception is the pass path, which force-sets
// 100 and completes the guide's training-progress row.
type ProgressTracker interface {
	Update(ctx context.Context, userID uint, payload dto.ProgressUpdateRequest) (dto.ProgressUpdateResponse, error)
	// CompleteForPass runs inside the caller's transaction handle.
	CompleteForPass(ctx context.Context, tx repository.Store, userID uint, guideID *uint, moduleID uint, completedAt time.Time) error
}

type progressService struct {
	store     repository.Store
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProgressService constructs a ProgressTracker instance.
func NewProgressService(store repository.Store, validate *validator.Validate, logger zerolog.Logger) ProgressTracker {
	return &progressService{
		store:     store,
		validator: validate,
		logger:    logger.With().Str("component", "progress_service").Logger(),
	}
}

func (s *progressService) Update(ctx context.Context, userID uint, payload dto.ProgressUpdateRequest) (dto.ProgressUpdateResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProgressUpdateResponse{}, err
	}

	purchase, err := s.store.Purchases().ActiveForUserModule(ctx, userID, payload.ModuleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressUpdateResponse{}, ErrNoActivePurchase
		}
		return dto.ProgressUpdateResponse{}, err
	}

	if purchase.Status != models.PurchaseStatusActive {
		return dto.ProgressUpdateResponse{}, ErrNoActivePurchase
	}

	if payload.Progress <= purchase.CompletionPercentage {
		return dto.ProgressUpdateResponse{
			Message:  "Progress not updated as new progress is not higher than current progress",
			ModuleID: payload.ModuleID,
			Progress: purchase.CompletionPercentage,
			Updated:  false,
		}, nil
	}

	if err := s.store.Purchases().UpdateCompletion(ctx, purchase.ID, payload.Progress); err != nil {
		return dto.ProgressUpdateResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("module_id", payload.ModuleID).
		Int("progress", payload.Progress).
		Msg("module progress updated")

	return dto.ProgressUpdateResponse{
		Message:  "Module progress updated successfully",
		ModuleID: payload.ModuleID,
		Progress: payload.Progress,
		Updated:  true,
	}, nil
}

func (s *progressService) CompleteForPass(ctx context.Context, tx repository.Store, userID uint, guideID *uint, moduleID uint, completedAt time.Time) error {
	if guideID != nil {
		progress := models.GuideTrainingProgress{
			GuideID:        *guideID,
			ModuleID:       moduleID,
			Status:         models.TrainingCompleted,
			CompletionDate: &completedAt,
		}
		if err := tx.Progress().MarkCompleted(ctx, &progress); err != nil {
			return err
		}
	}

	purchase, err := tx.Purchases().ActiveForUserModule(ctx, userID, moduleID)
	if err != nil {
		// Free modules can be passed without a purchase row; nothing to
		// force-complete in that case.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	return tx.Purchases().UpdateCompletion(ctx, purchase.ID, 100)
}
