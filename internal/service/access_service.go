package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/dto"
	"github.com/semenggoh/parkguide-api/internal/models"
	"github.com/semenggoh/parkguide-api/internal/repository"
)

// Access reasons surfaced to clients. Statuses outside the known purchase
// states are passed through as "access_<status>".
const (
	AccessReasonFree           = "free_module"
	AccessReasonCompleted      = "completed"
	AccessReasonNotPurchased   = "not_purchased"
	AccessReasonPaymentPending = "payment_pending"
	AccessReasonRejected       = "payment_rejected"
	AccessReasonPurchased      = "purchased"
	accessReasonPrefix         = "access_"
)

// AccessResolver determines the current access state for a (user, module)
// pair. Resolution is read-only, reflects the latest committed state, and is
// safe to call concurrently and repeatedly.
type AccessResolver interface {
	Resolve(ctx context.Context, userID, moduleID uint) (dto.AccessResponse, error)
	PurchaseStatus(ctx context.Context, userID, moduleID uint) (dto.PurchaseStatusResponse, error)
}

type accessResolver struct {
	store  repository.Store
	logger zerolog.Logger
}

// NewAccessResolver constructs an AccessResolver instance.
func NewAccessResolver(store repository.Store, logger zerolog.Logger) AccessResolver {
	return &accessResolver{
		store:  store,
		logger: logger.With().Str("component", "access_resolver").Logger(),
	}
}

func (s *accessResolver) Resolve(ctx context.Context, userID, moduleID uint) (dto.AccessResponse, error) {
	module, err := s.store.Modules().GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccessResponse{}, ErrModuleNotFound
		}
		return dto.AccessResponse{}, err
	}

	// Free modules bypass the purchase lookup entirely.
	if module.IsFree() {
		return dto.AccessResponse{HasAccess: true, Reason: AccessReasonFree}, nil
	}

	purchase, err := s.store.Purchases().ActiveForUserModule(ctx, userID, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AccessResponse{HasAccess: false, Reason: AccessReasonNotPurchased}, nil
		}
		return dto.AccessResponse{}, err
	}

	// A completed module stays accessible regardless of payment state.
	if completed, err := s.trainingCompleted(ctx, userID, moduleID); err != nil {
		return dto.AccessResponse{}, err
	} else if completed {
		return dto.AccessResponse{HasAccess: true, Reason: AccessReasonCompleted}, nil
	}

	switch purchase.Payment.Status {
	case models.PaymentStatusPending:
		return dto.AccessResponse{HasAccess: false, Reason: AccessReasonPaymentPending, Status: purchase.Payment.Status}, nil
	case models.PaymentStatusRejected:
		return dto.AccessResponse{HasAccess: false, Reason: AccessReasonRejected, Status: purchase.Payment.Status}, nil
	}

	if purchase.Status != models.PurchaseStatusActive {
		return dto.AccessResponse{HasAccess: false, Reason: accessReasonPrefix + purchase.Status}, nil
	}

	return dto.AccessResponse{HasAccess: true, Reason: AccessReasonPurchased}, nil
}

func (s *accessResolver) PurchaseStatus(ctx context.Context, userID, moduleID uint) (dto.PurchaseStatusResponse, error) {
	module, err := s.store.Modules().GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PurchaseStatusResponse{}, ErrModuleNotFound
		}
		return dto.PurchaseStatusResponse{}, err
	}

	response := dto.PurchaseStatusResponse{Module: dto.NewModuleLite(module)}

	if module.IsFree() {
		response.Status = "free"
		return response, nil
	}

	purchase, err := s.store.Purchases().ActiveForUserModule(ctx, userID, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Status = AccessReasonNotPurchased
			return response, nil
		}
		return dto.PurchaseStatusResponse{}, err
	}

	detail := dto.NewPurchaseDetail(purchase)
	response.Purchase = &detail

	switch {
	case purchase.Payment.Status == models.PaymentStatusPending:
		response.Status = AccessReasonPaymentPending
	case purchase.Payment.Status == models.PaymentStatusRejected:
		response.Status = AccessReasonRejected
	case purchase.Status == models.PurchaseStatusActive:
		response.Status = models.PurchaseStatusActive
	default:
		response.Status = purchase.Status
	}

	return response, nil
}

func (s *accessResolver) trainingCompleted(ctx context.Context, userID, moduleID uint) (bool, error) {
	guide, err := s.store.Guides().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	progress, err := s.store.Progress().GetForGuideModule(ctx, guide.ID, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return progress.Status == models.TrainingCompleted, nil
}
