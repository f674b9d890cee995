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

const notifyTimeout = 10 * time.Second

// PaymentService applies status decisions to the payment ledger and cascades
// them onto the linked purchase, plus the parallel license approval path for
// guides. Every cascade runs in one transaction; the decision notification is
// fired after commit and never holds the transaction open.
type PaymentService interface {
	Decide(ctx context.Context, paymentID uint, payload dto.PaymentDecisionRequest) (dto.PaymentDecisionResponse, error)
	DecideLicense(ctx context.Context, guideID uint, payload dto.LicenseDecisionRequest) (dto.LicenseDecisionResponse, error)
	ListUserHistory(ctx context.Context, userID uint) ([]dto.PaymentHistoryEntry, error)
}

type paymentService struct {
	store     repository.Store
	notifier  Notifier
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPaymentService constructs a PaymentService instance.
func NewPaymentService(store repository.Store, notifier Notifier, validate *validator.Validate, logger zerolog.Logger) PaymentService {
	return &paymentService{
		store:     store,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "payment_service").Logger(),
		now:       time.Now,
	}
}

// normalizeDecision maps the wire statuses (completed/failed) onto the
// ledger statuses (approved/rejected).
func normalizeDecision(status string) (string, error) {
	switch status {
	case "completed", models.PaymentStatusApproved:
		return models.PaymentStatusApproved, nil
	case "failed", models.PaymentStatusRejected:
		return models.PaymentStatusRejected, nil
	case models.PaymentStatusPending:
		return models.PaymentStatusPending, nil
	default:
		return "", ErrInvalidDecision
	}
}

func (s *paymentService) Decide(ctx context.Context, paymentID uint, payload dto.PaymentDecisionRequest) (dto.PaymentDecisionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PaymentDecisionResponse{}, err
	}

	decision, err := normalizeDecision(payload.PaymentStatus)
	if err != nil {
		return dto.PaymentDecisionResponse{}, err
	}

	var payment models.PaymentTransaction
	var purchaseID *uint

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		payment, err = tx.Payments().GetByID(ctx, paymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		if err := tx.Payments().UpdateStatus(ctx, paymentID, decision); err != nil {
			return err
		}
		payment.Status = decision

		if decision != models.PaymentStatusApproved {
			// Rejection leaves the purchase inactive; the resolver surfaces
			// payment_rejected from the ledger status.
			return nil
		}

		purchase, err := tx.Purchases().GetByPaymentID(ctx, paymentID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			// Reconcile a payment that was recorded without its purchase
			// row (legacy self-heal gap).
			if payment.ModuleID == nil {
				return nil
			}
			purchase = models.ModulePurchase{
				UserID:       payment.UserID,
				ModuleID:     *payment.ModuleID,
				PaymentID:    payment.ID,
				Status:       models.PurchaseStatusActive,
				IsActive:     true,
				PurchaseDate: s.now(),
			}
			if err := tx.Purchases().Create(ctx, &purchase); err != nil {
				return err
			}
			purchaseID = &purchase.ID

			s.seedGuideProgress(ctx, tx, payment.UserID, purchase.ModuleID)
			return nil
		}

		if err := tx.Purchases().UpdateStatus(ctx, purchase.ID, models.PurchaseStatusActive); err != nil {
			return err
		}
		purchaseID = &purchase.ID

		s.seedGuideProgress(ctx, tx, payment.UserID, purchase.ModuleID)
		return nil
	})
	if err != nil {
		return dto.PaymentDecisionResponse{}, err
	}

	if payment.IsTerminal() {
		s.notifyPaymentDecision(payment)
	}

	s.logger.Info().Uint("payment_id", paymentID).Str("decision", decision).Msg("payment decision applied")

	return dto.PaymentDecisionResponse{
		Message:       "Payment transaction updated successfully",
		PaymentID:     paymentID,
		PaymentStatus: decision,
		PurchaseID:    purchaseID,
	}, nil
}

func (s *paymentService) DecideLicense(ctx context.Context, guideID uint, payload dto.LicenseDecisionRequest) (dto.LicenseDecisionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LicenseDecisionResponse{}, err
	}

	decision := payload.CertificationStatus

	var guide models.ParkGuide
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		guide, err = tx.Guides().GetByID(ctx, guideID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuideNotFound
			}
			return err
		}

		if decision == models.GuideLicenseApproved {
			expiry := s.now().AddDate(1, 0, 0)
			guide.CertificationStatus = models.GuideLicenseApproved
			guide.LicenseExpiryDate = &expiry
			guide.AssignedParkID = guide.RequestedParkID
			guide.RequestedParkID = nil
			return tx.Guides().Update(ctx, &guide)
		}

		guide.CertificationStatus = models.GuideLicenseRejected
		guide.RequestedParkID = nil
		if err := tx.Guides().Update(ctx, &guide); err != nil {
			return err
		}

		return tx.Users().UpdateStatus(ctx, guide.UserID, models.UserStatusRejected)
	})
	if err != nil {
		return dto.LicenseDecisionResponse{}, err
	}

	s.notifyLicenseDecision(guide, decision)

	s.logger.Info().Uint("guide_id", guideID).Str("decision", decision).Msg("license decision applied")

	return dto.LicenseDecisionResponse{
		Message:             "Guide certification status updated successfully",
		GuideID:             guideID,
		CertificationStatus: guide.CertificationStatus,
		LicenseExpiryDate:   guide.LicenseExpiryDate,
		AssignedParkID:      guide.AssignedParkID,
	}, nil
}

func (s *paymentService) ListUserHistory(ctx context.Context, userID uint) ([]dto.PaymentHistoryEntry, error) {
	payments, err := s.store.Payments().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return dto.NewPaymentHistoryEntrySlice(payments), nil
}

func (s *paymentService) notifyPaymentDecision(payment models.PaymentTransaction) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		user, err := s.store.Users().GetByID(ctx, payment.UserID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("user_id", payment.UserID).Msg("notification skipped, user lookup failed")
			return
		}

		s.notifier.PaymentDecision(ctx, user, payment, payment.Status)
	}()
}

func (s *paymentService) notifyLicenseDecision(guide models.ParkGuide, decision string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		user, err := s.store.Users().GetByID(ctx, guide.UserID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("user_id", guide.UserID).Msg("notification skipped, user lookup failed")
			return
		}

		s.notifier.LicenseDecision(ctx, user, decision)
	}()
}

// seedGuideProgress mirrors the free-enrollment progress seed on payment
// approval. Best-effort only.
func (s *paymentService) seedGuideProgress(ctx context.Context, tx repository.Store, userID, moduleID uint) {
	guide, err := tx.Guides().GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Uint("user_id", userID).Msg("guide lookup failed while seeding progress")
		}
		return
	}

	progress := models.GuideTrainingProgress{
		GuideID:  guide.ID,
		ModuleID: moduleID,
		Status:   models.TrainingInProgress,
	}
	if err := tx.Progress().Seed(ctx, &progress); err != nil {
		s.logger.Warn().Err(err).Uint("guide_id", guide.ID).Msg("failed to seed training progress")
	}
}
