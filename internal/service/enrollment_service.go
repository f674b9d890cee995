package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/dto"
	"github.com/semenggoh/parkguide-api/internal/models"
	"github.com/semenggoh/parkguide-api/internal/repository"
)

// EnrollmentService creates the payment+purchase record pair that grants
// module access: immediately for free modules, pending admin approval for
// paid ones.
type EnrollmentService interface {
	EnrollFree(ctx context.Context, userID, moduleID uint) (dto.FreeEnrollmentResponse, error)
	InitiatePaid(ctx context.Context, userID, moduleID uint, payload dto.PaidEnrollmentRequest, receipt *multipart.FileHeader) (dto.PaidEnrollmentResponse, error)
	ListUserModules(ctx context.Context, userID uint) ([]dto.PurchasedModuleResponse, error)
}

type enrollmentService struct {
	store           repository.Store
	receipts        ReceiptStore
	validator       *validator.Validate
	receiptMaxBytes int64
	logger          zerolog.Logger
	now             func() time.Time
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(store repository.Store, receipts ReceiptStore, validate *validator.Validate, receiptMaxBytes int64, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		store:           store,
		receipts:        receipts,
		validator:       validate,
		receiptMaxBytes: receiptMaxBytes,
		logger:          logger.With().Str("component", "enrollment_service").Logger(),
		now:             time.Now,
	}
}

func (s *enrollmentService) EnrollFree(ctx context.Context, userID, moduleID uint) (dto.FreeEnrollmentResponse, error) {
	module, err := s.store.Modules().GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FreeEnrollmentResponse{}, ErrModuleNotFound
		}
		return dto.FreeEnrollmentResponse{}, err
	}

	if !module.IsFree() {
		return dto.FreeEnrollmentResponse{}, ErrModuleNotFree
	}

	if _, err := s.store.Purchases().ActiveForUserModule(ctx, userID, moduleID); err == nil {
		return dto.FreeEnrollmentResponse{
			Message:  "You are already enrolled in this module",
			ModuleID: moduleID,
			Status:   models.PurchaseStatusActive,
		}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.FreeEnrollmentResponse{}, err
	}

	now := s.now()
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		payment := models.PaymentTransaction{
			UserID:          userID,
			Purpose:         fmt.Sprintf("Free Module: %s", module.Name),
			Method:          "debit",
			Amount:          0,
			Status:          models.PaymentStatusApproved,
			ModuleID:        &moduleID,
			TransactionDate: now,
		}
		if err := tx.Payments().Create(ctx, &payment); err != nil {
			return err
		}

		purchase := models.ModulePurchase{
			UserID:       userID,
			ModuleID:     moduleID,
			PaymentID:    payment.ID,
			Status:       models.PurchaseStatusActive,
			IsActive:     true,
			PurchaseDate: now,
		}
		if err := tx.Purchases().Create(ctx, &purchase); err != nil {
			return err
		}

		s.seedProgress(ctx, tx, userID, moduleID)

		return nil
	})
	if err != nil {
		// A concurrent enrollment won the partial unique index race; the
		// caller is enrolled either way.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.FreeEnrollmentResponse{
				Message:  "You are already enrolled in this module",
				ModuleID: moduleID,
				Status:   models.PurchaseStatusActive,
			}, nil
		}
		return dto.FreeEnrollmentResponse{}, err
	}

	s.logger.Info().Uint("user_id", userID).Uint("module_id", moduleID).Msg("free enrollment created")

	return dto.FreeEnrollmentResponse{
		Message:  "Successfully enrolled in free module",
		ModuleID: moduleID,
		Status:   models.PurchaseStatusActive,
	}, nil
}

func (s *enrollmentService) InitiatePaid(ctx context.Context, userID, moduleID uint, payload dto.PaidEnrollmentRequest, receipt *multipart.FileHeader) (dto.PaidEnrollmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PaidEnrollmentResponse{}, err
	}

	module, err := s.store.Modules().GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaidEnrollmentResponse{}, ErrModuleNotFound
		}
		return dto.PaidEnrollmentResponse{}, err
	}

	var stalePurchaseID *uint
	if existing, err := s.store.Purchases().ActiveForUserModule(ctx, userID, moduleID); err == nil {
		if existing.Status == models.PurchaseStatusActive {
			return dto.PaidEnrollmentResponse{
				Message:    "You are already enrolled in this module",
				ModuleID:   moduleID,
				PaymentID:  existing.PaymentID,
				PurchaseID: existing.ID,
				Status:     existing.Status,
			}, nil
		}
		if existing.Payment.Status == models.PaymentStatusPending {
			return dto.PaidEnrollmentResponse{
				Message:    "A payment for this module is already awaiting approval",
				ModuleID:   moduleID,
				PaymentID:  existing.PaymentID,
				PurchaseID: existing.ID,
				Status:     existing.Status,
			}, nil
		}
		// The prior payment was rejected. The old row must leave the
		// partial unique index before the replacement purchase is created.
		staleID := existing.ID
		stalePurchaseID = &staleID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.PaidEnrollmentResponse{}, err
	} else if healed, ok, err := s.reconcileOrphanPayment(ctx, userID, moduleID); err != nil {
		return dto.PaidEnrollmentResponse{}, err
	} else if ok {
		return healed, nil
	}

	if err := validateReceipt(receipt, s.receiptMaxBytes); err != nil {
		return dto.PaidEnrollmentResponse{}, err
	}

	reader, err := receipt.Open()
	if err != nil {
		return dto.PaidEnrollmentResponse{}, fmt.Errorf("failed to open receipt: %w", err)
	}
	defer reader.Close()

	receiptURL, err := s.receipts.Upload(ctx, fmt.Sprintf("receipt-%s-%s", uuid.NewString(), receipt.Filename), reader)
	if err != nil {
		return dto.PaidEnrollmentResponse{}, fmt.Errorf("failed to store receipt: %w", err)
	}

	now := s.now()
	var payment models.PaymentTransaction
	var purchase models.ModulePurchase

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if stalePurchaseID != nil {
			if err := tx.Purchases().Deactivate(ctx, *stalePurchaseID); err != nil {
				return err
			}
		}

		payment = models.PaymentTransaction{
			UserID:          userID,
			Purpose:         fmt.Sprintf("Module Purchase: %s", module.Name),
			Method:          payload.Method,
			Amount:          payload.Amount,
			Status:          models.PaymentStatusPending,
			ModuleID:        &moduleID,
			ReceiptURL:      receiptURL,
			TransactionDate: now,
		}
		if err := tx.Payments().Create(ctx, &payment); err != nil {
			return err
		}

		purchase = models.ModulePurchase{
			UserID:       userID,
			ModuleID:     moduleID,
			PaymentID:    payment.ID,
			Status:       models.PurchaseStatusPending,
			IsActive:     true,
			PurchaseDate: now,
		}

		return tx.Purchases().Create(ctx, &purchase)
	})
	if err != nil {
		return dto.PaidEnrollmentResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("module_id", moduleID).
		Uint("payment_id", payment.ID).
		Msg("paid enrollment initiated")

	return dto.PaidEnrollmentResponse{
		Message:    "Payment submitted and awaiting approval",
		ModuleID:   moduleID,
		PaymentID:  payment.ID,
		PurchaseID: purchase.ID,
		Status:     models.PurchaseStatusPending,
	}, nil
}

func (s *enrollmentService) ListUserModules(ctx context.Context, userID uint) ([]dto.PurchasedModuleResponse, error) {
	purchases, err := s.store.Modules().ListPurchasedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return dto.NewPurchasedModuleResponseSlice(purchases), nil
}

// reconcileOrphanPayment repairs a pending payment that was recorded for
// (user, module) without its purchase row. It creates the missing pending
// purchase and reports the existing payment instead of opening a second one.
func (s *enrollmentService) reconcileOrphanPayment(ctx context.Context, userID, moduleID uint) (dto.PaidEnrollmentResponse, bool, error) {
	orphan, err := s.store.Payments().PendingForUserModule(ctx, userID, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaidEnrollmentResponse{}, false, nil
		}
		return dto.PaidEnrollmentResponse{}, false, err
	}

	purchase := models.ModulePurchase{
		UserID:       userID,
		ModuleID:     moduleID,
		PaymentID:    orphan.ID,
		Status:       models.PurchaseStatusPending,
		IsActive:     true,
		PurchaseDate: orphan.TransactionDate,
	}
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.Purchases().Create(ctx, &purchase)
	})
	if err != nil {
		return dto.PaidEnrollmentResponse{}, false, err
	}

	s.logger.Warn().
		Uint("user_id", userID).
		Uint("module_id", moduleID).
		Uint("payment_id", orphan.ID).
		Msg("created purchase row for orphaned pending payment")

	return dto.PaidEnrollmentResponse{
		Message:    "A payment for this module is already awaiting approval",
		ModuleID:   moduleID,
		PaymentID:  orphan.ID,
		PurchaseID: purchase.ID,
		Status:     models.PurchaseStatusPending,
	}, true, nil
}

// seedProgress creates the in-progress marker for users that have a guide
// record. It is best-effort: a failure is logged and never aborts the
// enclosing enrollment transaction.
func (s *enrollmentService) seedProgress(ctx context.Context, tx repository.Store, userID, moduleID uint) {
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
		s.logger.Warn().Err(err).Uint("guide_id", guide.ID).Uint("module_id", moduleID).Msg("failed to seed training progress")
	}
}
