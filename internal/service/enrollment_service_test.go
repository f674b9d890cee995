package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/semenggoh/parkguide-api/internal/dto"
	"github.com/semenggoh/parkguide-api/internal/models"
)

type receiptStoreStub struct {
	names []string
	fail  error
}

func (s *receiptStoreStub) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	s.names = append(s.names, name)
	return "https://cdn.example.com/receipts/" + name, nil
}

func TestEnrollFreeCreatesLedgerPurchaseAndProgress(t *testing.T) {
	store, db := setupStore(t)
	svc := NewEnrollmentService(store, &receiptStoreStub{}, testValidator(), 5*1024*1024, testLogger())

	user := createUser(t, db, "guide-free-enroll")
	guide := createGuide(t, db, user.ID)
	module := createModule(t, db, "Park Orientation", 0)

	result, err := svc.EnrollFree(context.Background(), user.ID, module.ID)
	require.NoError(t, err)
	require.Equal(t, models.PurchaseStatusActive, result.Status)
	require.Equal(t, module.ID, result.ModuleID)

	var payment models.PaymentTransaction
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&payment).Error)
	require.Equal(t, models.PaymentStatusApproved, payment.Status)
	require.Zero(t, payment.Amount)
	require.Equal(t, "debit", payment.Method)
	require.Equal(t, "Free Module: Park Orientation", payment.Purpose)

	var purchase models.ModulePurchase
	require.NoError(t, db.Where("user_id = ? AND module_id = ?", user.ID, module.ID).First(&purchase).Error)
	require.Equal(t, models.PurchaseStatusActive, purchase.Status)
	require.True(t, purchase.IsActive)
	require.Equal(t, payment.ID, purchase.PaymentID)

	var progress models.GuideTrainingProgress
	require.NoError(t, db.Where("guide_id = ? AND module_id = ?", guide.ID, module.ID).First(&progress).Error)
	require.Equal(t, models.TrainingInProgress, progress.Status)
}

func TestEnrollFreeIsIdempotent(t *testing.T) {
	store, db := setupStore(t)
	svc := NewEnrollmentService(store, &receiptStoreStub{}, testValidator(), 5*1024*1024, testLogger())

	user := createUser(t, db, "guide-repeat")
	module := createModule(t, db, "Park Orientation", 0)

	_, err := svc.EnrollFree(context.Background(), user.ID, module.ID)
	require.NoError(t, err)

	result, err := svc.EnrollFree(context.Background(), user.ID, module.ID)
	require.NoError(t, err)
	require.Equal(t, "You are already enrolled in this module", result.Message)

	var purchases int64
	require.NoError(t, db.Model(&models.ModulePurchase{}).Where("user_id = ?", user.ID).Count(&purchases).Error)
	require.Equal(t, int64(1), purchases)
}

func TestEnrollFreeRejectsPaidModule(t *testing.T) {
	store, db := setupStore(t)
	svc := NewEnrollmentService(store, &receiptStoreStub{}, testValidator(), 5*1024*1024, testLogger())

	user := createUser(t, db, "guide-paid")
	module := createModule(t, db, "Wildlife Handling", 80)

	_, err := svc.EnrollFree(context.Background(), user.ID, module.ID)
	require.ErrorIs(t, err, ErrModuleNotFree)

	var payments int64
	require.NoError(t, db.Model(&models.PaymentTransaction{}).Count(&payments).Error)
	require.Zero(t, payments)
}

func TestInitiatePaidCreatesPendingPair(t *testing.T) {
	store, db := setupStore(t)
	receipts := &receiptStoreStub{}
	svc := NewEnrollmentService(store, receipts, testValidator(), 5*1024*1024, testLogger())

	user := createUser(t, db, "guide-buy")
	module := createModule(t, db, "Wildlife Handling", 80)

	payload := dto.PaidEnrollmentRequest{Method: "bank_transfer", Amount: 80}
	receipt := buildReceiptHeader(t, "receipt.png", pngHeader)

	result, err := svc.InitiatePaid(context.Background(), user.ID, module.ID, payload, receipt)
	require.NoError(t, err)
	require.Equal(t, models.PurchaseStatusPending, result.Status)
	require.NotZero(t, result.PaymentID)
	require.NotZero(t, result.PurchaseID)
	require.Len(t, receipts.names, 1)

	var payment models.PaymentTransaction
	require.NoError(t, db.First(&payment, result.PaymentID).Error)
	require.Equal(t, models.PaymentStatusPending, payment.Status)
	require.Equal(t, "bank_transfer", payment.Method)
	require.Equal(t, float64(80), payment.Amount)
	require.Contains(t, payment.ReceiptURL, "https://cdn.example.com/receipts/")

	var purchase models.ModulePurchase
	require.NoError(t, db.First(&purchase, result.PurchaseID).Error)
	require.Equal(t, models.PurchaseStatusPending, purchase.Status)
	require.True(t, purchase.IsActive)
}

func TestInitiatePaidRejectsUnsupportedReceipt(t *testing.T) {
	store, db := setupStore(t)
	svc := NewEnrollmentService(store, &receiptStoreStub{}, testValidator(), 5*1024*1024, testLogger())

	user := createUser(t, db, "guide-badfile")
	module := createModule(t, db, "Wildlife Handling", 80)

	payload := dto.PaidEnrollmentRequest{Method: "debit", Amount: 80}
	receipt := buildReceiptHeader(t, "receipt.txt", []byte("plain text receipt"))

	_, err := svc.InitiatePaid(context.Background(), user.ID, module.ID, payload, receipt)
	require.ErrorIs(t, err, ErrInvalidReceipt)
}

func TestInitiatePaidRejectsOversizedReceipt(t *testing.T) {
	store, db := setupStore(t)
	svc := NewEnrollmentService(store, &receiptStoreStub{}, testValidator(), 4, testLogger())

	user := createUser(t, db, "guide-bigfile")
	module := createModule(t, db, "Wildlife Handling", 80)

	payload := dto.PaidEnrollmentRequest{Method: "debit", Amount: 80}
	receipt := buildReceiptHeader(t, "receipt.png", pngHeader)

	_, err := svc.InitiatePaid(context.Background(), user.ID, module.ID, payload, receipt)
	require.ErrorIs(t, err, ErrInvalidReceipt)
}

func TestInitiatePaidIdempotentWhilePending(t *testing.T) {
	store, db := setupStore(t)
	svc := NewEnrollmentService(store, &receiptStoreStub{}, testValidator(), 5*1024*1024, testLogger())

	user := createUser(t, db, "guide-dup")
	module := createModule(t, db, "Wildlife Handling", 80)

	payload := dto.PaidEnrollmentRequest{Method: "debit", Amount: 80}
	first, err := svc.InitiatePaid(context.Background(), user.ID, module.ID, payload, buildReceiptHeader(t, "receipt.png", pngHeader))
	require.NoError(t, err)

	second, err := svc.InitiatePaid(context.Background(), user.ID, module.ID, payload, buildReceiptHeader(t, "receipt.png", pngHeader))
	require.NoError(t, err)
	require.Equal(t, first.PaymentID, second.PaymentID)
	require.Equal(t, "A payment for this module is already awaiting approval", second.Message)

	var payments int64
	require.NoError(t, db.Model(&models.PaymentTransaction{}).Where("user_id = ?", user.ID).Count(&payments).Error)
	require.Equal(t, int64(1), payments)
}

func TestInitiatePaidReplacesRejectedPurchase(t *testing.T) {
	store, db := setupStore(t)
	svc := NewEnrollmentService(store, &receiptStoreStub{}, testValidator(), 5*1024*1024, testLogger())

	user := createUser(t, db, "guide-retry-pay")
	module := createModule(t, db, "Wildlife Handling", 80)

	rejected := models.PaymentTransaction{
		UserID:          user.ID,
		Purpose:         "Module Purchase: Wildlife Handling",
		Method:          "debit",
		Amount:          80,
		Status:          models.PaymentStatusRejected,
		ModuleID:        &module.ID,
		TransactionDate: time.Now(),
	}
	require.NoError(t, db.Create(&rejected).Error)
	old := models.ModulePurchase{
		UserID:       user.ID,
		ModuleID:     module.ID,
		PaymentID:    rejected.ID,
		Status:       models.PurchaseStatusPending,
		IsActive:     true,
		PurchaseDate: time.Now(),
	}
	require.NoError(t, db.Create(&old).Error)

	payload := dto.PaidEnrollmentRequest{Method: "bank_transfer", Amount: 80}
	result, err := svc.InitiatePaid(context.Background(), user.ID, module.ID, payload, buildReceiptHeader(t, "receipt.png", pngHeader))
	require.NoError(t, err)
	require.Equal(t, models.PurchaseStatusPending, result.Status)
	require.NotEqual(t, old.ID, result.PurchaseID)
	require.NotEqual(t, rejected.ID, result.PaymentID)

	var retired models.ModulePurchase
	require.NoError(t, db.First(&retired, old.ID).Error)
	require.False(t, retired.IsActive)

	replacement, err := store.Purchases().ActiveForUserModule(context.Background(), user.ID, module.ID)
	require.NoError(t, err)
	require.Equal(t, result.PurchaseID, replacement.ID)
	require.Equal(t, models.PaymentStatusPending, replacement.Payment.Status)
}

func TestInitiatePaidHealsPaymentWithoutPurchase(t *testing.T) {
	store, db := setupStore(t)
	receipts := &receiptStoreStub{}
	svc := NewEnrollmentService(store, receipts, testValidator(), 5*1024*1024, testLogger())

	user := createUser(t, db, "guide-orphan-pay")
	module := createModule(t, db, "Wildlife Handling", 80)

	orphan := models.PaymentTransaction{
		UserID:          user.ID,
		Purpose:         "Module Purchase: Wildlife Handling",
		Method:          "debit",
		Amount:          80,
		Status:          models.PaymentStatusPending,
		ModuleID:        &module.ID,
		TransactionDate: time.Now(),
	}
	require.NoError(t, db.Create(&orphan).Error)

	payload := dto.PaidEnrollmentRequest{Method: "debit", Amount: 80}
	result, err := svc.InitiatePaid(context.Background(), user.ID, module.ID, payload, buildReceiptHeader(t, "receipt.png", pngHeader))
	require.NoError(t, err)
	require.Equal(t, orphan.ID, result.PaymentID)
	require.Equal(t, "A payment for this module is already awaiting approval", result.Message)
	require.Empty(t, receipts.names)

	var purchase models.ModulePurchase
	require.NoError(t, db.First(&purchase, result.PurchaseID).Error)
	require.Equal(t, models.PurchaseStatusPending, purchase.Status)
	require.True(t, purchase.IsActive)
	require.Equal(t, orphan.ID, purchase.PaymentID)

	var payments int64
	require.NoError(t, db.Model(&models.PaymentTransaction{}).Where("user_id = ?", user.ID).Count(&payments).Error)
	require.Equal(t, int64(1), payments)
}

func TestListUserModulesReturnsActivePurchases(t *testing.T) {
	store, db := setupStore(t)
	svc := NewEnrollmentService(store, &receiptStoreStub{}, testValidator(), 5*1024*1024, testLogger())

	user := createUser(t, db, "guide-list")
	module := createModule(t, db, "Wildlife Handling", 80)
	createActivePurchase(t, db, user.ID, module.ID)

	modules, err := svc.ListUserModules(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	require.Equal(t, "Wildlife Handling", modules[0].Name)
}
