package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/models"
)

// PaymentRepository defines data operations for the payment ledger.
type PaymentRepository interface {
	GetByID(ctx context.Context, id uint) (models.PaymentTransaction, error)
	Create(ctx context.Context, payment *models.PaymentTransaction) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	PendingForUserModule(ctx context.Context, userID, moduleID uint) (models.PaymentTransaction, error)
	ListByUser(ctx context.Context, userID uint) ([]models.PaymentTransaction, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository instantiates the repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint) (models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return models.PaymentTransaction{}, err
	}

	return payment, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	update := r.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Where("id = ?", id).
		Update("status", status)
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *paymentRepository) PendingForUserModule(ctx context.Context, userID, moduleID uint) (models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("module_id = ?", moduleID).
		Where("status = ?", models.PaymentStatusPending).
		Order("transaction_date DESC").
		First(&payment).Error; err != nil {
		return models.PaymentTransaction{}, err
	}

	return payment, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uint) ([]models.PaymentTransaction, error) {
	var payments []models.PaymentTransaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("transaction_date DESC").
		Find(&payments).Error; err != nil {
		return nil, err
	}

	return payments, nil
}
