package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/models"
)

// PurchaseRepository defines data operations for module purchases.
type PurchaseRepository interface {
	GetByID(ctx context.Context, id uint) (models.ModulePurchase, error)
	ActiveForUserModule(ctx context.Context, userID, moduleID uint) (models.ModulePurchase, error)
	GetByPaymentID(ctx context.Context, paymentID uint) (models.ModulePurchase, error)
	Create(ctx context.Context, purchase *models.ModulePurchase) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	Deactivate(ctx context.Context, id uint) error
	UpdateCompletion(ctx context.Context, id uint, percentage int) error
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository instantiates the repository.
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) GetByID(ctx context.Context, id uint) (models.ModulePurchase, error) {
	var purchase models.ModulePurchase
	if err := r.db.WithContext(ctx).Preload("Payment").Preload("Module").First(&purchase, id).Error; err != nil {
		return models.ModulePurchase{}, err
	}

	return purchase, nil
}

func (r *purchaseRepository) ActiveForUserModule(ctx context.Context, userID, moduleID uint) (models.ModulePurchase, error) {
	var purchase models.ModulePurchase
	if err := r.db.WithContext(ctx).
		Preload("Payment").
		Where("user_id = ?", userID).
		Where("module_id = ?", moduleID).
		Where("is_active = ?", true).
		Order("purchase_date DESC").
		First(&purchase).Error; err != nil {
		return models.ModulePurchase{}, err
	}

	return purchase, nil
}

func (r *purchaseRepository) GetByPaymentID(ctx context.Context, paymentID uint) (models.ModulePurchase, error) {
	var purchase models.ModulePurchase
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&purchase).Error; err != nil {
		return models.ModulePurchase{}, err
	}

	return purchase, nil
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *models.ModulePurchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	update := r.db.WithContext(ctx).Model(&models.ModulePurchase{}).
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

// Deactivate retires a purchase row from the partial unique index so a
// replacement purchase for the same (user, module) can be created.
func (r *purchaseRepository) Deactivate(ctx context.Context, id uint) error {
	update := r.db.WithContext(ctx).Model(&models.ModulePurchase{}).
		Where("id = ?", id).
		Update("is_active", false)
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *purchaseRepository) UpdateCompletion(ctx context.Context, id uint, percentage int) error {
	update := r.db.WithContext(ctx).Model(&models.ModulePurchase{}).
		Where("id = ?", id).
		Update("completion_percentage", percentage)
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
