package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/models"
)

// ModuleRepository defines data operations for training modules.
type ModuleRepository interface {
	GetByID(ctx context.Context, id uint) (models.TrainingModule, error)
	ListPurchasedByUser(ctx context.Context, userID uint) ([]models.ModulePurchase, error)
}

type moduleRepository struct {
	db *gorm.DB
}

// NewModuleRepository instantiates the repository.
func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &moduleRepository{db: db}
}

func (r *moduleRepository) GetByID(ctx context.Context, id uint) (models.TrainingModule, error) {
	var module models.TrainingModule
	if err := r.db.WithContext(ctx).First(&module, id).Error; err != nil {
		return models.TrainingModule{}, err
	}

	return module, nil
}

func (r *moduleRepository) ListPurchasedByUser(ctx context.Context, userID uint) ([]models.ModulePurchase, error) {
	var purchases []models.ModulePurchase
	if err := r.db.WithContext(ctx).
		Preload("Module").
		Where("user_id = ?", userID).
		Where("status = ?", models.PurchaseStatusActive).
		Where("is_active = ?", true).
		Order("purchase_date DESC").
		Find(&purchases).Error; err != nil {
		return nil, err
	}

	return purchases, nil
}
