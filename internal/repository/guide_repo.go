package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/models"
)

// GuideRepository defines data operations for park guide records.
type GuideRepository interface {
	GetByID(ctx context.Context, id uint) (models.ParkGuide, error)
	GetByUserID(ctx context.Context, userID uint) (models.ParkGuide, error)
	Update(ctx context.Context, guide *models.ParkGuide) error
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error
	ListPendingLicense(ctx context.Context) ([]models.ParkGuide, error)
}

type guideRepository struct {
	db *gorm.DB
}

// NewGuideRepository instantiates the repository.
func NewGuideRepository(db *gorm.DB) GuideRepository {
	return &guideRepository{db: db}
}

func (r *guideRepository) GetByID(ctx context.Context, id uint) (models.ParkGuide, error) {
	var guide models.ParkGuide
	if err := r.db.WithContext(ctx).Preload("User").First(&guide, id).Error; err != nil {
		return models.ParkGuide{}, err
	}

	return guide, nil
}

func (r *guideRepository) GetByUserID(ctx context.Context, userID uint) (models.ParkGuide, error) {
	var guide models.ParkGuide
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&guide).Error; err != nil {
		return models.ParkGuide{}, err
	}

	return guide, nil
}

func (r *guideRepository) Update(ctx context.Context, guide *models.ParkGuide) error {
	return r.db.WithContext(ctx).Save(guide).Error
}

func (r *guideRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	update := r.db.WithContext(ctx).Model(&models.ParkGuide{}).
		Where("id = ?", id).
		Updates(updates)
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *guideRepository) ListPendingLicense(ctx context.Context) ([]models.ParkGuide, error) {
	var guides []models.ParkGuide
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("certification_status = ?", models.GuideLicensePending).
		Where("requested_park_id IS NOT NULL").
		Order("updated_at ASC").
		Find(&guides).Error; err != nil {
		return nil, err
	}

	return guides, nil
}
