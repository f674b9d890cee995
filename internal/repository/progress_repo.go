package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/semenggoh/parkguide-api/internal/models"
)

// ProgressRepository defines data operations for guide training progress.
type ProgressRepository interface {
	GetForGuideModule(ctx context.Context, guideID, moduleID uint) (models.GuideTrainingProgress, error)
	// Seed inserts an in-progress marker, ignoring the insert when a row
	// already exists for the (guide, module) pair.
	Seed(ctx context.Context, progress *models.GuideTrainingProgress) error
	// MarkCompleted upserts the row into the completed state.
	MarkCompleted(ctx context.Context, progress *models.GuideTrainingProgress) error
	ListByGuide(ctx context.Context, guideID uint) ([]models.GuideTrainingProgress, error)
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository instantiates the repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetForGuideModule(ctx context.Context, guideID, moduleID uint) (models.GuideTrainingProgress, error) {
	var progress models.GuideTrainingProgress
	if err := r.db.WithContext(ctx).
		Where("guide_id = ?", guideID).
		Where("module_id = ?", moduleID).
		First(&progress).Error; err != nil {
		return models.GuideTrainingProgress{}, err
	}

	return progress, nil
}

func (r *progressRepository) Seed(ctx context.Context, progress *models.GuideTrainingProgress) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "guide_id"}, {Name: "module_id"}},
			DoNothing: true,
		}).
		Create(progress).Error
}

func (r *progressRepository) MarkCompleted(ctx context.Context, progress *models.GuideTrainingProgress) error {
	progress.Status = models.TrainingCompleted

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "guide_id"}, {Name: "module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "completion_date", "updated_at"}),
		}).
		Create(progress).Error
}

func (r *progressRepository) ListByGuide(ctx context.Context, guideID uint) ([]models.GuideTrainingProgress, error) {
	var rows []models.GuideTrainingProgress
	if err := r.db.WithContext(ctx).
		Where("guide_id = ?", guideID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}
