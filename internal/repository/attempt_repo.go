package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/models"
)

// AttemptRepository defines data operations for quiz attempts and responses.
type AttemptRepository interface {
	GetByID(ctx context.Context, id uint) (models.QuizAttempt, error)
	CountForUserModule(ctx context.Context, userID, moduleID uint) (int64, error)
	MaxAttemptNumber(ctx context.Context, userID, moduleID uint) (int, error)
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	Finalize(ctx context.Context, attempt *models.QuizAttempt) error
	CreateResponses(ctx context.Context, responses []models.QuizResponse) error
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository instantiates the repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) GetByID(ctx context.Context, id uint) (models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := r.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return models.QuizAttempt{}, err
	}

	return attempt, nil
}

func (r *attemptRepository) CountForUserModule(ctx context.Context, userID, moduleID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("user_id = ?", userID).
		Where("module_id = ?", moduleID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *attemptRepository) MaxAttemptNumber(ctx context.Context, userID, moduleID uint) (int, error) {
	var max *int
	if err := r.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Select("MAX(attempt_number)").
		Where("user_id = ?", userID).
		Where("module_id = ?", moduleID).
		Scan(&max).Error; err != nil {
		return 0, err
	}

	if max == nil {
		return 0, nil
	}

	return *max, nil
}

func (r *attemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *attemptRepository) Finalize(ctx context.Context, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Model(attempt).
		Select("score", "total_questions", "passed", "end_time", "answer_times").
		Updates(attempt).Error
}

func (r *attemptRepository) CreateResponses(ctx context.Context, responses []models.QuizResponse) error {
	if len(responses) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Create(&responses).Error
}
