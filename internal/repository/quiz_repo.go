package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/models"
)

// QuizRepository defines data operations for quizzes and their questions.
type QuizRepository interface {
	GetByID(ctx context.Context, id uint) (models.Quiz, error)
	GetByModuleID(ctx context.Context, moduleID uint) (models.Quiz, error)
	// CorrectOptions returns the authoritative question -> correct option
	// map for every question in the quiz.
	CorrectOptions(ctx context.Context, quizID uint) (map[uint]uint, error)
	QuestionPoints(ctx context.Context, quizID uint) (map[uint]int, error)
}

type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository instantiates the repository.
func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Quiz{}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_number ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_number ASC")
		})
}

func (r *quizRepository) GetByID(ctx context.Context, id uint) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.baseQuery(ctx).First(&quiz, id).Error; err != nil {
		return models.Quiz{}, err
	}

	return quiz, nil
}

func (r *quizRepository) GetByModuleID(ctx context.Context, moduleID uint) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.baseQuery(ctx).Where("module_id = ?", moduleID).First(&quiz).Error; err != nil {
		return models.Quiz{}, err
	}

	return quiz, nil
}

func (r *quizRepository) CorrectOptions(ctx context.Context, quizID uint) (map[uint]uint, error) {
	var options []models.QuizAnswerOption
	if err := r.db.WithContext(ctx).
		Joins("JOIN quiz_questions ON quiz_questions.id = quiz_answer_options.question_id").
		Where("quiz_questions.quiz_id = ?", quizID).
		Where("quiz_answer_options.is_correct = ?", true).
		Find(&options).Error; err != nil {
		return nil, err
	}

	correct := make(map[uint]uint, len(options))
	for _, option := range options {
		correct[option.QuestionID] = option.ID
	}

	return correct, nil
}

func (r *quizRepository) QuestionPoints(ctx context.Context, quizID uint) (map[uint]int, error) {
	var questions []models.QuizQuestion
	if err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Find(&questions).Error; err != nil {
		return nil, err
	}

	points := make(map[uint]int, len(questions))
	for _, question := range questions {
		points[question.ID] = question.Points
	}

	return points, nil
}
