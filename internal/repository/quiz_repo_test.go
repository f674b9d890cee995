package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/semenggoh/parkguide-api/internal/models"
)

func seedQuiz(t *testing.T, db *gorm.DB) models.Quiz {
	t.Helper()
	quiz := models.Quiz{
		ModuleID:       1,
		Title:          "Wildlife Safety",
		PassPercentage: 80,
		Questions: []models.QuizQuestion{
			{
				QuestionText:   "Minimum distance from an orangutan?",
				QuestionType:   models.QuestionTypeMultipleChoice,
				Points:         2,
				SequenceNumber: 1,
				Options: []models.QuizAnswerOption{
					{OptionText: "1 meter", SequenceNumber: 1},
					{OptionText: "10 meters", IsCorrect: true, SequenceNumber: 2},
				},
			},
			{
				QuestionText:   "Feeding wildlife is permitted.",
				QuestionType:   models.QuestionTypeTrueFalse,
				Points:         1,
				SequenceNumber: 2,
				Options: []models.QuizAnswerOption{
					{OptionText: "True", SequenceNumber: 1},
					{OptionText: "False", IsCorrect: true, SequenceNumber: 2},
				},
			},
		},
	}
	require.NoError(t, db.Create(&quiz).Error)
	return quiz
}

func TestGetByModuleIDPreloadsQuestionsInSequence(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuizRepository(db)
	seeded := seedQuiz(t, db)

	quiz, err := repo.GetByModuleID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, seeded.ID, quiz.ID)
	require.Len(t, quiz.Questions, 2)
	require.Equal(t, 1, quiz.Questions[0].SequenceNumber)
	require.Equal(t, 2, quiz.Questions[1].SequenceNumber)
	require.Len(t, quiz.Questions[0].Options, 2)

	_, err = repo.GetByModuleID(context.Background(), 42)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCorrectOptionsMapsEveryQuestion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuizRepository(db)
	quiz := seedQuiz(t, db)

	correct, err := repo.CorrectOptions(context.Background(), quiz.ID)
	require.NoError(t, err)
	require.Len(t, correct, 2)
	for _, question := range quiz.Questions {
		optionID, ok := correct[question.ID]
		require.True(t, ok)
		var option models.QuizAnswerOption
		require.NoError(t, db.First(&option, optionID).Error)
		require.True(t, option.IsCorrect)
	}
}

func TestQuestionPointsReflectsStoredWeights(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuizRepository(db)
	quiz := seedQuiz(t, db)

	points, err := repo.QuestionPoints(context.Background(), quiz.ID)
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, 2, points[quiz.Questions[0].ID])
	require.Equal(t, 1, points[quiz.Questions[1].ID])
}
