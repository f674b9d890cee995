package dto

import "github.com/semenggoh/parkguide-api/internal/models"

// QuizMeta describes the quiz header returned at assembly time.
type QuizMeta struct {
	ID                uint   `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	AttemptsUsed      int    `json:"attemptsUsed"`
	NextAttemptNumber int    `json:"nextAttemptNumber"`
	AttemptID         *uint  `json:"attemptId,omitempty"`
}

// QuizOptionView is a selectable option with correctness stripped.
type QuizOptionView struct {
	OptionID   uint   `json:"option_id"`
	OptionText string `json:"option_text"`
}

// QuizQuestionView is a question as shown to the quiz taker.
type QuizQuestionView struct {
	QuestionID   uint             `json:"question_id"`
	QuestionType string           `json:"question_type"`
	QuestionText string           `json:"question_text"`
	Points       int              `json:"points"`
	Options      []QuizOptionView `json:"options"`
}

// QuizAssemblyResponse is returned by GET /training-modules/{id}/quiz.
type QuizAssemblyResponse struct {
	Quiz      QuizMeta           `json:"quiz"`
	Questions []QuizQuestionView `json:"questions"`
}

// NewQuizQuestionView maps a question model, dropping the correct flag.
func NewQuizQuestionView(model models.QuizQuestion) QuizQuestionView {
	options := make([]QuizOptionView, 0, len(model.Options))
	for _, option := range model.Options {
		options = append(options, QuizOptionView{
			OptionID:   option.ID,
			OptionText: option.OptionText,
		})
	}

	return QuizQuestionView{
		QuestionID:   model.ID,
		QuestionType: model.QuestionType,
		QuestionText: model.QuestionText,
		Points:       model.Points,
		Options:      options,
	}
}

// QuizAnswer is one submitted (question, option) pair with optional timing.
type QuizAnswer struct {
	QuestionID       uint `json:"questionId" validate:"required,gt=0"`
	SelectedOptionID uint `json:"selectedOptionId" validate:"required,gt=0"`
	TimeTakenSecs    int  `json:"timeTakenSecs" validate:"gte=0"`
}

// QuizSubmissionRequest is the body of POST /training-modules/{id}/quiz.
// AttemptID finalizes an attempt opened at assembly time; when absent a new
// attempt row is created at submission.
type QuizSubmissionRequest struct {
	Answers   []QuizAnswer `json:"answers" validate:"required,min=1,dive"`
	AttemptID *uint        `json:"attemptId" validate:"omitempty,gt=0"`
}

// QuizResultResponse reports the scored outcome of a submission.
type QuizResultResponse struct {
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	TotalPoints    int    `json:"totalPoints"`
	EarnedPoints   int    `json:"earnedPoints"`
	PassPercentage int    `json:"passPercentage"`
	Passed         bool   `json:"passed"`
	AttemptNumber  int    `json:"attemptNumber"`
	Message        string `json:"message"`
}
