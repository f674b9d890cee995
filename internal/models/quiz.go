package models

import "time"

// Quiz is the assessment attached to a training module. PassPercentage
// overrides the configured default when non-zero.
type Quiz struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ModuleID       uint           `gorm:"not null;index" json:"module_id"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	PassPercentage int            `gorm:"not null;default:0" json:"pass_percentage"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Questions      []QuizQuestion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
}

// QuizQuestion is a single scored question within a quiz.
type QuizQuestion struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	QuizID         uint               `gorm:"not null;index" json:"quiz_id"`
	QuestionText   string             `gorm:"type:text;not null" json:"question_text"`
	QuestionType   string             `gorm:"size:32;not null" json:"question_type"`
	Points         int                `gorm:"not null;default:1" json:"points"`
	SequenceNumber int                `gorm:"not null" json:"sequence_number"`
	Options        []QuizAnswerOption `gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"options"`
}

const (
	// QuestionTypeMultipleChoice identifies multi-option questions.
	QuestionTypeMultipleChoice = "multiple_choice"
	// QuestionTypeTrueFalse identifies boolean questions.
	QuestionTypeTrueFalse = "true_false"
)

// QuizAnswerOption is a selectable answer. IsCorrect never leaves the
// persistence layer; DTO mapping strips it before responses are built.
type QuizAnswerOption struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	QuestionID     uint   `gorm:"not null;index" json:"question_id"`
	OptionText     string `gorm:"type:text;not null" json:"option_text"`
	IsCorrect      bool   `gorm:"not null;default:false" json:"-"`
	SequenceNumber int    `gorm:"not null" json:"sequence_number"`
}
