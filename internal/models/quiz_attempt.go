package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuizAttempt is one numbered try at a module quiz. The composite unique
// index on (user_id, module_id, attempt_number) is what serializes
// concurrent submissions; inserts that collide are retried with a fresh
// sequence read.
type QuizAttempt struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	QuizID         uint           `gorm:"not null;index" json:"quiz_id"`
	UserID         uint           `gorm:"not null;uniqueIndex:idx_user_module_attempt" json:"user_id"`
	GuideID        *uint          `gorm:"index" json:"guide_id"`
	ModuleID       uint           `gorm:"not null;uniqueIndex:idx_user_module_attempt" json:"module_id"`
	Score          int            `gorm:"not null;default:0" json:"score"`
	TotalQuestions int            `gorm:"not null;default:0" json:"total_questions"`
	Passed         bool           `gorm:"not null;default:false" json:"passed"`
	StartTime      time.Time      `gorm:"not null" json:"start_time"`
	EndTime        *time.Time     `json:"end_time"`
	AttemptNumber  int            `gorm:"not null;uniqueIndex:idx_user_module_attempt" json:"attempt_number"`
	AnswerTimes    datatypes.JSON `json:"answer_times"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Responses      []QuizResponse `gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"responses"`
}

// IsFinalized reports whether the attempt has been scored.
func (a QuizAttempt) IsFinalized() bool {
	return a.EndTime != nil
}

// QuizResponse records one answer within an attempt. Responses are owned by
// their attempt and are immutable once written.
type QuizResponse struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	AttemptID        uint      `gorm:"not null;index" json:"attempt_id"`
	QuestionID       uint      `gorm:"not null" json:"question_id"`
	SelectedOptionID uint      `gorm:"not null" json:"selected_option_id"`
	IsCorrect        bool      `gorm:"not null" json:"is_correct"`
	TimeTakenSecs    int       `gorm:"not null;default:0" json:"time_taken_secs"`
	AnswerSequence   int       `gorm:"not null" json:"answer_sequence"`
	CreatedAt        time.Time `json:"created_at"`
}
