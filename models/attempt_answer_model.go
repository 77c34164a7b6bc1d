package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Graded distinguishes the collecting phase (selection saved mid-exam,
// marks still placeholder zero) from a genuinely graded answer.
type AttemptAnswer struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	AttemptID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_attempt_question" json:"attempt_id"`
	QuestionID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_attempt_question" json:"question_id"`
	SelectedOptionID *uuid.UUID `gorm:"type:uuid" json:"selected_option_id"`
	IsCorrect        bool       `gorm:"not null;default:false" json:"is_correct"`
	MarksEarned      int        `gorm:"not null;default:0" json:"marks_earned"`
	Graded           bool       `gorm:"not null;default:false" json:"graded"`

	Attempt  Attempt  `gorm:"foreignkey:AttemptID" json:"-"`
	Question Question `gorm:"foreignkey:QuestionID" json:"-"`
}

func (a *AttemptAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
