package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Exam struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title              string    `gorm:"size:255;not null" json:"title"`
	Description        string    `gorm:"type:text" json:"description"`
	Instructions       string    `gorm:"type:text" json:"instructions"`
	IsActive           bool      `json:"is_active"`
	DurationMinutes    int       `gorm:"not null" json:"duration_minutes"`
	TotalMarks         int       `gorm:"not null" json:"total_marks"`
	PassMarkPercent    int       `gorm:"not null" json:"pass_mark_percent"`
	MaxAttempts        *int      `json:"max_attempts"`
	RandomizeQuestions bool      `json:"randomize_questions"`
	AllowReview        bool      `json:"allow_review"`
	CreatedBy          uuid.UUID `gorm:"type:uuid" json:"created_by"`

	Questions []Question `gorm:"foreignkey:ExamID" json:"questions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Exam) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
