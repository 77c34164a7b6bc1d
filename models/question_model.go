package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Question struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ExamID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_exam_question_number" json:"exam_id"`
	QuestionNumber int       `gorm:"not null;uniqueIndex:idx_exam_question_number" json:"question_number"`
	Prompt         string    `gorm:"type:text;not null" json:"prompt"`
	Marks          int       `gorm:"not null;default:1" json:"marks"`
	Explanation    string    `gorm:"type:text" json:"explanation,omitempty"`
	ImageURL       *string   `gorm:"size:512" json:"image_url,omitempty"`
	IsActive       bool      `json:"is_active"`

	Options []Option `gorm:"foreignkey:QuestionID" json:"options,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
