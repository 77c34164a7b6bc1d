package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IsCorrect is never serialized; student-facing responses build their own
// option views and grading reads it server-side only.
type Option struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	QuestionID   uuid.UUID `gorm:"type:uuid;not null" json:"question_id"`
	Label        string    `gorm:"size:10" json:"label"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	IsCorrect    bool      `gorm:"not null;default:false" json:"-"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
}

func (o *Option) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
