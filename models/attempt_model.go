package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AttemptInProgress = "in_progress"
	AttemptCompleted  = "completed"
	AttemptExpired    = "expired"
)

type Attempt struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ExamID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"exam_id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Status      string     `gorm:"size:20;not null;default:'in_progress'" json:"status"`
	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Score       *int       `json:"score"`
	Passed      *bool      `json:"passed"`

	User User `gorm:"foreignkey:UserID" json:"-"`
	Exam Exam `gorm:"foreignkey:ExamID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
