package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Certificate struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ExamID         uuid.UUID `gorm:"type:uuid;not null" json:"exam_id"`
	ExamTitle      string    `gorm:"size:255;not null" json:"exam_title"`
	SerialCode     string    `gorm:"size:12;unique;not null" json:"serial_code"`
	Score          int       `gorm:"not null" json:"score"`
	Percentage     int       `gorm:"not null" json:"percentage"`
	IssuedAt       time.Time `gorm:"not null" json:"issued_at"`
	CertificateURL string    `gorm:"size:512" json:"certificate_url"`
}

func (c *Certificate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
