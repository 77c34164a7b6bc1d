package utils

import (
	"math/rand"
	"time"

	"github.com/examsoft/exam_portal/models"
	"gorm.io/gorm"
)

const serialCodeLength = 12
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCertificateSerial returns a serial code not yet used by any
// issued certificate.
func GenerateCertificateSerial(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, serialCodeLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		code := string(b)

		var cert models.Certificate
		err := tx.Where("serial_code = ?", code).First(&cert).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return code, nil
			}
			return "", err
		}
	}
}
