package services

import (
	"time"

	"github.com/examsoft/exam_portal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FinalizeAttempt grades the given selections and persists the outcome in a
// single transaction: the attempt's answer rows are replaced by the freshly
// graded set and the attempt is closed with its score. Used both by the
// submit endpoint and by the expiry sweep.
func FinalizeAttempt(db *gorm.DB, attempt *models.Attempt, exam models.Exam, questions []models.Question, selections map[uuid.UUID]uuid.UUID, finalStatus string) (GradeResult, error) {
	result := GradeAttempt(questions, selections)

	passMark := PassMark(exam.PassMarkPercent, exam.TotalMarks)
	passed := result.Score >= passMark
	now := time.Now()

	answerRows := make([]models.AttemptAnswer, 0, result.QuestionsAnswered)
	for _, graded := range result.Answers {
		if graded.SelectedOptionID == nil {
			continue
		}
		answerRows = append(answerRows, models.AttemptAnswer{
			AttemptID:        attempt.ID,
			QuestionID:       graded.QuestionID,
			SelectedOptionID: graded.SelectedOptionID,
			IsCorrect:        graded.IsCorrect,
			MarksEarned:      graded.MarksEarned,
			Graded:           true,
		})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attempt_id = ?", attempt.ID).Delete(&models.AttemptAnswer{}).Error; err != nil {
			return err
		}
		if len(answerRows) > 0 {
			if err := tx.Create(&answerRows).Error; err != nil {
				return err
			}
		}
		return tx.Model(attempt).Updates(map[string]interface{}{
			"status":       finalStatus,
			"completed_at": now,
			"score":        result.Score,
			"passed":       passed,
		}).Error
	})
	if err != nil {
		return GradeResult{}, err
	}

	attempt.Status = finalStatus
	attempt.CompletedAt = &now
	attempt.Score = &result.Score
	attempt.Passed = &passed

	return result, nil
}
