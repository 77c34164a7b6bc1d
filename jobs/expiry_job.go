package jobs

import (
	"log"
	"time"

	"github.com/examsoft/exam_portal/database"
	"github.com/examsoft/exam_portal/models"
	"github.com/examsoft/exam_portal/notifications"
	"github.com/examsoft/exam_portal/services"
	ws "github.com/examsoft/exam_portal/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FinalizeExpiredAttempts grades attempts whose clock ran out without the
// client ever calling submit. The saved answer trail stands in for the
// client-held answer map, and the attempt closes as expired rather than
// completed.
func FinalizeExpiredAttempts() {
	var stale []models.Attempt
	err := database.DB.
		Where("status = ? AND expires_at < ?", models.AttemptInProgress, time.Now()).
		Find(&stale).Error
	if err != nil {
		log.Printf("Error checking for expired attempts: %v", err)
		return
	}

	if len(stale) == 0 {
		return
	}

	for _, attempt := range stale {
		if err := finalizeOne(attempt); err != nil {
			log.Printf("🔥 Failed to finalize expired attempt %s: %v", attempt.ID, err)
		}
	}

	log.Printf("Finalized %d expired attempt(s).", len(stale))
}

func finalizeOne(attempt models.Attempt) error {
	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", attempt.ExamID).Error; err != nil {
		return err
	}

	var questions []models.Question
	err := database.DB.
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("display_order") }).
		Where("exam_id = ? AND is_active = ?", attempt.ExamID, true).
		Order("question_number").
		Find(&questions).Error
	if err != nil {
		return err
	}

	var saved []models.AttemptAnswer
	if err := database.DB.Where("attempt_id = ?", attempt.ID).Find(&saved).Error; err != nil {
		return err
	}
	selections := make(map[uuid.UUID]uuid.UUID, len(saved))
	for _, a := range saved {
		if a.SelectedOptionID != nil {
			selections[a.QuestionID] = *a.SelectedOptionID
		}
	}

	result, err := services.FinalizeAttempt(database.DB, &attempt, exam, questions, selections, models.AttemptExpired)
	if err != nil {
		return err
	}

	percentage := services.Percentage(result.Score, exam.TotalMarks)
	passed := attempt.Passed != nil && *attempt.Passed

	var user models.User
	if err := database.DB.First(&user, "id = ?", attempt.UserID).Error; err == nil {
		go notifications.SendResultEmail(user, exam, result.Score, percentage, passed)
		if passed {
			go services.IssueCertificate(user, exam, result.Score, percentage)
		}
		ws.PublishSubmission(ws.SubmissionEvent{
			AttemptID:  attempt.ID,
			ExamID:     exam.ID,
			ExamTitle:  exam.Title,
			UserID:     user.ID,
			FullName:   user.FullName,
			Score:      result.Score,
			Percentage: percentage,
			Passed:     passed,
			Status:     attempt.Status,
		})
	}
	services.InvalidateLeaderboard(exam.ID)

	return nil
}
