package jobs

import (
	"fmt"
	"testing"
	"time"

	"github.com/examsoft/exam_portal/database"
	"github.com/examsoft/exam_portal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Exam{}, &models.Question{}, &models.Option{},
		&models.Attempt{}, &models.AttemptAnswer{}, &models.Certificate{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
	return db
}

func TestFinalizeExpiredAttempts(t *testing.T) {
	db := setupDB(t)

	user := models.User{FullName: "Kofi Mensah", Email: "kofi@example.com", Password: "hashed", Role: "student", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	exam := models.Exam{
		Title:           "History Quiz",
		IsActive:        true,
		DurationMinutes: 30,
		TotalMarks:      2,
		PassMarkPercent: 50,
	}
	if err := db.Create(&exam).Error; err != nil {
		t.Fatalf("seed exam: %v", err)
	}

	q1 := models.Question{
		ExamID: exam.ID, QuestionNumber: 1, Prompt: "Q1", Marks: 1, IsActive: true,
		Options: []models.Option{
			{Label: "A", Text: "Right", IsCorrect: true, DisplayOrder: 1},
			{Label: "B", Text: "Wrong", DisplayOrder: 2},
		},
	}
	q2 := models.Question{
		ExamID: exam.ID, QuestionNumber: 2, Prompt: "Q2", Marks: 1, IsActive: true,
		Options: []models.Option{
			{Label: "A", Text: "Right", IsCorrect: true, DisplayOrder: 1},
			{Label: "B", Text: "Wrong", DisplayOrder: 2},
		},
	}
	if err := db.Create(&q1).Error; err != nil {
		t.Fatalf("seed q1: %v", err)
	}
	if err := db.Create(&q2).Error; err != nil {
		t.Fatalf("seed q2: %v", err)
	}

	stale := models.Attempt{
		ExamID:    exam.ID,
		UserID:    user.ID,
		Status:    models.AttemptInProgress,
		StartedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("seed stale attempt: %v", err)
	}
	// One correct answer saved mid-exam, second question never answered.
	saved := models.AttemptAnswer{
		AttemptID:        stale.ID,
		QuestionID:       q1.ID,
		SelectedOptionID: &q1.Options[0].ID,
	}
	if err := db.Create(&saved).Error; err != nil {
		t.Fatalf("seed saved answer: %v", err)
	}

	// A live attempt must be left untouched.
	live := models.Attempt{
		ExamID:    exam.ID,
		UserID:    user.ID,
		Status:    models.AttemptInProgress,
		StartedAt: time.Now(),
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	if err := db.Create(&live).Error; err != nil {
		t.Fatalf("seed live attempt: %v", err)
	}

	FinalizeExpiredAttempts()

	var finalized models.Attempt
	if err := db.First(&finalized, "id = ?", stale.ID).Error; err != nil {
		t.Fatalf("load stale attempt: %v", err)
	}
	if finalized.Status != models.AttemptExpired {
		t.Errorf("status = %s, want expired", finalized.Status)
	}
	if finalized.Score == nil || *finalized.Score != 1 {
		t.Errorf("score = %v, want 1", finalized.Score)
	}
	if finalized.Passed == nil || !*finalized.Passed {
		t.Errorf("passed = %v, want true (pass mark is 1 of 2)", finalized.Passed)
	}
	if finalized.CompletedAt == nil {
		t.Error("completed_at not set")
	}

	var rows []models.AttemptAnswer
	if err := db.Where("attempt_id = ?", stale.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load answers: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d answer rows, want 1", len(rows))
	}
	if !rows[0].Graded || !rows[0].IsCorrect || rows[0].MarksEarned != 1 {
		t.Errorf("saved answer not regraded: graded=%v correct=%v marks=%d",
			rows[0].Graded, rows[0].IsCorrect, rows[0].MarksEarned)
	}

	var untouched models.Attempt
	if err := db.First(&untouched, "id = ?", live.ID).Error; err != nil {
		t.Fatalf("load live attempt: %v", err)
	}
	if untouched.Status != models.AttemptInProgress {
		t.Errorf("live attempt status = %s, want in_progress", untouched.Status)
	}
}

func TestFinalizeExpiredAttemptsNoWork(t *testing.T) {
	db := setupDB(t)

	// No in_progress attempts past expiry: the sweep is a no-op.
	FinalizeExpiredAttempts()

	var count int64
	if err := db.Model(&models.Attempt{}).Count(&count).Error; err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 0 {
		t.Errorf("sweep created attempts out of nothing: %d", count)
	}
}
