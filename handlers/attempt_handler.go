package handlers

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/examsoft/exam_portal/database"
	"github.com/examsoft/exam_portal/middleware"
	"github.com/examsoft/exam_portal/models"
	"github.com/examsoft/exam_portal/notifications"
	"github.com/examsoft/exam_portal/services"
	"github.com/examsoft/exam_portal/utils"
	"github.com/examsoft/exam_portal/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Profiles change rarely; a short TTL keeps the per-request lookup off the
// database during an exam session.
var profileCache = utils.NewTTLCache[uuid.UUID, models.User](5*time.Minute, time.Now)

func lookupProfile(userID uuid.UUID) (models.User, error) {
	if user, found := profileCache.Get(userID); found {
		return user, nil
	}
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return models.User{}, err
	}
	profileCache.Set(userID, user)
	return user, nil
}

type studentOption struct {
	ID           uuid.UUID `json:"id"`
	Label        string    `json:"label"`
	Text         string    `json:"text"`
	DisplayOrder int       `json:"display_order"`
}

type studentQuestion struct {
	ID             uuid.UUID       `json:"id"`
	QuestionNumber int             `json:"question_number"`
	Prompt         string          `json:"prompt"`
	Marks          int             `json:"marks"`
	ImageURL       *string         `json:"image_url,omitempty"`
	Options        []studentOption `json:"options"`
}

func loadExamQuestions(examID uuid.UUID) ([]models.Question, error) {
	var questions []models.Question
	err := database.DB.
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order")
		}).
		Where("exam_id = ? AND is_active = ?", examID, true).
		Order("question_number").
		Find(&questions).Error
	return questions, err
}

func StartExam(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	if _, err := lookupProfile(userID); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeUnauthorized, "Profile not found. Please complete your profile first.")
	}

	examID, err := uuid.Parse(c.Params("examId"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "exam_id is required")
	}

	var exam models.Exam
	if err := database.DB.First(&exam, "id = ? AND is_active = ?", examID, true).Error; err != nil {
		return fail(c, fiber.StatusBadRequest, CodeNotFound, "Exam not found or is not active")
	}

	// Every prior attempt counts against the limit, whatever its status,
	// and the limit is enforced before any resume: a user at the cap is
	// turned away even if their last attempt is still open.
	var attemptCount int64
	if err := database.DB.Model(&models.Attempt{}).
		Where("exam_id = ? AND user_id = ?", examID, userID).
		Count(&attemptCount).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to check attempt count")
	}
	if exam.MaxAttempts != nil && attemptCount >= int64(*exam.MaxAttempts) {
		return fail(c, fiber.StatusBadRequest, CodeAttemptLimit,
			fmt.Sprintf("You have reached the maximum number of attempts (%d) for this exam", *exam.MaxAttempts))
	}

	var attempt models.Attempt
	err = database.DB.
		Where("exam_id = ? AND user_id = ? AND status = ?", examID, userID, models.AttemptInProgress).
		First(&attempt).Error

	switch {
	case err == nil:
		// Idempotent resume: the open attempt is reused with its original expiry.
	case err == gorm.ErrRecordNotFound:
		now := time.Now()
		attempt = models.Attempt{
			ExamID:    examID,
			UserID:    userID,
			Status:    models.AttemptInProgress,
			StartedAt: now,
			ExpiresAt: now.Add(time.Duration(exam.DurationMinutes) * time.Minute),
		}
		if err := database.DB.Create(&attempt).Error; err != nil {
			return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to start exam attempt")
		}
	default:
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to check existing attempts")
	}

	questions, err := loadExamQuestions(examID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to load exam questions")
	}

	formatted := make([]studentQuestion, len(questions))
	for i, q := range questions {
		options := make([]studentOption, len(q.Options))
		for j, o := range q.Options {
			options[j] = studentOption{ID: o.ID, Label: o.Label, Text: o.Text, DisplayOrder: o.DisplayOrder}
		}
		formatted[i] = studentQuestion{
			ID:             q.ID,
			QuestionNumber: q.QuestionNumber,
			Prompt:         q.Prompt,
			Marks:          q.Marks,
			ImageURL:       q.ImageURL,
			Options:        options,
		}
	}

	// Order is shuffled per response, never persisted.
	if exam.RandomizeQuestions {
		rand.Shuffle(len(formatted), func(i, j int) {
			formatted[i], formatted[j] = formatted[j], formatted[i]
		})
	}

	var savedAnswers []models.AttemptAnswer
	if err := database.DB.Where("attempt_id = ?", attempt.ID).Find(&savedAnswers).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to load saved answers")
	}
	answerMap := make(map[string]string)
	for _, a := range savedAnswers {
		if a.SelectedOptionID != nil {
			answerMap[a.QuestionID.String()] = a.SelectedOptionID.String()
		}
	}

	return ok(c, fiber.Map{
		"attempt": fiber.Map{
			"id":         attempt.ID,
			"started_at": attempt.StartedAt,
			"expires_at": attempt.ExpiresAt,
			"status":     attempt.Status,
		},
		"exam": fiber.Map{
			"id":                exam.ID,
			"title":             exam.Title,
			"description":       exam.Description,
			"duration_minutes":  exam.DurationMinutes,
			"total_marks":       exam.TotalMarks,
			"pass_mark_percent": exam.PassMarkPercent,
			"allow_review":      exam.AllowReview,
			"instructions":      exam.Instructions,
		},
		"questions":     formatted,
		"saved_answers": answerMap,
	})
}

type SaveAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required,uuid"`
	OptionID   string `json:"option_id" validate:"required,uuid"`
}

func SaveAnswer(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	attemptID, err := uuid.Parse(c.Params("attemptId"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "attempt_id is required")
	}

	var req SaveAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, err.Error())
	}
	questionID := uuid.MustParse(req.QuestionID)
	optionID := uuid.MustParse(req.OptionID)

	var attempt models.Attempt
	if err := database.DB.First(&attempt, "id = ? AND user_id = ?", attemptID, userID).Error; err != nil {
		return fail(c, fiber.StatusBadRequest, CodeNotFound, "Attempt not found or access denied")
	}

	if attempt.Status != models.AttemptInProgress {
		return fail(c, fiber.StatusBadRequest, CodeAlreadySubmitted, "This exam has already been submitted")
	}
	if time.Now().After(attempt.ExpiresAt) {
		return fail(c, fiber.StatusBadRequest, CodeExpired, "This exam has expired")
	}

	// Referential checks: never trust the client's ids.
	var question models.Question
	if err := database.DB.First(&question, "id = ? AND exam_id = ?", questionID, attempt.ExamID).Error; err != nil {
		return fail(c, fiber.StatusBadRequest, CodeNotFound, "Question not found")
	}
	var option models.Option
	if err := database.DB.First(&option, "id = ? AND question_id = ?", optionID, questionID).Error; err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "Invalid option for this question")
	}

	// Correctness and marks stay at placeholder until submission so no
	// grading signal can leak mid-exam.
	answer := models.AttemptAnswer{
		AttemptID:        attemptID,
		QuestionID:       questionID,
		SelectedOptionID: &optionID,
		IsCorrect:        false,
		MarksEarned:      0,
		Graded:           false,
	}
	err = database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_option_id", "is_correct", "marks_earned", "graded"}),
	}).Create(&answer).Error
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to save answer")
	}

	return ok(c, fiber.Map{
		"message":     "Answer saved",
		"question_id": req.QuestionID,
		"option_id":   req.OptionID,
	})
}

type SubmitExamRequest struct {
	Answers map[string]string `json:"answers"`
}

func SubmitExam(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	attemptID, err := uuid.Parse(c.Params("attemptId"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "attempt_id is required")
	}

	var req SubmitExamRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "Cannot parse JSON")
	}
	if req.Answers == nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "answers object is required")
	}

	var attempt models.Attempt
	if err := database.DB.First(&attempt, "id = ? AND user_id = ?", attemptID, userID).Error; err != nil {
		return fail(c, fiber.StatusBadRequest, CodeNotFound, "Attempt not found or access denied")
	}

	if attempt.Status != models.AttemptInProgress {
		return fail(c, fiber.StatusBadRequest, CodeAlreadySubmitted, "This exam has already been submitted")
	}

	// A late submit is still graded on whatever the client sent.
	if time.Now().After(attempt.ExpiresAt) {
		log.Printf("Attempt %s past expiry, auto-submitting with client answers", attempt.ID)
	}

	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", attempt.ExamID).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to load exam for grading")
	}

	questions, err := loadExamQuestions(attempt.ExamID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to load questions for grading")
	}

	// The client-held answer map is authoritative for grading; the
	// save-answer trail is not consulted. Unparsable entries grade as
	// non-answers.
	selections := make(map[uuid.UUID]uuid.UUID, len(req.Answers))
	for qid, oid := range req.Answers {
		questionID, qErr := uuid.Parse(qid)
		optionID, oErr := uuid.Parse(oid)
		if qErr != nil || oErr != nil {
			continue
		}
		selections[questionID] = optionID
	}

	result, err := services.FinalizeAttempt(database.DB, &attempt, exam, questions, selections, models.AttemptCompleted)
	if err != nil {
		log.Printf("🔥 Failed to finalize attempt %s: %v", attempt.ID, err)
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to finalize exam submission")
	}

	percentage := services.Percentage(result.Score, exam.TotalMarks)
	passMark := services.PassMark(exam.PassMarkPercent, exam.TotalMarks)
	passed := attempt.Passed != nil && *attempt.Passed

	if user, err := lookupProfile(userID); err == nil {
		go notifications.SendResultEmail(user, exam, result.Score, percentage, passed)
		if passed {
			go services.IssueCertificate(user, exam, result.Score, percentage)
		}
		websocket.PublishSubmission(websocket.SubmissionEvent{
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

	data := fiber.Map{
		"attempt_id":         attempt.ID,
		"exam_title":         exam.Title,
		"total_marks":        exam.TotalMarks,
		"score":              result.Score,
		"percentage":         percentage,
		"pass_mark":          passMark,
		"pass_mark_percent":  exam.PassMarkPercent,
		"passed":             passed,
		"completed_at":       attempt.CompletedAt,
		"questions_answered": result.QuestionsAnswered,
		"questions_total":    result.QuestionsTotal,
		"questions_correct":  result.QuestionsCorrect,
	}
	if exam.AllowReview {
		data["review"] = fiber.Map{"questions": buildReview(questions, result)}
	}

	return ok(c, data)
}

type reviewOption struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	Text      string    `json:"text"`
	IsCorrect bool      `json:"is_correct"`
}

type questionReview struct {
	QuestionID       uuid.UUID      `json:"question_id"`
	QuestionNumber   int            `json:"question_number"`
	Prompt           string         `json:"prompt"`
	Marks            int            `json:"marks"`
	SelectedOptionID *uuid.UUID     `json:"selected_option_id"`
	CorrectOptionID  uuid.UUID      `json:"correct_option_id"`
	IsCorrect        bool           `json:"is_correct"`
	MarksEarned      int            `json:"marks_earned"`
	Explanation      string         `json:"explanation"`
	Options          []reviewOption `json:"options"`
}

// buildReview reveals correctness and explanations; callers must gate it on
// the exam's allow_review flag.
func buildReview(questions []models.Question, result services.GradeResult) []questionReview {
	reviews := make([]questionReview, len(questions))
	for i, q := range questions {
		graded := result.Answers[i]
		options := make([]reviewOption, len(q.Options))
		for j, o := range q.Options {
			options[j] = reviewOption{ID: o.ID, Label: o.Label, Text: o.Text, IsCorrect: o.IsCorrect}
		}
		reviews[i] = questionReview{
			QuestionID:       q.ID,
			QuestionNumber:   q.QuestionNumber,
			Prompt:           q.Prompt,
			Marks:            q.Marks,
			SelectedOptionID: graded.SelectedOptionID,
			CorrectOptionID:  graded.CorrectOptionID,
			IsCorrect:        graded.IsCorrect,
			MarksEarned:      graded.MarksEarned,
			Explanation:      q.Explanation,
			Options:          options,
		}
	}
	return reviews
}
