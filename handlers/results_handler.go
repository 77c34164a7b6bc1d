package handlers

import (
	"math"
	"strconv"

	"github.com/examsoft/exam_portal/database"
	"github.com/examsoft/exam_portal/models"
	"github.com/examsoft/exam_portal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type attemptListEntry struct {
	models.Attempt
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
	ExamTitle    string `json:"exam_title"`
	TotalMarks   int    `json:"total_marks"`
}

func AdminListAttempts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Attempt{})
	countQuery := database.DB.Model(&models.Attempt{})

	if examID := c.Query("exam_id"); examID != "" {
		query = query.Where("exam_id = ?", examID)
		countQuery = countQuery.Where("exam_id = ?", examID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
		countQuery = countQuery.Where("status = ?", status)
	}

	var total int64
	countQuery.Count(&total)

	var attempts []models.Attempt
	if err := query.Preload("User").Preload("Exam").
		Order("started_at desc").
		Offset(offset).Limit(limit).
		Find(&attempts).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to list attempts")
	}

	entries := make([]attemptListEntry, len(attempts))
	for i, a := range attempts {
		entries[i] = attemptListEntry{
			Attempt:      a,
			StudentName:  a.User.FullName,
			StudentEmail: a.User.Email,
			ExamTitle:    a.Exam.Title,
			TotalMarks:   a.Exam.TotalMarks,
		}
	}

	return ok(c, fiber.Map{
		"attempts": entries,
		"meta": fiber.Map{
			"total_attempts": total,
			"total_pages":    int(math.Ceil(float64(total) / float64(limit))),
			"current_page":   page,
		},
	})
}

type answerDetail struct {
	QuestionID       uuid.UUID  `json:"question_id"`
	QuestionNumber   int        `json:"question_number"`
	Prompt           string     `json:"prompt"`
	Marks            int        `json:"marks"`
	SelectedOptionID *uuid.UUID `json:"selected_option_id"`
	IsCorrect        bool       `json:"is_correct"`
	MarksEarned      int        `json:"marks_earned"`
	Graded           bool       `json:"graded"`
}

// AdminGetAttempt is the privileged grading/reporting view: it reads other
// users' attempts, which the student-facing endpoints never do.
func AdminGetAttempt(c *fiber.Ctx) error {
	attemptID := c.Params("attemptId")

	var attempt models.Attempt
	if err := database.DB.Preload("User").Preload("Exam").
		First(&attempt, "id = ?", attemptID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Attempt not found")
	}

	var answers []models.AttemptAnswer
	if err := database.DB.Preload("Question").
		Where("attempt_id = ?", attempt.ID).
		Find(&answers).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to load answers")
	}

	details := make([]answerDetail, len(answers))
	for i, a := range answers {
		details[i] = answerDetail{
			QuestionID:       a.QuestionID,
			QuestionNumber:   a.Question.QuestionNumber,
			Prompt:           a.Question.Prompt,
			Marks:            a.Question.Marks,
			SelectedOptionID: a.SelectedOptionID,
			IsCorrect:        a.IsCorrect,
			MarksEarned:      a.MarksEarned,
			Graded:           a.Graded,
		}
	}

	return ok(c, fiber.Map{
		"attempt":       attempt,
		"student_name":  attempt.User.FullName,
		"student_email": attempt.User.Email,
		"exam_title":    attempt.Exam.Title,
		"total_marks":   attempt.Exam.TotalMarks,
		"answers":       details,
	})
}

func GetLeaderboard(c *fiber.Ctx) error {
	examID, err := uuid.Parse(c.Params("examId"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "exam_id is required")
	}

	var exam models.Exam
	if err := database.DB.First(&exam, "id = ? AND is_active = ?", examID, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fail(c, fiber.StatusBadRequest, CodeNotFound, "Exam not found or is not active")
		}
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to load exam")
	}

	entries, err := services.GetLeaderboard(c.Context(), examID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to retrieve leaderboard")
	}

	return ok(c, fiber.Map{
		"exam_id":    exam.ID,
		"exam_title": exam.Title,
		"entries":    entries,
	})
}
