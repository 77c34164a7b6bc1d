package handlers

import (
	"github.com/examsoft/exam_portal/database"
	"github.com/examsoft/exam_portal/middleware"
	"github.com/examsoft/exam_portal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExamRequest struct {
	Title              string `json:"title" validate:"required"`
	Description        string `json:"description"`
	Instructions       string `json:"instructions"`
	DurationMinutes    int    `json:"duration_minutes" validate:"required,gt=0"`
	TotalMarks         int    `json:"total_marks" validate:"required,gt=0"`
	PassMarkPercent    int    `json:"pass_mark_percent" validate:"gte=0,lte=100"`
	MaxAttempts        *int   `json:"max_attempts" validate:"omitempty,gt=0"`
	RandomizeQuestions bool   `json:"randomize_questions"`
	AllowReview        bool   `json:"allow_review"`
	IsActive           bool   `json:"is_active"`
}

func CreateExam(c *fiber.Ctx) error {
	var req ExamRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, err.Error())
	}

	exam := models.Exam{
		Title:              req.Title,
		Description:        req.Description,
		Instructions:       req.Instructions,
		DurationMinutes:    req.DurationMinutes,
		TotalMarks:         req.TotalMarks,
		PassMarkPercent:    req.PassMarkPercent,
		MaxAttempts:        req.MaxAttempts,
		RandomizeQuestions: req.RandomizeQuestions,
		AllowReview:        req.AllowReview,
		IsActive:           req.IsActive,
		CreatedBy:          middleware.UserID(c),
	}

	if err := database.DB.Create(&exam).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to create exam")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": exam})
}

func ListExams(c *fiber.Ctx) error {
	var exams []models.Exam
	if err := database.DB.Order("created_at desc").Find(&exams).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to list exams")
	}
	return ok(c, exams)
}

func GetExam(c *fiber.Ctx) error {
	examID := c.Params("examId")
	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", examID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Exam not found")
	}
	return ok(c, exam)
}

func UpdateExam(c *fiber.Ctx) error {
	examID := c.Params("examId")
	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", examID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Exam not found")
	}

	var req ExamRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, err.Error())
	}

	exam.Title = req.Title
	exam.Description = req.Description
	exam.Instructions = req.Instructions
	exam.DurationMinutes = req.DurationMinutes
	exam.TotalMarks = req.TotalMarks
	exam.PassMarkPercent = req.PassMarkPercent
	exam.MaxAttempts = req.MaxAttempts
	exam.RandomizeQuestions = req.RandomizeQuestions
	exam.AllowReview = req.AllowReview
	exam.IsActive = req.IsActive

	if err := database.DB.Save(&exam).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to update exam")
	}

	return ok(c, exam)
}

func DeleteExam(c *fiber.Ctx) error {
	examID := c.Params("examId")

	var attemptCount int64
	database.DB.Model(&models.Attempt{}).Where("exam_id = ?", examID).Count(&attemptCount)
	if attemptCount > 0 {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "Cannot delete an exam that has attempts; deactivate it instead")
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var exam models.Exam
		if err := tx.First(&exam, "id = ?", examID).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id IN (?)",
			tx.Model(&models.Question{}).Select("id").Where("exam_id = ?", examID),
		).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", examID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&exam).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fail(c, fiber.StatusNotFound, CodeNotFound, "Exam not found")
		}
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to delete exam")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListActiveExams is the student-facing catalogue: public fields only.
func ListActiveExams(c *fiber.Ctx) error {
	var exams []models.Exam
	if err := database.DB.
		Select("id", "title", "description", "duration_minutes", "total_marks", "pass_mark_percent", "max_attempts", "allow_review", "created_at").
		Where("is_active = ?", true).
		Order("created_at desc").
		Find(&exams).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to list exams")
	}
	return ok(c, exams)
}

type OptionRequest struct {
	Label        string `json:"label" validate:"required"`
	Text         string `json:"text" validate:"required"`
	IsCorrect    bool   `json:"is_correct"`
	DisplayOrder int    `json:"display_order"`
}

type QuestionRequest struct {
	QuestionNumber int             `json:"question_number" validate:"required,gt=0"`
	Prompt         string          `json:"prompt" validate:"required"`
	Marks          int             `json:"marks" validate:"required,gt=0"`
	Explanation    string          `json:"explanation"`
	ImageURL       *string         `json:"image_url"`
	IsActive       bool            `json:"is_active"`
	Options        []OptionRequest `json:"options" validate:"required,min=2,dive"`
}

func (r QuestionRequest) correctCount() int {
	n := 0
	for _, o := range r.Options {
		if o.IsCorrect {
			n++
		}
	}
	return n
}

// Admin views expose the correctness flag the Option model deliberately
// never serializes.
type adminOption struct {
	ID           uuid.UUID `json:"id"`
	Label        string    `json:"label"`
	Text         string    `json:"text"`
	IsCorrect    bool      `json:"is_correct"`
	DisplayOrder int       `json:"display_order"`
}

type adminQuestion struct {
	ID             uuid.UUID     `json:"id"`
	ExamID         uuid.UUID     `json:"exam_id"`
	QuestionNumber int           `json:"question_number"`
	Prompt         string        `json:"prompt"`
	Marks          int           `json:"marks"`
	Explanation    string        `json:"explanation"`
	ImageURL       *string       `json:"image_url,omitempty"`
	IsActive       bool          `json:"is_active"`
	Options        []adminOption `json:"options"`
}

func toAdminQuestion(q models.Question) adminQuestion {
	options := make([]adminOption, len(q.Options))
	for i, o := range q.Options {
		options[i] = adminOption{ID: o.ID, Label: o.Label, Text: o.Text, IsCorrect: o.IsCorrect, DisplayOrder: o.DisplayOrder}
	}
	return adminQuestion{
		ID:             q.ID,
		ExamID:         q.ExamID,
		QuestionNumber: q.QuestionNumber,
		Prompt:         q.Prompt,
		Marks:          q.Marks,
		Explanation:    q.Explanation,
		ImageURL:       q.ImageURL,
		IsActive:       q.IsActive,
		Options:        options,
	}
}

func CreateQuestion(c *fiber.Ctx) error {
	examID, err := uuid.Parse(c.Params("examId"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "exam_id is required")
	}

	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", examID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Exam not found")
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, err.Error())
	}
	if req.correctCount() != 1 {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "Exactly one option must be marked correct")
	}

	var clash int64
	database.DB.Model(&models.Question{}).
		Where("exam_id = ? AND question_number = ?", examID, req.QuestionNumber).
		Count(&clash)
	if clash > 0 {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "Question number already used in this exam")
	}

	question := models.Question{
		ExamID:         examID,
		QuestionNumber: req.QuestionNumber,
		Prompt:         req.Prompt,
		Marks:          req.Marks,
		Explanation:    req.Explanation,
		ImageURL:       req.ImageURL,
		IsActive:       req.IsActive,
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		for _, o := range req.Options {
			option := models.Option{
				QuestionID:   question.ID,
				Label:        o.Label,
				Text:         o.Text,
				IsCorrect:    o.IsCorrect,
				DisplayOrder: o.DisplayOrder,
			}
			if err := tx.Create(&option).Error; err != nil {
				return err
			}
			question.Options = append(question.Options, option)
		}
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to create question")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": toAdminQuestion(question)})
}

func ListQuestions(c *fiber.Ctx) error {
	examID := c.Params("examId")

	var questions []models.Question
	if err := database.DB.
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("display_order") }).
		Where("exam_id = ?", examID).
		Order("question_number").
		Find(&questions).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to list questions")
	}

	formatted := make([]adminQuestion, len(questions))
	for i, q := range questions {
		formatted[i] = toAdminQuestion(q)
	}
	return ok(c, formatted)
}

func GetQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")
	var question models.Question
	if err := database.DB.
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("display_order") }).
		First(&question, "id = ?", questionID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Question not found")
	}
	return ok(c, toAdminQuestion(question))
}

func UpdateQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")
	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Question not found")
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, err.Error())
	}
	if req.correctCount() != 1 {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "Exactly one option must be marked correct")
	}

	var clash int64
	database.DB.Model(&models.Question{}).
		Where("exam_id = ? AND question_number = ? AND id <> ?", question.ExamID, req.QuestionNumber, question.ID).
		Count(&clash)
	if clash > 0 {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "Question number already used in this exam")
	}

	question.QuestionNumber = req.QuestionNumber
	question.Prompt = req.Prompt
	question.Marks = req.Marks
	question.Explanation = req.Explanation
	question.ImageURL = req.ImageURL
	question.IsActive = req.IsActive
	question.Options = nil

	// The option set is replaced wholesale; partial edits are not supported.
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&question).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		for _, o := range req.Options {
			option := models.Option{
				QuestionID:   question.ID,
				Label:        o.Label,
				Text:         o.Text,
				IsCorrect:    o.IsCorrect,
				DisplayOrder: o.DisplayOrder,
			}
			if err := tx.Create(&option).Error; err != nil {
				return err
			}
			question.Options = append(question.Options, option)
		}
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to update question")
	}

	return ok(c, toAdminQuestion(question))
}

func DeleteQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var question models.Question
		if err := tx.First(&question, "id = ?", questionID).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		return tx.Delete(&question).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fail(c, fiber.StatusNotFound, CodeNotFound, "Question not found")
		}
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to delete question")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
