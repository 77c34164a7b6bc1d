package handlers

import (
	"github.com/examsoft/exam_portal/database"
	"github.com/examsoft/exam_portal/middleware"
	"github.com/examsoft/exam_portal/models"
	"github.com/gofiber/fiber/v2"
)

type UpdateProfileRequest struct {
	FullName     *string `json:"full_name"`
	Organisation *string `json:"organisation"`
}

func GetProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "User not found")
	}

	return ok(c, user)
}

func UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "User not found")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "Cannot parse JSON")
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Organisation != nil {
		user.Organisation = req.Organisation
	}

	if err := database.DB.Save(&user).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to update profile")
	}
	profileCache.Delete(userID)

	return ok(c, user)
}

type attemptHistoryEntry struct {
	models.Attempt
	ExamTitle  string `json:"exam_title"`
	TotalMarks int    `json:"total_marks"`
}

// GetMyResults returns the student's attempt history, newest first.
func GetMyResults(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var attempts []models.Attempt
	if err := database.DB.Preload("Exam").
		Where("user_id = ?", userID).
		Order("started_at desc").
		Find(&attempts).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to load results")
	}

	history := make([]attemptHistoryEntry, len(attempts))
	for i, a := range attempts {
		history[i] = attemptHistoryEntry{
			Attempt:    a,
			ExamTitle:  a.Exam.Title,
			TotalMarks: a.Exam.TotalMarks,
		}
	}

	return ok(c, history)
}

func ListMyCertificates(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var certificates []models.Certificate
	database.DB.Where("user_id = ?", userID).Order("issued_at desc").Find(&certificates)

	return ok(c, certificates)
}
