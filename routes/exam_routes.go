package routes

import (
	"github.com/examsoft/exam_portal/handlers"
	"github.com/examsoft/exam_portal/middleware"
	"github.com/gofiber/fiber/v2"
)

func ExamRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Admin authoring surface.
	admin := api.Group("/admin/exams", middleware.Protected(), middleware.AdminRequired())
	admin.Post("", handlers.CreateExam)
	admin.Get("", handlers.ListExams)
	admin.Get("/:examId", handlers.GetExam)
	admin.Put("/:examId", handlers.UpdateExam)
	admin.Delete("/:examId", handlers.DeleteExam)

	admin.Post("/:examId/questions", handlers.CreateQuestion)
	admin.Get("/:examId/questions", handlers.ListQuestions)

	questions := api.Group("/admin/questions", middleware.Protected(), middleware.AdminRequired())
	questions.Get("/:questionId", handlers.GetQuestion)
	questions.Put("/:questionId", handlers.UpdateQuestion)
	questions.Delete("/:questionId", handlers.DeleteQuestion)

	// Student exam-taking surface.
	exams := api.Group("/exams", middleware.Protected())
	exams.Get("", handlers.ListActiveExams)
	exams.Post("/:examId/start", handlers.StartExam)
	exams.Get("/:examId/leaderboard", handlers.GetLeaderboard)

	attempts := api.Group("/attempts", middleware.Protected())
	attempts.Post("/:attemptId/answers", handlers.SaveAnswer)
	attempts.Post("/:attemptId/submit", handlers.SubmitExam)
}
