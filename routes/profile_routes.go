package routes

import (
	"github.com/examsoft/exam_portal/handlers"
	"github.com/examsoft/exam_portal/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile/me", middleware.Protected())
	profile.Get("", handlers.GetProfile)
	profile.Put("", handlers.UpdateProfile)
	profile.Get("/results", handlers.GetMyResults)
	profile.Get("/certificates", handlers.ListMyCertificates)
}
