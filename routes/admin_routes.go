package routes

import (
	"github.com/examsoft/exam_portal/handlers"
	"github.com/examsoft/exam_portal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	users := admin.Group("/users")
	users.Get("", handlers.GetAllUsers)
	users.Put("/:userId/status", handlers.ToggleUserStatus)

	results := admin.Group("/results")
	results.Get("", handlers.AdminListAttempts)
	results.Get("/:attemptId", handlers.AdminGetAttempt)

	admin.Get("/upload-signature", handlers.GenerateUploadSignature)

	// Live submissions feed; auth happens in-band on the socket.
	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(handlers.ServeFeed))
}
