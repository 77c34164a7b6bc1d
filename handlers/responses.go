package handlers

import "github.com/gofiber/fiber/v2"

// Stable error kinds exposed alongside the human-readable message so
// clients never have to match on message strings.
const (
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION"
	CodeAttemptLimit     = "ATTEMPT_LIMIT"
	CodeAlreadySubmitted = "ALREADY_SUBMITTED"
	CodeExpired          = "EXPIRED"
	CodeInternal         = "INTERNAL"
)

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": message, "code": code})
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}
