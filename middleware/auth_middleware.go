package middleware

import (
	config "github.com/examsoft/exam_portal/configs"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.Config("JWT_SECRET")),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "error": "Missing or malformed JWT", "code": "UNAUTHORIZED"})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"success": false, "error": "Unauthorized - please log in", "code": "UNAUTHORIZED"})
}

// A well-signed token is not trusted to carry well-formed claims; absent or
// mistyped claims degrade to the zero value rather than panicking.
func tokenClaims(c *fiber.Ctx) jwt.MapClaims {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return jwt.MapClaims{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwt.MapClaims{}
	}
	return claims
}

func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := tokenClaims(c)["role"].(string)

		if role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false, "error": "Forbidden: Admin access required", "code": "FORBIDDEN",
			})
		}
		return c.Next()
	}
}

// UserID extracts the acting user's id from the verified JWT. A token
// without a parseable user_id claim yields uuid.Nil, which matches no row.
func UserID(c *fiber.Ctx) uuid.UUID {
	raw, _ := tokenClaims(c)["user_id"].(string)
	id, _ := uuid.Parse(raw)
	return id
}
