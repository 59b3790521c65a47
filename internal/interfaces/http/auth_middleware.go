package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/auth"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/dto"
)

// Locals key for the operator username in Fiber.
const LocalUsername = "username"

// AuthMiddleware validates the Bearer token against the active operator
// session and stores the username in c.Locals.
func AuthMiddleware(uc *auth.UseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header required"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "format: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "empty token"})
		}
		username, err := uc.Verify(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "invalid, expired or logged-out token"})
		}
		c.Locals(LocalUsername, username)
		return c.Next()
	}
}

// GetUsername returns the operator username from the context (after the auth
// middleware).
func GetUsername(c *fiber.Ctx) string {
	v := c.Locals(LocalUsername)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
