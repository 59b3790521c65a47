package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/auth"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/dto"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain"
)

// AuthHandler handles operator login and logout.
type AuthHandler struct {
	uc *auth.UseCase
}

// NewAuthHandler builds the handler.
func NewAuthHandler(uc *auth.UseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	if in.Username == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "username and password are required"})
	}
	out, err := h.uc.Login(in)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "unauthorized credentials provided"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Logout POST /api/auth/logout (protected). Clears the active session; the
// presented token stops validating immediately.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.uc.Logout()
	return c.JSON(fiber.Map{"message": "session closed"})
}
