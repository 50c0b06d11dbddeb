package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-directory/internal/api/dto"
	"github.com/spec-kit/org-directory/internal/auth"
	"github.com/spec-kit/org-directory/internal/service"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// AuthHandler exposes login, logout and the current session.
type AuthHandler struct {
	sessions *service.SessionService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := dto.Decode(c.Body(), &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.sessions.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"session": dto.NewSessionResponse(result.Session),
			"auth":    dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "logged_out"}})
}

// Session handles GET /auth/session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(principal.Session)})
}
