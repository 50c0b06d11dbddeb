package dto

import (
	"time"

	"github.com/spec-kit/org-directory/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionResponse describes the active session.
type SessionResponse struct {
	ID        string       `json:"id"`
	User      UserResponse `json:"user"`
	StartedAt time.Time    `json:"started_at"`
}

// NewSessionResponse renders a session.
func NewSessionResponse(s domain.Session) SessionResponse {
	return SessionResponse{ID: s.ID, User: NewUserResponse(s.User), StartedAt: s.StartedAt}
}
