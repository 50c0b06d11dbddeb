package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-directory/internal/domain"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Session domain.Session
	Actor   domain.Actor
}

// SessionSource yields the stored current session, or nil when anonymous.
type SessionSource interface {
	Current(ctx context.Context) (*domain.Session, error)
}

// AuthMiddleware validates bearer tokens against the active session.
type AuthMiddleware struct {
	tokens   *TokenManager
	sessions SessionSource
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, sessions SessionSource) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	session, err := m.sessions.Current(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	if session == nil || session.ID != claims.SessionID || session.User.ID != claims.UserID {
		return apperrors.NewUnauthorized("session expired")
	}

	c.Locals(principalKey, &Principal{Session: *session, Actor: domain.ActorOf(session.User)})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
