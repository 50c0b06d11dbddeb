package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-directory/internal/domain"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// RequireRole ensures the principal holds one of the allowed roles. The lifecycle
// services still run the full policy; this only short-circuits obvious denials.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Actor.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return RequireRole()
}
