package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/character-gallery/internal/domain"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

// RequireAuthenticated ensures a principal was resolved.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return errUnauthenticated()
		}
		return c.Next()
	}
}

// RequirePasswordFresh blocks accounts that still hold a temporary password.
func RequirePasswordFresh() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return errUnauthenticated()
		}
		if principal.MustChangePassword {
			return apperrors.NewForbidden("password change required")
		}
		return c.Next()
	}
}

// RequireAction ensures the principal's role grants action.
func RequireAction(action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		if err := Authorize(principal, action); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return errUnauthenticated()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return errForbidden()
		}
		return c.Next()
	}
}
