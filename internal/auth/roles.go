package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/nxsys/task-tracker/pkg/util/errorutil"
)

// RequireAdmin ensures the caller belongs to the rank-1 tier.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.User.IsAdmin() {
			return apperrors.NewForbidden("only senior executives can perform this action")
		}
		return c.Next()
	}
}
