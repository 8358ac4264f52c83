package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nxsys/task-tracker/internal/domain"
	"github.com/nxsys/task-tracker/internal/repository"
	apperrors "github.com/nxsys/task-tracker/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User   *domain.User
	Claims *Claims
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes. The user is re-read on every request so
// rank changes apply immediately and tokens of deleted users stop working.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{User: user, Claims: claims})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal.User != nil
}
