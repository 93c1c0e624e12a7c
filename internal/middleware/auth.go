package middleware

import (
	"context"

	"github.com/eduflow/eduflow-server/internal/auth"
	"github.com/eduflow/eduflow-server/internal/models"
	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// PrincipalResolver is satisfied by *auth.Resolver.
type PrincipalResolver interface {
	Resolve(ctx context.Context, authHeader string, expected models.PrincipalKind) (auth.Principal, error)
}

type AuthMiddleware struct {
	resolver PrincipalResolver
}

func NewAuthMiddleware(resolver PrincipalResolver) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
	}
}

// Require resolves the bearer token into a live principal of the given kind and stores it
// on the request. Failures are returned as apperror values for the app's ErrorHandler.
func (m *AuthMiddleware) Require(kind models.PrincipalKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := m.resolver.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization), kind)
		if err != nil {
			return err
		}

		c.Locals(principalKey, principal)
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Next()
	}
}

func TenantAdminFrom(c *fiber.Ctx) (*auth.TenantAdmin, bool) {
	admin, ok := c.Locals(principalKey).(*auth.TenantAdmin)
	return admin, ok
}

func DeveloperFrom(c *fiber.Ctx) (*auth.Developer, bool) {
	dev, ok := c.Locals(principalKey).(*auth.Developer)
	return dev, ok
}
