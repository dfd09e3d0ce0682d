package auth

import (
	"strings"

	"building-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const CtxIdentityKey = "identity"

// reject ends the request with status and an empty body.
func reject(c *fiber.Ctx, status int) error {
	c.Status(status)
	return nil
}

// JWTMiddleware requires "Authorization: Bearer <token>". A missing token is
// 401, an invalid one 403. Both responses carry no body.
func JWTMiddleware(issuer *TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := bearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenStr == "" {
			return reject(c, fiber.StatusUnauthorized)
		}

		identity, err := issuer.Verify(tokenStr)
		if err != nil {
			return reject(c, fiber.StatusForbidden)
		}

		c.Locals(CtxIdentityKey, identity)
		return c.Next()
	}
}

// RequireRole must be registered after JWTMiddleware.
func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return reject(c, fiber.StatusForbidden)
		}

		for _, r := range allowedRoles {
			if r == identity.Role {
				return c.Next()
			}
		}
		return reject(c, fiber.StatusForbidden)
	}
}

func CurrentIdentity(c *fiber.Ctx) (*Identity, bool) {
	identity, ok := c.Locals(CtxIdentityKey).(*Identity)
	return identity, ok && identity != nil
}

// CurrentUserID is shaped for the request logger.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		return 0, false
	}
	return identity.UserID, true
}

// CanAccessUnit reports whether the caller may see data belonging to unitID.
// Admins see every unit, residents only their own.
func (i *Identity) CanAccessUnit(unitID uint) bool {
	if i.Role.IsAdmin() {
		return true
	}
	return i.UnitID != nil && *i.UnitID == unitID
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
