package handlers

import (
	"github.com/gofiber/fiber/v2"

	"agrimarket/internal/auth"
	"agrimarket/internal/domain"
	applog "agrimarket/internal/log"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "token"

// ResolveIdentity verifies the session cookie on every request and, when
// valid, stores the identity in Locals. Invalid or absent tokens resolve to
// no identity; the guards below decide whether that matters.
func ResolveIdentity(tokens *auth.Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ident, ok := tokens.Verify(c.Cookies(SessionCookie)); ok {
			c.Locals("identity", ident)
		}
		return c.Next()
	}
}

func identityFrom(c *fiber.Ctx) *auth.Identity {
	ident, _ := c.Locals("identity").(*auth.Identity)
	return ident
}

// RequireAuth rejects unauthenticated requests with 401.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identityFrom(c) == nil {
			return jsonError(c, fiber.StatusUnauthorized, "Authentication required")
		}
		return c.Next()
	}
}

// RequireRole enforces authentication before authorization: a missing or
// invalid token is 401, a valid identity with the wrong role is 403.
func RequireRole(storageRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident := identityFrom(c)
		if ident == nil {
			return jsonError(c, fiber.StatusUnauthorized, "Authentication required")
		}
		if !ident.Is(storageRole) {
			applog.Security(c, "access.denied", map[string]any{
				"user_id": ident.ID, "need": domain.WireRole(storageRole), "have": ident.Role,
			})
			return jsonError(c, fiber.StatusForbidden, "Forbidden")
		}
		return c.Next()
	}
}
