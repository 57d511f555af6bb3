// middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const anonCookie = "anon_id"

// UserContextMiddleware extracts the user identity and roles forwarded by
// the Gateway. Campaign pages are open to visitors without an account, so a
// missing X-User-ID falls back to a stable anonymous identity kept in a
// cookie — short links still get issued per visitor.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		rolesStr := c.Get("X-User-Roles")

		anonymous := false
		if userID == "" {
			anonymous = true
			userID = c.Cookies(anonCookie)
			if userID == "" {
				userID = "anon-" + uuid.NewString()
				c.Cookie(&fiber.Cookie{
					Name:     anonCookie,
					Value:    userID,
					HTTPOnly: true,
				})
			}
		}

		var roles []string
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		c.Locals("user_id", userID)
		c.Locals("user_roles", roles)
		c.Locals("anonymous", anonymous)

		return c.Next()
	}
}

// RequireUser rejects requests that only carry an anonymous identity.
// Organizer writes (create campaign, prizes, actions) go through here.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if anon, ok := c.Locals("anonymous").(bool); ok && anon {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authenticated user required — request must come through gateway with auth context",
			})
		}
		return c.Next()
	}
}
