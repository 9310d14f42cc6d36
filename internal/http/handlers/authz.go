package handlers

import (
	"sparesledger/internal/domain"
	applog "sparesledger/internal/log"
	"sparesledger/internal/services"

	"github.com/gofiber/fiber/v2"
)

// LoadSession attaches the role picked by this browser, if any, for
// templates, logs and the gates below.
func LoadSession(roles *services.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if s, err := roles.Current(sid); err == nil && s != nil {
				c.Locals("session", s)
				c.Locals("role", string(s.Role))
			}
		}
		return c.Next()
	}
}

// RequireSession sends browsers that have not picked a role to the login
// screen.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentSession(c) == nil {
			return c.Redirect("/login")
		}
		return c.Next()
	}
}

// RequireRole hides controls meant for another role. It is a UI gate,
// not an access control boundary.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := currentSession(c)
		if s == nil {
			return c.Redirect("/login")
		}
		if s.Role != role {
			applog.Security(c, "access.denied.role", map[string]any{"want": string(role)})
			return fail(c, fiber.StatusForbidden, "This action is available to the "+role.Label()+" role only")
		}
		return c.Next()
	}
}
