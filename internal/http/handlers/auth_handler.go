package handlers

import (
	"errors"
	"time"

	"sparesledger/internal/domain"
	"sparesledger/internal/log"
	"sparesledger/internal/services"
	"sparesledger/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Roles *services.RoleService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

func (h *AuthHandler) loginPage(c *fiber.Ctx, status int, errMsg string) error {
	return c.Status(status).Render("login", fiber.Map{
		"Err":             errMsg,
		"CSRFToken":       c.Cookies("csrf_"),
		"AdminName":       h.Roles.AdminName,
		"StoreKeeperName": h.Roles.StoreKeeperName,
	})
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	return render(c, "login", fiber.Map{
		"Err":             "",
		"CSRFToken":       tok,
		"AdminName":       h.Roles.AdminName,
		"StoreKeeperName": h.Roles.StoreKeeperName,
	})
}

// Login binds the picked role to the browser. There is no password.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	role := domain.Role(c.FormValue("role"))
	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		log.Security(c, "auth.role.fail", map[string]any{"reason": "bad_name"})
		return h.loginPage(c, fiber.StatusBadRequest, "Display name is too long")
	}

	sid := ensureSID(c)
	s, err := h.Roles.Pick(sid, role, name)
	if errors.Is(err, services.ErrUnknownRole) {
		log.Security(c, "auth.role.fail", map[string]any{"role": string(role)})
		return h.loginPage(c, fiber.StatusBadRequest, "Please choose a role")
	}
	if err != nil {
		return err
	}

	log.Audit(c, "auth.role.pick", map[string]any{"role": string(s.Role), "name": s.Name})
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Roles.Clear(sid)
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/login")
}
