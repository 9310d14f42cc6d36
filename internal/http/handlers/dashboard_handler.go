package handlers

import (
	applog "sparesledger/internal/log"
	"sparesledger/internal/services"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	Dash *services.DashboardService
}

// GET /
func (h *DashboardHandler) Home(c *fiber.Ctx) error {
	s := currentSession(c)
	if s.IsAdmin() {
		d, err := h.Dash.Admin(c.UserContext())
		if err != nil {
			applog.Error(c, "dashboard.admin.fail", err, nil)
			return fail(c, fiber.StatusInternalServerError, "Could not load the dashboard")
		}
		return render(c, "dashboard_admin", fiber.Map{"Dash": d, "Nav": "dashboard"})
	}

	d, err := h.Dash.StoreKeeper(c.UserContext())
	if err != nil {
		applog.Error(c, "dashboard.storekeeper.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "Could not load the dashboard")
	}
	return render(c, "dashboard_storekeeper", fiber.Map{
		"Dash":  d,
		"Nav":   "dashboard",
		"Today": h.Dash.Ledger.Today(),
	})
}
