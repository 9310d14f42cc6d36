package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sparesledger/internal/domain"
	"sparesledger/internal/services"
	"sparesledger/internal/validate"
)

// APIHandler serves read-only JSON views of the ledger under /api/v1.
type APIHandler struct {
	Ledger *services.Ledger
	Dash   *services.DashboardService
}

func (h *APIHandler) Items(c *fiber.Ctx) error {
	items, err := h.Ledger.Items(c.UserContext())
	if err != nil {
		return err
	}
	if raw := c.Query("q"); raw != "" {
		q, ok := validate.Q(raw)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid search query"})
		}
		items = domain.SearchItems(items, q)
	}
	return c.JSON(items)
}

func (h *APIHandler) Item(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item id"})
	}
	it, err := h.Ledger.Item(c.UserContext(), id)
	if errors.Is(err, services.ErrItemNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"item": it, "status": it.Status()})
}

func (h *APIHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.Ledger.LowStock(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (h *APIHandler) Transactions(c *fiber.Ctx) error {
	txs, err := h.Ledger.Transactions(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(domain.FilterTransactions(txs, typeFilter(c.Query("type"))))
}

// Summary is the admin dashboard's numbers.
func (h *APIHandler) Summary(c *fiber.Ctx) error {
	d, err := h.Dash.Admin(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(d)
}
