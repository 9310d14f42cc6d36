package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"sparesledger/internal/domain"
	applog "sparesledger/internal/log"
	"sparesledger/internal/services"
	"sparesledger/internal/validate"
)

type InventoryHandler struct {
	Ledger *services.Ledger
}

// GET /inventory?q=
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	items, err := h.Ledger.Items(c.UserContext())
	if err != nil {
		applog.Error(c, "inventory.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "Could not load inventory")
	}

	raw := c.Query("q")
	q, ok := validate.Q(raw)
	if raw != "" && !ok {
		applog.Security(c, "inventory.search.reject", map[string]any{"q_len": len(raw)})
		q = ""
	}
	if q != "" {
		items = domain.SearchItems(items, q)
	}
	return render(c, "inventory", fiber.Map{"Items": items, "Q": q, "Nav": "inventory"})
}

// GET /inventory/new
func (h *InventoryHandler) NewForm(c *fiber.Ctx) error {
	return h.form(c, fiber.StatusOK, domain.Item{Category: domain.CategoryGears, MinStock: 10, Unit: "pcs"}, "")
}

// POST /inventory
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	f, errMsg := itemFieldsFromForm(c)
	if errMsg != "" {
		draft := domain.Item{}
		f.Apply(&draft)
		return h.form(c, fiber.StatusBadRequest, draft, errMsg)
	}
	it, err := h.Ledger.CreateItem(c.UserContext(), f)
	if err != nil {
		return err
	}
	applog.Audit(c, "inventory.create", map[string]any{"item_id": it.ID, "name": it.Name})
	return c.Redirect("/inventory")
}

// GET /inventory/:id/edit
func (h *InventoryHandler) EditForm(c *fiber.Ctx) error {
	it, ok, err := h.lookup(c)
	if !ok {
		return err
	}
	return h.form(c, fiber.StatusOK, it, "")
}

// POST /inventory/:id
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "Item not found")
	}
	f, errMsg := itemFieldsFromForm(c)
	if errMsg != "" {
		draft := domain.Item{ID: id}
		f.Apply(&draft)
		return h.form(c, fiber.StatusBadRequest, draft, errMsg)
	}
	_, err := h.Ledger.UpdateItem(c.UserContext(), id, f)
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		// The item went away while the form was open; nothing to update.
		applog.Info(c, "inventory.update.missing", map[string]any{"item_id": id})
	case err != nil:
		return err
	default:
		applog.Audit(c, "inventory.update", map[string]any{"item_id": id})
	}
	return c.Redirect("/inventory")
}

// GET /inventory/:id/delete asks for confirmation.
func (h *InventoryHandler) DeleteConfirm(c *fiber.Ctx) error {
	it, ok, err := h.lookup(c)
	if !ok {
		return err
	}
	return render(c, "item_delete", fiber.Map{"Item": it, "Nav": "inventory"})
}

// POST /inventory/:id/delete
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "Item not found")
	}
	if c.FormValue("confirm") != "yes" {
		applog.Info(c, "inventory.delete.declined", map[string]any{"item_id": id})
		return c.Redirect("/inventory")
	}
	it, err := h.Ledger.DeleteItem(c.UserContext(), id)
	if errors.Is(err, services.ErrItemNotFound) {
		return fail(c, fiber.StatusNotFound, "Item not found")
	}
	if err != nil {
		return err
	}
	applog.Audit(c, "inventory.delete", map[string]any{"item_id": id, "name": it.Name})
	return c.Redirect("/inventory")
}

func (h *InventoryHandler) lookup(c *fiber.Ctx) (domain.Item, bool, error) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return domain.Item{}, false, fail(c, fiber.StatusNotFound, "Item not found")
	}
	it, err := h.Ledger.Item(c.UserContext(), id)
	if errors.Is(err, services.ErrItemNotFound) {
		return domain.Item{}, false, fail(c, fiber.StatusNotFound, "Item not found")
	}
	if err != nil {
		return domain.Item{}, false, err
	}
	return it, true, nil
}

func (h *InventoryHandler) form(c *fiber.Ctx, status int, it domain.Item, errMsg string) error {
	cats, err := h.Ledger.Categories(c.UserContext())
	if err != nil {
		return err
	}
	c.Status(status)
	return render(c, "item_form", fiber.Map{
		"Item":       it,
		"Editing":    it.ID != 0,
		"Categories": cats,
		"Err":        errMsg,
		"Nav":        "inventory",
	})
}

// itemFieldsFromForm reads the fields present in the form. Blank numeric
// fields are left unset so the ledger defaults apply on create.
func itemFieldsFromForm(c *fiber.Ctx) (domain.ItemFields, string) {
	var f domain.ItemFields

	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return f, "Name must be 60 characters or fewer"
	}
	f.Name = &name

	sku, ok := validate.SKU(c.FormValue("sku"))
	if !ok {
		return f, "SKU may contain letters, digits, dots, dashes and slashes"
	}
	f.SKU = &sku

	if raw := c.FormValue("category"); strings.TrimSpace(raw) != "" {
		cat, ok := validate.Category(raw)
		if !ok {
			return f, "Category is too long"
		}
		f.Category = &cat
	}
	if raw := c.FormValue("unit"); strings.TrimSpace(raw) != "" {
		unit, ok := validate.Unit(raw)
		if !ok {
			return f, "Unit must be a short word such as pcs or kg"
		}
		f.Unit = &unit
	}
	if raw := c.FormValue("quantity"); strings.TrimSpace(raw) != "" {
		n, ok := validate.Int(raw)
		if !ok {
			return f, "Quantity must be a whole number"
		}
		f.Quantity = &n
	}
	if raw := c.FormValue("min_stock"); strings.TrimSpace(raw) != "" {
		n, ok := validate.Int(raw)
		if !ok || n < 0 {
			return f, "Minimum stock must be a whole number of zero or more"
		}
		f.MinStock = &n
	}
	if raw := c.FormValue("last_restocked"); strings.TrimSpace(raw) != "" {
		d, ok := validate.Date(raw)
		if !ok {
			return f, "Last restocked must be a date (YYYY-MM-DD)"
		}
		f.LastRestocked = &d
	}
	return f, ""
}
