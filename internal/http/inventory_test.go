package handlers_test

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"sparesledger/internal/domain"
	"sparesledger/internal/services"
)

func TestInventoryCreateEditDelete(t *testing.T) {
	app, deps := newTestApp(t)
	b := newBrowser(t, app).as(deps, domain.RoleAdmin)
	ctx := t.Context()

	resp := b.post("/inventory", url.Values{"name": {"Spacer Ring"}, "sku": {"SR-10"}, "category": {"Other"}, "quantity": {"12"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("create: expected redirect, got %d", resp.StatusCode)
	}
	it, err := deps.Ledger.Item(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	// Blank fields take the ledger defaults.
	if it.Name != "Spacer Ring" || it.Quantity != 12 || it.MinStock != 10 || it.Unit != "pcs" || it.LastRestocked != "2025-02-03" {
		t.Fatalf("created = %+v", it)
	}

	if !strings.Contains(body(t, b.get("/inventory/7/edit")), `value="Spacer Ring"`) {
		t.Fatal("edit form not prefilled")
	}
	resp = b.post("/inventory/7", url.Values{"name": {"Spacer Ring"}, "sku": {"SR-10"}, "category": {"Other"}, "quantity": {"3"}, "min_stock": {"5"}, "unit": {"pcs"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("update: expected redirect, got %d", resp.StatusCode)
	}
	it, _ = deps.Ledger.Item(ctx, 7)
	if it.Quantity != 3 || it.MinStock != 5 {
		t.Fatalf("updated = %+v", it)
	}

	// Declining the confirmation keeps the item.
	if !strings.Contains(body(t, b.get("/inventory/7/delete")), "Delete Spacer Ring?") {
		t.Fatal("confirmation page missing")
	}
	b.post("/inventory/7/delete", url.Values{"confirm": {"no"}})
	if _, err := deps.Ledger.Item(ctx, 7); err != nil {
		t.Fatalf("declined delete removed the item: %v", err)
	}

	resp = b.post("/inventory/7/delete", url.Values{"confirm": {"yes"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("delete: expected redirect, got %d", resp.StatusCode)
	}
	if _, err := deps.Ledger.Item(ctx, 7); !errors.Is(err, services.ErrItemNotFound) {
		t.Fatalf("item still present: %v", err)
	}
	if resp := b.post("/inventory/7/delete", url.Values{"confirm": {"yes"}}); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestInventoryFormValidation(t *testing.T) {
	app, deps := newTestApp(t)
	b := newBrowser(t, app).as(deps, domain.RoleAdmin)

	resp := b.post("/inventory", url.Values{"name": {"Washer"}, "quantity": {"lots"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(body(t, resp), "Quantity must be a whole number") {
		t.Fatal("validation message missing")
	}
	items, _ := deps.Ledger.Items(t.Context())
	if len(items) != 6 {
		t.Fatalf("invalid form created an item: %d items", len(items))
	}
}

func TestInventoryUpdateUnknownIDIsNoop(t *testing.T) {
	app, deps := newTestApp(t)
	b := newBrowser(t, app).as(deps, domain.RoleAdmin)

	resp := b.post("/inventory/99", url.Values{"name": {"Ghost"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected silent redirect, got %d", resp.StatusCode)
	}
	items, _ := deps.Ledger.Items(t.Context())
	for _, it := range items {
		if it.Name == "Ghost" {
			t.Fatal("unknown id created an item")
		}
	}
	if resp := b.get("/inventory/99/edit"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("edit unknown: expected 404, got %d", resp.StatusCode)
	}
}

func TestInventorySearch(t *testing.T) {
	app, deps := newTestApp(t)
	b := newBrowser(t, app).as(deps, domain.RoleStoreKeeper)

	page := body(t, b.get("/inventory?q=bearing"))
	if !strings.Contains(page, "Bearing A12") || !strings.Contains(page, "Micro Bearing B5") || strings.Contains(page, "Aluminum Shaft") {
		t.Fatalf("search by name wrong: %s", page)
	}
	page = body(t, b.get("/inventory?q=ASH-AL"))
	if !strings.Contains(page, "Aluminum Shaft") || strings.Contains(page, "Bearing A12") {
		t.Fatal("search by sku wrong")
	}
	// A rejected query falls back to the full list.
	page = body(t, b.get("/inventory?q=%3Cscript%3E"))
	if !strings.Contains(page, "Gear Pusher T-200") || strings.Contains(page, "<script>") {
		t.Fatal("bad query not neutralised")
	}
}
