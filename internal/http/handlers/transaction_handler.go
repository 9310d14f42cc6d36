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

type TransactionHandler struct {
	Ledger *services.Ledger
}

func typeFilter(raw string) string {
	switch raw {
	case "in", "out":
		return raw
	default:
		return "all"
	}
}

func (h *TransactionHandler) page(c *fiber.Ctx, status int, filter, errMsg string) error {
	snap, err := h.Ledger.Snapshot(c.UserContext())
	if err != nil {
		applog.Error(c, "transactions.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "Could not load transactions")
	}
	c.Status(status)
	return render(c, "transactions", fiber.Map{
		"Transactions": domain.FilterTransactions(snap.Transactions, filter),
		"Pending":      domain.CountTx(snap.Transactions, domain.Pending),
		"Items":        snap.Items,
		"Filter":       filter,
		"Err":          errMsg,
		"Nav":          "transactions",
	})
}

// GET /transactions?type=all|in|out
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	return h.page(c, fiber.StatusOK, typeFilter(c.Query("type")), "")
}

// POST /transactions
func (h *TransactionHandler) Post(c *fiber.Ctx) error {
	s := currentSession(c)
	qty, ok := validate.Int(c.FormValue("quantity"))
	if !ok {
		qty = 0
	}
	in := services.PostInput{
		Item:        strings.TrimSpace(c.FormValue("item")),
		Type:        domain.TxType(c.FormValue("type")),
		Quantity:    qty,
		PerformedBy: s.Name,
		Notes:       validate.Notes(c.FormValue("notes")),
		Role:        s.Role,
	}
	t, err := h.Ledger.PostTransaction(c.UserContext(), in)
	if errors.Is(err, services.ErrInvalidInput) {
		applog.Info(c, "transactions.post.invalid", map[string]any{"item": in.Item, "quantity": qty})
		return h.page(c, fiber.StatusBadRequest, "all", userMessage(err))
	}
	if err != nil {
		return err
	}
	applog.Audit(c, "transactions.post", map[string]any{"tx_id": t.ID, "item": t.Item, "type": string(t.Type), "quantity": t.Quantity})
	return c.Redirect("/transactions")
}

// POST /transactions/:id/verify
func (h *TransactionHandler) Verify(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "Transaction not found")
	}
	t, err := h.Ledger.VerifyTransaction(c.UserContext(), id, currentSession(c).Name)
	switch {
	case errors.Is(err, services.ErrTransactionNotFound):
		return fail(c, fiber.StatusNotFound, "Transaction not found")
	case errors.Is(err, services.ErrAlreadyVerified):
		applog.Info(c, "transactions.verify.repeat", map[string]any{"tx_id": id})
		return h.page(c, fiber.StatusConflict, "all", "Transaction #"+c.Params("id")+" is already verified")
	case err != nil:
		return err
	}
	applog.Audit(c, "transactions.verify", map[string]any{"tx_id": t.ID, "verified_by": t.Verifier()})
	return c.Redirect("/transactions")
}

// userMessage strips the sentinel prefix from a validation error.
func userMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, services.ErrInvalidInput.Error()+": "); i >= 0 {
		msg = msg[i+len(services.ErrInvalidInput.Error())+2:]
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
