package repos

import (
	"context"
	"database/sql"
	"errors"

	"sparesledger/internal/domain"
)

type TransactionRepo struct{ q Queryer }

func NewTransactionRepo(q Queryer) *TransactionRepo { return &TransactionRepo{q: q} }

// The display name follows the referenced item while it exists and falls
// back to the name recorded at posting time afterwards.
const txSelect = `
	SELECT
	  t.id, t.date,
	  COALESCE(i.name, t.item_name) AS item,
	  t.item_id,
	  CASE WHEN i.id IS NULL THEN 1 ELSE 0 END AS orphaned,
	  t.type, t.quantity, t.performed_by, t.notes,
	  t.verified_by, t.verification_date
	FROM transactions t
	LEFT JOIN items i ON i.id = t.item_id`

// List returns the log most recent first.
func (r *TransactionRepo) List(ctx context.Context) ([]domain.Transaction, error) {
	rows := []domain.Transaction{}
	err := r.q.SelectContext(ctx, &rows, txSelect+` ORDER BY t.id DESC`)
	return rows, err
}

func (r *TransactionRepo) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	var t domain.Transaction
	err := r.q.GetContext(ctx, &t, txSelect+` WHERE t.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Transaction{}, ErrNotFound
	}
	return t, err
}

// Insert records t (t.Item is stored as the posting-time name) and returns
// the allocated id.
func (r *TransactionRepo) Insert(ctx context.Context, t domain.Transaction) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO transactions
		  (date, item_id, item_name, type, quantity, performed_by, notes, verified_by, verification_date)
		VALUES
		  (?,    ?,       ?,         ?,    ?,        ?,            ?,     ?,           ?)
	`, t.Date, t.ItemID, t.Item, string(t.Type), t.Quantity, t.PerformedBy, t.Notes, t.VerifiedBy, t.VerificationDate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SetVerification stamps the verifier pair on one transaction.
func (r *TransactionRepo) SetVerification(ctx context.Context, id int64, by, on string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE transactions SET verified_by = ?, verification_date = ? WHERE id = ?
	`, by, on, id)
	return affected(res, err)
}
