package repos

import (
	"context"
	"database/sql"
	"errors"

	"sparesledger/internal/domain"
)

type ItemRepo struct{ q Queryer }

func NewItemRepo(q Queryer) *ItemRepo { return &ItemRepo{q: q} }

const itemColumns = `id, name, sku, category, quantity, min_stock, unit, last_restocked`

// List returns every item in insertion (id) order.
func (r *ItemRepo) List(ctx context.Context) ([]domain.Item, error) {
	rows := []domain.Item{}
	err := r.q.SelectContext(ctx, &rows, `SELECT `+itemColumns+` FROM items ORDER BY id`)
	return rows, err
}

func (r *ItemRepo) Get(ctx context.Context, id int64) (domain.Item, error) {
	var it domain.Item
	err := r.q.GetContext(ctx, &it, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, ErrNotFound
	}
	return it, err
}

// ByName returns the items whose name is exactly name, lowest id first.
func (r *ItemRepo) ByName(ctx context.Context, name string) ([]domain.Item, error) {
	rows := []domain.Item{}
	err := r.q.SelectContext(ctx, &rows, `SELECT `+itemColumns+` FROM items WHERE name = ? ORDER BY id`, name)
	return rows, err
}

// Insert stores it under a freshly allocated id and returns that id.
func (r *ItemRepo) Insert(ctx context.Context, it domain.Item) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO items(name, sku, category, quantity, min_stock, unit, last_restocked)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, it.Name, it.SKU, it.Category, it.Quantity, it.MinStock, it.Unit, it.LastRestocked)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update overwrites every column of the item with it.ID.
func (r *ItemRepo) Update(ctx context.Context, it domain.Item) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE items
		SET name = ?, sku = ?, category = ?, quantity = ?, min_stock = ?, unit = ?, last_restocked = ?
		WHERE id = ?
	`, it.Name, it.SKU, it.Category, it.Quantity, it.MinStock, it.Unit, it.LastRestocked, it.ID)
	return affected(res, err)
}

func (r *ItemRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	return affected(res, err)
}

// Adjust adds delta to the quantity. A non-empty restockedOn also moves
// last_restocked. No floor is applied.
func (r *ItemRepo) Adjust(ctx context.Context, id int64, delta int, restockedOn string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE items
		SET quantity = quantity + ?,
		    last_restocked = COALESCE(NULLIF(?, ''), last_restocked)
		WHERE id = ?
	`, delta, restockedOn, id)
	return affected(res, err)
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
