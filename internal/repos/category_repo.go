package repos

import "context"

type CategoryRepo struct{ q Queryer }

func NewCategoryRepo(q Queryer) *CategoryRepo { return &CategoryRepo{q: q} }

// List returns category names in the order they were registered.
func (r *CategoryRepo) List(ctx context.Context) ([]string, error) {
	out := []string{}
	err := r.q.SelectContext(ctx, &out, `SELECT name FROM categories ORDER BY rowid`)
	return out, err
}

// Ensure registers name if it is new.
func (r *CategoryRepo) Ensure(ctx context.Context, name string) error {
	_, err := r.q.ExecContext(ctx, `INSERT OR IGNORE INTO categories(name) VALUES (?)`, name)
	return err
}
