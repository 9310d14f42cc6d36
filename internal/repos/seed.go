package repos

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/jmoiron/sqlx"

	applog "sparesledger/internal/log"
)

//go:embed seed.toml
var seedTOML string

type seedItem struct {
	ID            int64  `toml:"id"`
	Name          string `toml:"name"`
	SKU           string `toml:"sku"`
	Category      string `toml:"category"`
	Quantity      int    `toml:"quantity"`
	MinStock      int    `toml:"min_stock"`
	Unit          string `toml:"unit"`
	LastRestocked string `toml:"last_restocked"`
}

type seedTx struct {
	ID               int64  `toml:"id"`
	Date             string `toml:"date"`
	Item             string `toml:"item"`
	Type             string `toml:"type"`
	Quantity         int    `toml:"quantity"`
	PerformedBy      string `toml:"performed_by"`
	Notes            string `toml:"notes"`
	VerifiedBy       string `toml:"verified_by"`
	VerificationDate string `toml:"verification_date"`
}

type seedData struct {
	Categories   []string   `toml:"categories"`
	Items        []seedItem `toml:"items"`
	Transactions []seedTx   `toml:"transactions"`
}

func loadSeed() (seedData, error) {
	var s seedData
	if _, err := toml.Decode(seedTOML, &s); err != nil {
		return seedData{}, fmt.Errorf("decoding seed: %w", err)
	}
	return s, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// seedIfEmpty loads the sample warehouse into a store with no items and
// no transactions.
func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT (SELECT COUNT(*) FROM items) + (SELECT COUNT(*) FROM transactions)`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	s, err := loadSeed()
	if err != nil {
		return err
	}

	applog.Logger.Info().
		Int("items", len(s.Items)).
		Int("transactions", len(s.Transactions)).
		Msg("seeding sample warehouse")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range s.Categories {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO categories(name) VALUES (?)`, c); err != nil {
			return err
		}
	}
	for _, it := range s.Items {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO categories(name) VALUES (?)`, it.Category); err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO items(id, name, sku, category, quantity, min_stock, unit, last_restocked)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, it.ID, it.Name, it.SKU, it.Category, it.Quantity, it.MinStock, it.Unit, it.LastRestocked); err != nil {
			return fmt.Errorf("seeding item %d: %w", it.ID, err)
		}
	}
	for _, t := range s.Transactions {
		if _, err := tx.Exec(`
			INSERT INTO transactions(id, date, item_id, item_name, type, quantity, performed_by, notes, verified_by, verification_date)
			VALUES (?, ?, (SELECT MIN(id) FROM items WHERE name = ?), ?, ?, ?, ?, ?, ?, ?)
		`, t.ID, t.Date, t.Item, t.Item, t.Type, t.Quantity, t.PerformedBy, t.Notes,
			nullIfEmpty(t.VerifiedBy), nullIfEmpty(t.VerificationDate)); err != nil {
			return fmt.Errorf("seeding transaction %d: %w", t.ID, err)
		}
	}
	return tx.Commit()
}
