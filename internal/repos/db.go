package repos

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// Queryer is satisfied by both *sqlx.DB and *sqlx.Tx, so a repo can be
// bound to either.
type Queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Every new connection to ":memory:" is a fresh database; keep exactly
	// one open for the life of the process.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Categories (open set; rowid keeps insertion order)
CREATE TABLE IF NOT EXISTS categories(
  name TEXT PRIMARY KEY
);

-- Items. AUTOINCREMENT: ids are never handed out twice, even after delete.
CREATE TABLE IF NOT EXISTS items(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL DEFAULT '',
  sku TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  min_stock INTEGER NOT NULL DEFAULT 10,
  unit TEXT NOT NULL DEFAULT 'pcs',
  last_restocked TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_name ON items(name);

-- Transactions. item_id is resolved at posting time and deliberately has no
-- foreign key: deleting an item must leave its history untouched.
CREATE TABLE IF NOT EXISTS transactions(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  date TEXT NOT NULL,
  item_id INTEGER NULL,
  item_name TEXT NOT NULL,
  type TEXT NOT NULL CHECK (type IN ('in','out')),
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  performed_by TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  verified_by TEXT NULL,
  verification_date TEXT NULL,
  CHECK ((verified_by IS NULL) = (verification_date IS NULL))
);
CREATE INDEX IF NOT EXISTS idx_transactions_item ON transactions(item_id);

-- Role sessions (the sid cookie)
CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  role TEXT NOT NULL CHECK (role IN ('admin','storekeeper')),
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);
`
	_, err := db.Exec(schema)
	return err
}
