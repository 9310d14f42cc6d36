package repos_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"sparesledger/internal/domain"
	"sparesledger/internal/repos"
)

func openSeeded(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSeedLoaded(t *testing.T) {
	db := openSeeded(t)
	ctx := context.Background()

	items, err := repos.NewItemRepo(db).List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 6 || items[0].Name != "Gear Pusher T-200" || items[5].ID != 6 {
		t.Fatalf("unexpected seed items: %+v", items)
	}
	txs, err := repos.NewTransactionRepo(db).List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 3 || txs[0].ID != 3 || txs[2].ID != 1 {
		t.Fatalf("transactions should be newest first: %+v", txs)
	}
	if txs[0].ItemID == nil || *txs[0].ItemID != 4 || txs[0].Orphaned {
		t.Fatalf("seed transaction not linked to Shaft Assembly: %+v", txs[0])
	}
	if txs[0].Verifier() != "Admin User" || txs[0].VerifiedOn() != "2025-01-19" {
		t.Fatalf("verification pair lost: %+v", txs[0])
	}
	cats, err := repos.NewCategoryRepo(db).List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 4 || cats[0] != "Gears" || cats[3] != "Other" {
		t.Fatalf("categories = %v", cats)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	// A file-backed store keeps its rows across OpenDB calls; seeding must
	// not duplicate them.
	dsn := t.TempDir() + "/ledger.db"
	db, err := repos.OpenDB(dsn)
	if err != nil {
		t.Fatal(err)
	}
	_ = db.Close()
	db, err = repos.OpenDB(dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM items`); err != nil {
		t.Fatal(err)
	}
	if n != 6 {
		t.Fatalf("want 6 items after reopen, got %d", n)
	}
}

func TestItemIDsNeverReused(t *testing.T) {
	db := openSeeded(t)
	ctx := context.Background()
	r := repos.NewItemRepo(db)

	if err := r.Delete(ctx, 6); err != nil {
		t.Fatal(err)
	}
	id, err := r.Insert(ctx, domain.Item{Name: "Spacer", Category: "Other", Unit: "pcs", LastRestocked: "2025-02-01"})
	if err != nil {
		t.Fatal(err)
	}
	if id != 7 {
		t.Fatalf("want id 7 after deleting 6, got %d", id)
	}
	if err := r.Delete(ctx, 6); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestAdjustAndOrphan(t *testing.T) {
	db := openSeeded(t)
	ctx := context.Background()
	items := repos.NewItemRepo(db)
	txs := repos.NewTransactionRepo(db)

	if err := items.Adjust(ctx, 5, -10, ""); err != nil {
		t.Fatal(err)
	}
	it, _ := items.Get(ctx, 5)
	if it.Quantity != -3 || it.LastRestocked != "2024-12-22" {
		t.Fatalf("outbound adjust = %+v", it)
	}
	if err := items.Adjust(ctx, 5, 4, "2025-02-02"); err != nil {
		t.Fatal(err)
	}
	it, _ = items.Get(ctx, 5)
	if it.Quantity != 1 || it.LastRestocked != "2025-02-02" {
		t.Fatalf("inbound adjust = %+v", it)
	}

	// Renaming shows the new name; deleting falls back to the recorded one.
	full, _ := items.Get(ctx, 4)
	full.Name = "Shaft Assembly v2"
	if err := items.Update(ctx, full); err != nil {
		t.Fatal(err)
	}
	got, _ := txs.Get(ctx, 3)
	if got.Item != "Shaft Assembly v2" {
		t.Fatalf("rename not reflected: %+v", got)
	}
	if err := items.Delete(ctx, 4); err != nil {
		t.Fatal(err)
	}
	got, _ = txs.Get(ctx, 3)
	if got.Item != "Shaft Assembly" || !got.Orphaned || got.Quantity != 30 {
		t.Fatalf("orphaned transaction = %+v", got)
	}

	if _, err := txs.Get(ctx, 99); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSessionBindGetUnbind(t *testing.T) {
	db := openSeeded(t)
	r := repos.NewSessionRepo(db)

	if err := r.Bind("sid-1", domain.RoleStoreKeeper, "Khalid"); err != nil {
		t.Fatal(err)
	}
	if err := r.Bind("sid-1", domain.RoleAdmin, "Admin User"); err != nil {
		t.Fatal(err)
	}
	s, err := r.Get("sid-1")
	if err != nil {
		t.Fatal(err)
	}
	if s.Role != domain.RoleAdmin || s.Name != "Admin User" {
		t.Fatalf("rebind lost: %+v", s)
	}
	if err := r.Unbind("sid-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get("sid-1"); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("want ErrNotFound after unbind, got %v", err)
	}
	if err := r.Bind("sid-2", domain.Role("root"), "x"); err == nil {
		t.Fatal("unknown role accepted by schema")
	}
}
