package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sparesledger/internal/domain"
	applog "sparesledger/internal/log"
	"sparesledger/internal/metrics"
	"sparesledger/internal/repos"
)

var (
	// ErrInvalidInput wraps every validation failure; the wrapped message
	// is fit to show to the user.
	ErrInvalidInput        = errors.New("invalid input")
	ErrItemNotFound        = errors.New("item not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyVerified     = errors.New("transaction already verified")
)

// DefaultVerifier is used when VerifyTransaction gets a blank name.
const DefaultVerifier = "Admin User"

// Ledger owns the item and transaction collections. Mutations are
// serialized and each runs in a single SQL transaction, so a posted
// transaction and its stock adjustment are never observed apart.
type Ledger struct {
	db     *sqlx.DB
	mu     sync.RWMutex
	tracer trace.Tracer
	now    func() time.Time
}

type LedgerOption func(*Ledger)

// WithClock fixes the source of "today".
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

func WithTracerProvider(tp trace.TracerProvider) LedgerOption {
	return func(l *Ledger) { l.tracer = tp.Tracer("sparesledger/ledger") }
}

func NewLedger(db *sqlx.DB, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		db:     db,
		now:    time.Now,
		tracer: otel.Tracer("sparesledger/ledger"),
	}
	for _, o := range opts {
		o(l)
	}
	l.refreshLowStock(context.Background())
	return l
}

// Today is the posting date for new transactions, YYYY-MM-DD.
func (l *Ledger) Today() string { return l.now().Format(time.DateOnly) }

type store struct {
	items *repos.ItemRepo
	txs   *repos.TransactionRepo
	cats  *repos.CategoryRepo
}

func newStore(q repos.Queryer) store {
	return store{
		items: repos.NewItemRepo(q),
		txs:   repos.NewTransactionRepo(q),
		cats:  repos.NewCategoryRepo(q),
	}
}

func (l *Ledger) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return l.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// mutate runs fn against a transaction-bound store while holding the write
// lock. The low-stock gauge is refreshed after a successful commit and once
// when the ledger is built.
func (l *Ledger) mutate(ctx context.Context, fn func(ctx context.Context, s store) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, newStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	l.refreshLowStock(ctx)
	return nil
}

func (l *Ledger) refreshLowStock(ctx context.Context) {
	items, err := repos.NewItemRepo(l.db).List(ctx)
	if err != nil {
		applog.WarnCtx(ctx, "ledger.gauge.refresh", map[string]any{"error": err.Error()})
		return
	}
	metrics.LowStockItems.Set(float64(len(domain.LowStock(items))))
}

// ---------- Items ----------

// CreateItem appends a new item. Unset fields default to category Gears,
// quantity 0, minStock 10, unit "pcs" and lastRestocked today. Names and
// SKUs are not validated.
func (l *Ledger) CreateItem(ctx context.Context, f domain.ItemFields) (it domain.Item, err error) {
	ctx, span := l.start(ctx, "CreateItem")
	defer func() { finish(span, err) }()

	it = domain.Item{
		Category:      domain.CategoryGears,
		MinStock:      10,
		Unit:          "pcs",
		LastRestocked: l.Today(),
	}
	f.Apply(&it)

	err = l.mutate(ctx, func(ctx context.Context, s store) error {
		if err := s.cats.Ensure(ctx, it.Category); err != nil {
			return err
		}
		id, err := s.items.Insert(ctx, it)
		if err != nil {
			return err
		}
		it.ID = id
		return nil
	})
	if err != nil {
		return domain.Item{}, fmt.Errorf("creating item: %w", err)
	}

	span.SetAttributes(attribute.Int64("item.id", it.ID))
	metrics.ItemOps.WithLabelValues("create").Inc()
	applog.AuditCtx(ctx, "ledger.item.create", map[string]any{"item_id": it.ID, "name": it.Name, "quantity": it.Quantity})
	return it, nil
}

// UpdateItem merges the set fields of f into item id. An unknown id
// changes nothing and reports ErrItemNotFound.
func (l *Ledger) UpdateItem(ctx context.Context, id int64, f domain.ItemFields) (it domain.Item, err error) {
	ctx, span := l.start(ctx, "UpdateItem", attribute.Int64("item.id", id))
	defer func() { finish(span, err) }()

	err = l.mutate(ctx, func(ctx context.Context, s store) error {
		cur, err := s.items.Get(ctx, id)
		if err != nil {
			return err
		}
		f.Apply(&cur)
		if err := s.cats.Ensure(ctx, cur.Category); err != nil {
			return err
		}
		if err := s.items.Update(ctx, cur); err != nil {
			return err
		}
		it = cur
		return nil
	})
	if errors.Is(err, repos.ErrNotFound) {
		return domain.Item{}, ErrItemNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("updating item %d: %w", id, err)
	}

	metrics.ItemOps.WithLabelValues("update").Inc()
	applog.AuditCtx(ctx, "ledger.item.update", map[string]any{"item_id": id, "name": it.Name, "quantity": it.Quantity})
	return it, nil
}

// DeleteItem removes item id and returns it. Transactions that referenced
// it are kept as they are.
func (l *Ledger) DeleteItem(ctx context.Context, id int64) (it domain.Item, err error) {
	ctx, span := l.start(ctx, "DeleteItem", attribute.Int64("item.id", id))
	defer func() { finish(span, err) }()

	err = l.mutate(ctx, func(ctx context.Context, s store) error {
		cur, err := s.items.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.items.Delete(ctx, id); err != nil {
			return err
		}
		it = cur
		return nil
	})
	if errors.Is(err, repos.ErrNotFound) {
		return domain.Item{}, ErrItemNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("deleting item %d: %w", id, err)
	}

	metrics.ItemOps.WithLabelValues("delete").Inc()
	applog.AuditCtx(ctx, "ledger.item.delete", map[string]any{"item_id": id, "name": it.Name})
	return it, nil
}

// ---------- Transactions ----------

type PostInput struct {
	Item        string // item name, matched exactly
	Type        domain.TxType
	Quantity    int
	PerformedBy string
	Notes       string
	Role        domain.Role
}

func (in PostInput) validate() error {
	if strings.TrimSpace(in.Item) == "" {
		return fmt.Errorf("%w: please select an item", ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: type must be %q or %q", ErrInvalidInput, domain.TxIn, domain.TxOut)
	}
	return nil
}

// PostTransaction records a stock movement and applies it to every item
// of the same name: "in" adds and stamps lastRestocked, "out" subtracts
// with no floor. The transaction links to the lowest-id match. When no item has that name the transaction is still recorded.
// Admin postings are verified on the spot.
func (l *Ledger) PostTransaction(ctx context.Context, in PostInput) (t domain.Transaction, err error) {
	ctx, span := l.start(ctx, "PostTransaction",
		attribute.String("tx.item", in.Item),
		attribute.String("tx.type", string(in.Type)),
		attribute.Int("tx.quantity", in.Quantity),
		attribute.String("tx.role", string(in.Role)),
	)
	defer func() { finish(span, err) }()

	if err := in.validate(); err != nil {
		return domain.Transaction{}, err
	}

	today := l.Today()
	t = domain.Transaction{
		Date:        today,
		Item:        in.Item,
		Type:        in.Type,
		Quantity:    in.Quantity,
		PerformedBy: in.PerformedBy,
		Notes:       in.Notes,
	}
	if in.Role == domain.RoleAdmin {
		by, on := domain.AutoVerifier, today
		t.VerifiedBy, t.VerificationDate = &by, &on
	}

	var matches int
	err = l.mutate(ctx, func(ctx context.Context, s store) error {
		found, err := s.items.ByName(ctx, in.Item)
		if err != nil {
			return err
		}
		matches = len(found)
		restocked := ""
		if in.Type == domain.TxIn {
			restocked = today
		}
		for _, it := range found {
			if err := s.items.Adjust(ctx, it.ID, t.Signed(), restocked); err != nil {
				return err
			}
		}
		if matches > 0 {
			target := found[0].ID
			t.ItemID = &target
		}
		id, err := s.txs.Insert(ctx, t)
		if err != nil {
			return err
		}
		t.ID = id
		return nil
	})
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("posting transaction: %w", err)
	}
	t.Orphaned = t.ItemID == nil

	span.SetAttributes(attribute.Int64("tx.id", t.ID), attribute.Int("tx.matches", matches))
	switch {
	case matches == 0:
		metrics.UnmatchedTransactions.Inc()
		applog.WarnCtx(ctx, "ledger.reference.miss", map[string]any{"tx_id": t.ID, "item": in.Item})
	case matches > 1:
		applog.WarnCtx(ctx, "ledger.reference.ambiguous", map[string]any{"tx_id": t.ID, "item": in.Item, "matches": matches, "linked_to": *t.ItemID})
	}
	metrics.TransactionsPosted.WithLabelValues(string(t.Type), strconv.FormatBool(t.Verified())).Inc()
	applog.AuditCtx(ctx, "ledger.tx.post", map[string]any{
		"tx_id":    t.ID,
		"item":     t.Item,
		"type":     string(t.Type),
		"quantity": t.Quantity,
		"verified": t.Verified(),
	})
	return t, nil
}

// VerifyTransaction stamps verifier and today's date on transaction id.
// Verifying twice is refused with ErrAlreadyVerified.
func (l *Ledger) VerifyTransaction(ctx context.Context, id int64, verifier string) (t domain.Transaction, err error) {
	ctx, span := l.start(ctx, "VerifyTransaction", attribute.Int64("tx.id", id))
	defer func() { finish(span, err) }()

	if strings.TrimSpace(verifier) == "" {
		verifier = DefaultVerifier
	}
	err = l.mutate(ctx, func(ctx context.Context, s store) error {
		cur, err := s.txs.Get(ctx, id)
		if errors.Is(err, repos.ErrNotFound) {
			return ErrTransactionNotFound
		}
		if err != nil {
			return err
		}
		if cur.Verified() {
			return ErrAlreadyVerified
		}
		if err := s.txs.SetVerification(ctx, id, verifier, l.Today()); err != nil {
			return err
		}
		t, err = s.txs.Get(ctx, id)
		return err
	})
	if errors.Is(err, ErrTransactionNotFound) || errors.Is(err, ErrAlreadyVerified) {
		return domain.Transaction{}, err
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("verifying transaction %d: %w", id, err)
	}

	metrics.TransactionsVerified.Inc()
	applog.AuditCtx(ctx, "ledger.tx.verify", map[string]any{"tx_id": id, "verified_by": verifier})
	return t, nil
}

// ---------- Reads ----------

type Snapshot struct {
	Items        []domain.Item
	Transactions []domain.Transaction
}

// Snapshot reads both collections with no mutation in between.
func (l *Ledger) Snapshot(ctx context.Context) (Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := newStore(l.db)
	items, err := s.items.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing items: %w", err)
	}
	txs, err := s.txs.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing transactions: %w", err)
	}
	return Snapshot{Items: items, Transactions: txs}, nil
}

func (l *Ledger) Items(ctx context.Context) ([]domain.Item, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return repos.NewItemRepo(l.db).List(ctx)
}

func (l *Ledger) Item(ctx context.Context, id int64) (domain.Item, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	it, err := repos.NewItemRepo(l.db).Get(ctx, id)
	if errors.Is(err, repos.ErrNotFound) {
		return domain.Item{}, ErrItemNotFound
	}
	return it, err
}

func (l *Ledger) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return repos.NewTransactionRepo(l.db).List(ctx)
}

func (l *Ledger) Transaction(ctx context.Context, id int64) (domain.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, err := repos.NewTransactionRepo(l.db).Get(ctx, id)
	if errors.Is(err, repos.ErrNotFound) {
		return domain.Transaction{}, ErrTransactionNotFound
	}
	return t, err
}

// LowStock is recomputed from the current items on every call.
func (l *Ledger) LowStock(ctx context.Context) ([]domain.Item, error) {
	items, err := l.Items(ctx)
	if err != nil {
		return nil, err
	}
	return domain.LowStock(items), nil
}

func (l *Ledger) Categories(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return repos.NewCategoryRepo(l.db).List(ctx)
}
