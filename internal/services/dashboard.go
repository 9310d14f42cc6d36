package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"sparesledger/internal/domain"
)

type DashboardService struct {
	Ledger    *Ledger
	UnitValue decimal.Decimal
}

func NewDashboardService(l *Ledger, unitValue decimal.Decimal) *DashboardService {
	return &DashboardService{Ledger: l, UnitValue: unitValue}
}

type DayFlow struct {
	Day string `json:"day"`
	In  int    `json:"in"`
	Out int    `json:"out"`
	// Bar heights as a percentage of the busiest value in the week.
	InPct  int `json:"-"`
	OutPct int `json:"-"`
}

type CategoryShare struct {
	domain.CategoryTotal
	Percent int `json:"percent"`
}

type AdminDashboard struct {
	TotalQuantity    int                  `json:"totalQuantity"`
	LowStockCount    int                  `json:"lowStockCount"`
	InventoryValue   decimal.Decimal      `json:"inventoryValue"`
	TransactionCount int                  `json:"transactionCount"`
	Categories       []CategoryShare      `json:"categories"`
	LowStock         []domain.Item        `json:"lowStock"`
	Recent           []domain.Transaction `json:"recent"`
	Week             []DayFlow            `json:"week"`
}

type StoreKeeperDashboard struct {
	HandledToday  int                  `json:"handledToday"`
	Pending       int                  `json:"pending"`
	InboundTotal  int                  `json:"inboundTotal"`
	TodayActivity []domain.Transaction `json:"todayActivity"`
	LowStock      []domain.Item        `json:"lowStock"`
}

func (s *DashboardService) Admin(ctx context.Context) (AdminDashboard, error) {
	snap, err := s.Ledger.Snapshot(ctx)
	if err != nil {
		return AdminDashboard{}, err
	}
	return BuildAdminDashboard(snap, s.Ledger.now(), s.UnitValue), nil
}

func (s *DashboardService) StoreKeeper(ctx context.Context) (StoreKeeperDashboard, error) {
	snap, err := s.Ledger.Snapshot(ctx)
	if err != nil {
		return StoreKeeperDashboard{}, err
	}
	return BuildStoreKeeperDashboard(snap, s.Ledger.Today()), nil
}

// InventoryValue prices every unit on hand at unit. Negative stock
// subtracts.
func InventoryValue(items []domain.Item, unit decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func BuildAdminDashboard(snap Snapshot, now time.Time, unit decimal.Decimal) AdminDashboard {
	low := domain.LowStock(snap.Items)
	return AdminDashboard{
		TotalQuantity:    domain.TotalQuantity(snap.Items),
		LowStockCount:    len(low),
		InventoryValue:   InventoryValue(snap.Items, unit),
		TransactionCount: len(snap.Transactions),
		Categories:       shares(domain.CategoryBreakdown(snap.Items)),
		LowStock:         head(low, 3),
		Recent:           head(snap.Transactions, 4),
		Week:             WeekFlow(snap.Transactions, now),
	}
}

func BuildStoreKeeperDashboard(snap Snapshot, today string) StoreKeeperDashboard {
	todays := domain.FilterTx(snap.Transactions, domain.OnDate(today))
	return StoreKeeperDashboard{
		HandledToday:  domain.SumQuantity(todays, nil),
		Pending:       domain.CountTx(snap.Transactions, domain.Pending),
		InboundTotal:  domain.SumQuantity(snap.Transactions, domain.OfType(domain.TxIn)),
		TodayActivity: head(todays, 5),
		LowStock:      head(domain.LowStock(snap.Items), 3),
	}
}

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekFlow totals inbound and outbound quantities per day of the Monday
// to Sunday week containing now.
func WeekFlow(txs []domain.Transaction, now time.Time) []DayFlow {
	offset := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, time.UTC)

	days := make([]DayFlow, len(weekdays))
	index := make(map[string]int, len(weekdays))
	for i, name := range weekdays {
		days[i].Day = name
		index[monday.AddDate(0, 0, i).Format(time.DateOnly)] = i
	}
	for _, t := range txs {
		i, ok := index[t.Date]
		if !ok {
			continue
		}
		if t.Type == domain.TxIn {
			days[i].In += t.Quantity
		} else {
			days[i].Out += t.Quantity
		}
	}

	peak := 0
	for _, d := range days {
		peak = max(peak, d.In, d.Out)
	}
	if peak > 0 {
		for i := range days {
			days[i].InPct = days[i].In * 100 / peak
			days[i].OutPct = days[i].Out * 100 / peak
		}
	}
	return days
}

// shares is taken over positive totals only; a category below zero shows
// its quantity with a 0% bar.
func shares(totals []domain.CategoryTotal) []CategoryShare {
	sum := 0
	for _, c := range totals {
		sum += max(c.Quantity, 0)
	}
	out := make([]CategoryShare, 0, len(totals))
	for _, c := range totals {
		s := CategoryShare{CategoryTotal: c}
		if sum > 0 {
			s.Percent = max(c.Quantity, 0) * 100 / sum
		}
		out = append(out, s)
	}
	return out
}

func head[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
