package domain

import "strings"

// Built-in categories. Others are accepted and registered on first use.
const (
	CategoryGears    = "Gears"
	CategoryBearings = "Bearings"
	CategoryShafts   = "Shafts"
	CategoryOther    = "Other"
)

var DefaultCategories = []string{CategoryGears, CategoryBearings, CategoryShafts, CategoryOther}

type Item struct {
	ID            int64  `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	SKU           string `db:"sku" json:"sku"`
	Category      string `db:"category" json:"category"`
	Quantity      int    `db:"quantity" json:"quantity"`
	MinStock      int    `db:"min_stock" json:"minStock"`
	Unit          string `db:"unit" json:"unit"`
	LastRestocked string `db:"last_restocked" json:"lastRestocked"` // YYYY-MM-DD
}

// ItemFields is a partial item: nil fields are left to defaults on create
// and untouched on update.
type ItemFields struct {
	Name          *string
	SKU           *string
	Category      *string
	Quantity      *int
	MinStock      *int
	Unit          *string
	LastRestocked *string
}

// Apply shallow-merges the set fields into it.
func (f ItemFields) Apply(it *Item) {
	if f.Name != nil {
		it.Name = *f.Name
	}
	if f.SKU != nil {
		it.SKU = *f.SKU
	}
	if f.Category != nil {
		it.Category = *f.Category
	}
	if f.Quantity != nil {
		it.Quantity = *f.Quantity
	}
	if f.MinStock != nil {
		it.MinStock = *f.MinStock
	}
	if f.Unit != nil {
		it.Unit = *f.Unit
	}
	if f.LastRestocked != nil {
		it.LastRestocked = *f.LastRestocked
	}
}

type Status string

const (
	StatusCritical Status = "critical"
	StatusWarning  Status = "warning"
	StatusOK       Status = "ok"
)

func (s Status) Icon() string {
	switch s {
	case StatusCritical:
		return "🔴"
	case StatusWarning:
		return "🟡"
	default:
		return "🟢"
	}
}

func (it Item) IsLowStock() bool { return it.Quantity < it.MinStock }

// Status: critical below minStock, warning below 1.5 × minStock, ok otherwise.
func (it Item) Status() Status {
	switch {
	case it.Quantity < it.MinStock:
		return StatusCritical
	case 2*it.Quantity < 3*it.MinStock:
		return StatusWarning
	default:
		return StatusOK
	}
}

// Matches reports whether q is a case-insensitive substring of name or sku.
func (it Item) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Name), q) ||
		strings.Contains(strings.ToLower(it.SKU), q)
}
