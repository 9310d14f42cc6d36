package domain

// Pure reads over the collections. Callers recompute them after every
// mutation; nothing here is cached.

func LowStock(items []Item) []Item {
	out := make([]Item, 0)
	for _, it := range items {
		if it.IsLowStock() {
			out = append(out, it)
		}
	}
	return out
}

func TotalQuantity(items []Item) int {
	sum := 0
	for _, it := range items {
		sum += it.Quantity
	}
	return sum
}

type CategoryTotal struct {
	Category string `json:"name"`
	Quantity int    `json:"value"`
}

// CategoryBreakdown sums quantities per category, in first-seen order.
func CategoryBreakdown(items []Item) []CategoryTotal {
	idx := map[string]int{}
	var out []CategoryTotal
	for _, it := range items {
		i, ok := idx[it.Category]
		if !ok {
			i = len(out)
			idx[it.Category] = i
			out = append(out, CategoryTotal{Category: it.Category})
		}
		out[i].Quantity += it.Quantity
	}
	return out
}

func SearchItems(items []Item, q string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Matches(q) {
			out = append(out, it)
		}
	}
	return out
}

// TxPredicate selects transactions for SumQuantity and FilterTx.
type TxPredicate func(Transaction) bool

func OnDate(day string) TxPredicate {
	return func(t Transaction) bool { return t.Date == day }
}

func OfType(typ TxType) TxPredicate {
	return func(t Transaction) bool { return t.Type == typ }
}

func Pending(t Transaction) bool { return !t.Verified() }

func SumQuantity(txs []Transaction, pred TxPredicate) int {
	sum := 0
	for _, t := range txs {
		if pred == nil || pred(t) {
			sum += t.Quantity
		}
	}
	return sum
}

func FilterTx(txs []Transaction, pred TxPredicate) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if pred == nil || pred(t) {
			out = append(out, t)
		}
	}
	return out
}

// FilterTransactions applies the log's type filter: "all", "in" or "out".
// Anything else is treated as "all".
func FilterTransactions(txs []Transaction, filter string) []Transaction {
	switch TxType(filter) {
	case TxIn, TxOut:
		return FilterTx(txs, OfType(TxType(filter)))
	default:
		return FilterTx(txs, nil)
	}
}

func CountTx(txs []Transaction, pred TxPredicate) int {
	n := 0
	for _, t := range txs {
		if pred == nil || pred(t) {
			n++
		}
	}
	return n
}
