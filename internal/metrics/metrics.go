// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	TransactionsPosted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparesledger_transactions_posted_total",
			Help: "Transactions recorded by the ledger",
		},
		[]string{"type", "verified"},
	)

	UnmatchedTransactions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sparesledger_unmatched_transactions_total",
			Help: "Transactions whose item name matched no inventory item",
		},
	)

	TransactionsVerified = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sparesledger_transactions_verified_total",
			Help: "Transactions verified by an admin",
		},
	)

	ItemOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparesledger_item_operations_total",
			Help: "Item create/update/delete operations",
		},
		[]string{"op"},
	)

	LowStockItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sparesledger_low_stock_items",
			Help: "Items currently below their minimum stock",
		},
	)

	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sparesledger_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		TransactionsPosted,
		UnmatchedTransactions,
		TransactionsVerified,
		ItemOps,
		LowStockItems,
		RequestLatency,
	)
}
