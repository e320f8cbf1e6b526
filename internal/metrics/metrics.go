// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PurchasesCommitted counts successfully committed purchase requests.
	PurchasesCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depotvente_purchases_committed_total",
		Help: "Number of purchase requests committed.",
	})

	// PurchasesRejected counts rejected purchase requests by reason.
	PurchasesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depotvente_purchases_rejected_total",
		Help: "Number of purchase requests rejected, by reason.",
	}, []string{"reason"})

	// TransactionsRecorded counts committed per-item transactions.
	TransactionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depotvente_transactions_recorded_total",
		Help: "Number of per-item sale transactions recorded.",
	})

	// BatchWriteFailures counts record store batches that did not commit.
	BatchWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depotvente_batch_write_failures_total",
		Help: "Number of record store batch writes that failed to commit.",
	})

	// HTTPDuration observes request latency per route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depotvente_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
