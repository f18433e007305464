// Package metrics exposes Prometheus collectors for the accrual and
// reconciliation paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseConnectionsGauge tracks database pool state by connection state
	DatabaseConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "simpleprofit_db_connections",
			Help: "Database connections by state",
		},
		[]string{"state"},
	)

	// AccrualRunsTotal counts profit accrual passes by outcome
	AccrualRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simpleprofit_accrual_runs_total",
			Help: "Profit accrual passes by outcome",
		},
		[]string{"outcome"},
	)

	// AccrualDuration observes the duration of a full accrual pass
	AccrualDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "simpleprofit_accrual_duration_seconds",
			Help:    "Duration of a full profit accrual pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DataIntegrityAnomalies counts dangling references skipped during aggregation
	DataIntegrityAnomalies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "simpleprofit_data_integrity_anomalies_total",
			Help: "Dangling plan references skipped during profit aggregation",
		},
	)

	// BalanceMutationsTotal counts committed balance mutations by operation
	BalanceMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simpleprofit_balance_mutations_total",
			Help: "Committed balance mutations by operation",
		},
		[]string{"operation"},
	)

	// TransactionTransitionsTotal counts transaction status transitions
	TransactionTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simpleprofit_transaction_transitions_total",
			Help: "Transaction status transitions by type and result",
		},
		[]string{"type", "result"},
	)

	// EventsPublishedTotal counts change events published to the realtime channel
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simpleprofit_events_published_total",
			Help: "Change events published by event type",
		},
		[]string{"event"},
	)
)
