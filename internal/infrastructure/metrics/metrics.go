package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Ledger operation metrics
	DepositsRecorded    prometheus.Counter
	WithdrawalsRecorded prometheus.Counter
	TransfersRecorded   prometheus.Counter
	OperationErrors     *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
	OperationAmount     *prometheus.HistogramVec

	// Account metrics
	AccountsOpened prometheus.Counter

	// Cache metrics
	BalanceCacheHits   prometheus.Counter
	BalanceCacheMisses prometheus.Counter

	// Outbox metrics
	EventsPublished     prometheus.Counter
	EventPublishErrors  prometheus.Counter
	OutboxBacklog       prometheus.Gauge
	ConsistencyFailures prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		DepositsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_deposits_recorded_total",
			Help: "Total number of deposits recorded",
		}),
		WithdrawalsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_withdrawals_recorded_total",
			Help: "Total number of withdrawals recorded",
		}),
		TransfersRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_transfers_recorded_total",
			Help: "Total number of transfers recorded",
		}),
		OperationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_operation_errors_total",
				Help: "Total rejected ledger operations by operation and reason",
			},
			[]string{"operation", "reason"},
		),
		OperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankledger_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationAmount: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankledger_operation_amount",
				Help:    "Amounts moved by ledger operations",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"operation"},
		),
		AccountsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_accounts_opened_total",
			Help: "Total number of accounts opened",
		}),
		BalanceCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_balance_cache_hits_total",
			Help: "Balance reads served from cache",
		}),
		BalanceCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_balance_cache_misses_total",
			Help: "Balance reads that fell through to the store",
		}),
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_events_published_total",
			Help: "Outbox events delivered to the broker",
		}),
		EventPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_event_publish_errors_total",
			Help: "Outbox events that failed to publish",
		}),
		OutboxBacklog: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "bankledger_outbox_backlog",
			Help: "Unpublished events seen on the last poll",
		}),
		ConsistencyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_consistency_failures_total",
			Help: "Consistency checks where balances diverged from records",
		}),
	}
}
