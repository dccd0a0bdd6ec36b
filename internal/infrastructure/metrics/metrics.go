package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Loan lifecycle metrics
	LoansOpened prometheus.Counter
	LoansClosed *prometheus.CounterVec

	// Borrow metrics
	Borrows      prometheus.Counter
	BorrowAmount prometheus.Histogram

	// Repayment metrics
	Repayments prometheus.Counter

	// Collateral metrics
	CollateralAdded prometheus.Counter

	// Liquidation metrics
	LiquidationWarnings   prometheus.Counter
	Liquidations          *prometheus.CounterVec
	LiquidationShortfalls prometheus.Counter

	// Interest accrual metrics
	InterestAccrued prometheus.Counter
	AccrualRuns     prometheus.Counter

	// Risk sweep metrics
	RiskSweeps        prometheus.Counter
	RiskSweepDuration prometheus.Histogram

	// Account metrics
	AccountsCreated prometheus.Counter

	// Outbox metrics
	EventsPublished prometheus.Counter

	// Database metrics
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Loan lifecycle metrics
		LoansOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "golend_loans_opened_total",
			Help: "Total number of loans opened by collateral deposit",
		}),
		LoansClosed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "golend_loans_closed_total",
				Help: "Total number of loans closed by terminal status",
			},
			[]string{"status"},
		),

		// Borrow metrics
		Borrows: promauto.NewCounter(prometheus.CounterOpts{
			Name: "golend_borrows_total",
			Help: "Total number of borrow operations",
		}),
		BorrowAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "golend_borrow_amount_cents",
			Help:    "Borrowed amounts in cents",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		}),

		// Repayment metrics
		Repayments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "golend_repayments_total",
			Help: "Total number of repayment operations",
		}),

		// Collateral metrics
		CollateralAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "golend_collateral_additions_total",
			Help: "Total number of collateral top-up operations",
		}),

		// Liquidation metrics
		LiquidationWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "golend_liquidation_warnings_total",
			Help: "Total number of liquidation warnings emitted",
		}),
		Liquidations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "golend_liquidations_total",
				Help: "Total number of liquidations by outcome",
			},
			[]string{"outcome"},
		),
		LiquidationShortfalls: promauto.NewCounter(prometheus.CounterOpts{
			Name: "golend_liquidation_shortfalls_total",
			Help: "Total number of liquidations that left unrecoverable debt",
		}),

		// Interest accrual metrics
		InterestAccrued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "golend_interest_accrued_cents_total",
			Help: "Total interest charged across all loans, in cents",
		}),
		AccrualRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "golend_accrual_runs_total",
			Help: "Total number of interest accrual passes",
		}),

		// Risk sweep metrics
		RiskSweeps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "golend_risk_sweeps_total",
			Help: "Total number of risk monitor sweeps",
		}),
		RiskSweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "golend_risk_sweep_duration_seconds",
			Help:    "Duration of risk monitor sweeps",
			Buckets: prometheus.DefBuckets,
		}),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "golend_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		// Outbox metrics
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "golend_events_published_total",
			Help: "Total number of outbox events published",
		}),

		// Database metrics
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "golend_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "golend_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),
	}
}
