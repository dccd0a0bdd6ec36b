package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iho/golend/internal/domain"
	"github.com/iho/golend/internal/infrastructure/metrics"
	"github.com/iho/golend/internal/usecase"
)

// Retrier retries an operation on transient failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// RiskMonitor periodically re-prices every open loan and triggers
// liquidations through the liquidation use case. One unhealthy loan never
// blocks the sweep, and the sweep is skipped entirely while the rate oracle
// is unavailable.
type RiskMonitor struct {
	liquidation *usecase.LiquidationUseCase
	logger      *slog.Logger
	metrics     *metrics.Metrics
	retrier     Retrier
	interval    time.Duration
}

// RiskMonitorConfig for RiskMonitor.
type RiskMonitorConfig struct {
	Liquidation *usecase.LiquidationUseCase
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Retrier     Retrier
	Interval    time.Duration
}

// NewRiskMonitor creates a new RiskMonitor.
func NewRiskMonitor(cfg RiskMonitorConfig) *RiskMonitor {
	if cfg.Interval == 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &RiskMonitor{
		liquidation: cfg.Liquidation,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		retrier:     cfg.Retrier,
		interval:    cfg.Interval,
	}
}

// Start begins the risk monitoring loop. It runs until the context is
// cancelled.
func (m *RiskMonitor) Start(ctx context.Context) error {
	m.logger.Info("risk monitor started", slog.Duration("interval", m.interval))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Sweep immediately on start
	m.runSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("risk monitor shutting down")
			return ctx.Err()
		case <-ticker.C:
			m.runSweep(ctx)
		}
	}
}

func (m *RiskMonitor) runSweep(ctx context.Context) {
	report, err := m.sweep(ctx)
	if err != nil {
		m.logger.Error("risk sweep aborted", slog.String("error", err.Error()))
		return
	}

	if m.metrics != nil {
		m.metrics.RiskSweeps.Inc()
		m.metrics.RiskSweepDuration.Observe(report.CompletedAt.Sub(report.StartedAt).Seconds())
	}

	if report.Warned+report.Partial+report.Full+report.Failed > 0 {
		m.logger.Info("risk sweep completed",
			slog.Int("checked", report.Checked),
			slog.Int("warned", report.Warned),
			slog.Int("partial", report.Partial),
			slog.Int("full", report.Full),
			slog.Int("failed", report.Failed))
	}
}

// sweep runs one pass, retrying through the configured retrier so a
// transient database failure does not cost a whole interval.
func (m *RiskMonitor) sweep(ctx context.Context) (*usecase.SweepReport, error) {
	onError := func(loanID string, err error) {
		if errors.Is(err, domain.ErrRateUnavailable) {
			return
		}
		m.logger.Error("risk check failed",
			slog.String("loan_id", loanID),
			slog.String("error", err.Error()))
	}

	if m.retrier == nil {
		return m.liquidation.Sweep(ctx, onError)
	}

	var report *usecase.SweepReport
	err := m.retrier.Retry(ctx, func() error {
		var sweepErr error
		report, sweepErr = m.liquidation.Sweep(ctx, onError)
		return sweepErr
	})
	return report, err
}
