package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/iho/golend/internal/infrastructure/metrics"
	"github.com/iho/golend/internal/usecase"
)

// AccrualJob drives the daily interest accrual. The pass itself is
// idempotent per calendar day, so the job can run more often than daily and
// restart safely mid-pass.
type AccrualJob struct {
	accrual  *usecase.AccrualUseCase
	logger   *slog.Logger
	metrics  *metrics.Metrics
	retrier  Retrier
	interval time.Duration
}

// AccrualJobConfig for AccrualJob.
type AccrualJobConfig struct {
	Accrual  *usecase.AccrualUseCase
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Retrier  Retrier
	Interval time.Duration
}

// NewAccrualJob creates a new AccrualJob.
func NewAccrualJob(cfg AccrualJobConfig) *AccrualJob {
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &AccrualJob{
		accrual:  cfg.Accrual,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		retrier:  cfg.Retrier,
		interval: cfg.Interval,
	}
}

// Start begins the accrual loop. It runs until the context is cancelled.
func (j *AccrualJob) Start(ctx context.Context) error {
	j.logger.Info("accrual job started", slog.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	// Run immediately on start so a restart never misses a day.
	j.runPass(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("accrual job shutting down")
			return ctx.Err()
		case <-ticker.C:
			j.runPass(ctx)
		}
	}
}

func (j *AccrualJob) runPass(ctx context.Context) {
	report, err := j.accrue(ctx)
	if err != nil {
		j.logger.Error("accrual pass aborted", slog.String("error", err.Error()))
		return
	}

	if j.metrics != nil {
		j.metrics.AccrualRuns.Inc()
	}

	if report.Accrued > 0 || report.Failed > 0 {
		j.logger.Info("accrual pass completed",
			slog.Int("processed", report.Processed),
			slog.Int("accrued", report.Accrued),
			slog.Int("skipped", report.Skipped),
			slog.Int("failed", report.Failed),
			slog.Int64("total_interest_cents", report.TotalInterestCents))
	}
}

func (j *AccrualJob) accrue(ctx context.Context) (*usecase.AccrualReport, error) {
	onError := func(loanID string, err error) {
		j.logger.Error("accrual failed",
			slog.String("loan_id", loanID),
			slog.String("error", err.Error()))
	}

	if j.retrier == nil {
		return j.accrual.AccrueAll(ctx, onError)
	}

	var report *usecase.AccrualReport
	err := j.retrier.Retry(ctx, func() error {
		var accrueErr error
		report, accrueErr = j.accrual.AccrueAll(ctx, onError)
		return accrueErr
	})
	return report, err
}
