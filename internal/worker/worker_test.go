package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/golend/internal/domain"
	"github.com/iho/golend/internal/usecase"
	"github.com/iho/golend/internal/usecase/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedActiveLoan(t *testing.T, accRepo *mocks.MockAccountRepository, loanRepo *mocks.MockLoanRepository, borrowed, collateral int64) *domain.Loan {
	t.Helper()
	now := time.Now().UTC()

	acc := &domain.Account{
		ID:             "acc-1",
		CollateralSats: collateral,
		BorrowedCents:  borrowed,
		CreatedAt:      now,
	}
	if err := accRepo.Create(context.Background(), acc); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	loan := &domain.Loan{
		ID:             "loan-1",
		OwnerID:        "acc-1",
		CollateralSats: collateral,
		BorrowedCents:  borrowed,
		PrincipalCents: borrowed,
		LTVRatio:       60,
		InterestRate:   decimal.NewFromInt(12),
		Status:         domain.LoanStatusActive,
		CreatedAt:      now,
	}
	if err := loanRepo.Create(context.Background(), nil, loan); err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	return loan
}

func TestRiskMonitorLiquidatesOnTick(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	loanRepo := mocks.NewMockLoanRepository()
	opRepo := mocks.NewMockOperationRepository()

	// 16,200 cents against 18,000 cents of collateral value: 90% LTV.
	loan := seedActiveLoan(t, accRepo, loanRepo, 16_200, 300_000)

	liquidation := usecase.NewLiquidationUseCase(
		mocks.NewMockTransactionManager(),
		accRepo,
		loanRepo,
		opRepo,
		mocks.NewMockOutboxRepository(),
		mocks.NewMockRateOracle(6_000_000),
		mocks.NewMockIDGenerator(),
		usecase.DefaultLendingParams(),
		nil,
	)

	monitor := NewRiskMonitor(RiskMonitorConfig{
		Liquidation: liquidation,
		Logger:      discardLogger(),
		Interval:    10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- monitor.Start(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}

	if loan.BorrowedCents != 2_700 {
		t.Errorf("borrowed = %d, want 2700 after partial liquidation", loan.BorrowedCents)
	}
	if len(opRepo.Recorded()) != 1 {
		t.Errorf("expected exactly one liquidation operation, got %d", len(opRepo.Recorded()))
	}
}

type countingRetrier struct {
	calls int
}

func (r *countingRetrier) Retry(ctx context.Context, operation func() error) error {
	r.calls++
	return operation()
}

func TestRiskMonitorSweepsThroughRetrier(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	loanRepo := mocks.NewMockLoanRepository()
	seedActiveLoan(t, accRepo, loanRepo, 10_000, 300_000)

	liquidation := usecase.NewLiquidationUseCase(
		mocks.NewMockTransactionManager(),
		accRepo,
		loanRepo,
		mocks.NewMockOperationRepository(),
		mocks.NewMockOutboxRepository(),
		mocks.NewMockRateOracle(9_000_000),
		mocks.NewMockIDGenerator(),
		usecase.DefaultLendingParams(),
		nil,
	)

	retrier := &countingRetrier{}
	monitor := NewRiskMonitor(RiskMonitorConfig{
		Liquidation: liquidation,
		Logger:      discardLogger(),
		Retrier:     retrier,
		Interval:    time.Hour,
	})

	report, err := monitor.sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if retrier.calls != 1 {
		t.Errorf("retrier calls = %d, want 1", retrier.calls)
	}
	if report.Checked != 1 {
		t.Errorf("checked = %d, want 1", report.Checked)
	}
}

func TestAccrualJobChargesOncePerDay(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	loanRepo := mocks.NewMockLoanRepository()
	opRepo := mocks.NewMockOperationRepository()

	loan := seedActiveLoan(t, accRepo, loanRepo, 10_000, 300_000)

	accrual := usecase.NewAccrualUseCase(
		mocks.NewMockTransactionManager(),
		accRepo,
		loanRepo,
		opRepo,
		mocks.NewMockIDGenerator(),
		usecase.DefaultLendingParams(),
		nil,
	)

	job := NewAccrualJob(AccrualJobConfig{
		Accrual:  accrual,
		Logger:   discardLogger(),
		Interval: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- job.Start(ctx)
	}()

	// Several ticks elapse, but the calendar-day guard allows only one
	// charge.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("job did not stop after cancel")
	}

	if loan.BorrowedCents != 10_003 {
		t.Errorf("borrowed = %d, want 10003 after one day of interest", loan.BorrowedCents)
	}
	if len(opRepo.Recorded()) != 1 {
		t.Errorf("expected one accrual operation, got %d", len(opRepo.Recorded()))
	}
}
