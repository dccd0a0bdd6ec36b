package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/golend/internal/domain"
	"github.com/iho/golend/internal/usecase"
	"github.com/iho/golend/internal/usecase/mocks"
)

// Reference figures used across the lending tests: 300,000 sats pledged at a
// sell rate of 9,000,000 cents per 100M sats is worth 27,000 cents, so a 60%
// loan allows 16,200 cents of debt.
const (
	testRate       = int64(9_000_000)
	testCollateral = int64(300_000)
	testMaxBorrow  = int64(16_200)
)

type lendingFixture struct {
	accRepo    *mocks.MockAccountRepository
	loanRepo   *mocks.MockLoanRepository
	opRepo     *mocks.MockOperationRepository
	outboxRepo *mocks.MockOutboxRepository
	oracle     *mocks.MockRateOracle
	uc         *usecase.LendingUseCase
}

func newLendingFixture() *lendingFixture {
	f := &lendingFixture{
		accRepo:    mocks.NewMockAccountRepository(),
		loanRepo:   mocks.NewMockLoanRepository(),
		opRepo:     mocks.NewMockOperationRepository(),
		outboxRepo: mocks.NewMockOutboxRepository(),
		oracle:     mocks.NewMockRateOracle(testRate),
	}
	f.uc = usecase.NewLendingUseCase(
		mocks.NewMockTransactionManager(),
		f.accRepo,
		f.loanRepo,
		f.opRepo,
		f.outboxRepo,
		f.oracle,
		mocks.NewMockIDGenerator(),
		usecase.DefaultLendingParams(),
		nil,
	)
	return f
}

func (f *lendingFixture) seedAccount(t *testing.T, id string, availableSats, availableCents int64) *domain.Account {
	t.Helper()
	acc := &domain.Account{
		ID:             id,
		AvailableSats:  availableSats,
		AvailableCents: availableCents,
		CreatedAt:      time.Now().UTC(),
	}
	if err := f.accRepo.Create(context.Background(), acc); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return acc
}

func TestLendingUseCase_DepositCollateral(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.DepositCollateralInput
		setup       func(*testing.T, *lendingFixture)
		expectError error
	}{
		{
			name:  "opens loan with default ltv",
			input: usecase.DepositCollateralInput{OwnerID: "acc-1", Sats: testCollateral},
			setup: func(t *testing.T, f *lendingFixture) {
				f.seedAccount(t, "acc-1", testCollateral, 0)
			},
		},
		{
			name:  "rejects insufficient crypto balance",
			input: usecase.DepositCollateralInput{OwnerID: "acc-1", Sats: testCollateral},
			setup: func(t *testing.T, f *lendingFixture) {
				f.seedAccount(t, "acc-1", testCollateral-1, 0)
			},
			expectError: domain.ErrInsufficientFunds,
		},
		{
			name:  "rejects second active loan",
			input: usecase.DepositCollateralInput{OwnerID: "acc-1", Sats: 1000},
			setup: func(t *testing.T, f *lendingFixture) {
				f.seedAccount(t, "acc-1", testCollateral, 0)
				f.loanRepo.Create(context.Background(), nil, &domain.Loan{
					ID: "loan-existing", OwnerID: "acc-1", Status: domain.LoanStatusActive,
				})
			},
			expectError: domain.ErrLoanAlreadyActive,
		},
		{
			name:        "rejects zero amount",
			input:       usecase.DepositCollateralInput{OwnerID: "acc-1", Sats: 0},
			setup:       func(t *testing.T, f *lendingFixture) {},
			expectError: domain.ErrInvalidAmount,
		},
		{
			name:        "rejects ltv above cap",
			input:       usecase.DepositCollateralInput{OwnerID: "acc-1", Sats: 1000, LTVRatio: 95},
			setup:       func(t *testing.T, f *lendingFixture) {},
			expectError: domain.ErrInvalidLTVRatio,
		},
		{
			name:  "fails closed when rate unavailable",
			input: usecase.DepositCollateralInput{OwnerID: "acc-1", Sats: 1000},
			setup: func(t *testing.T, f *lendingFixture) {
				f.seedAccount(t, "acc-1", testCollateral, 0)
				f.oracle.SellFunc = func(ctx context.Context) (int64, error) {
					return 0, domain.ErrRateUnavailable
				}
			},
			expectError: domain.ErrRateUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLendingFixture()
			tt.setup(t, f)

			result, err := f.uc.DepositCollateral(context.Background(), tt.input)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected error %v, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.MaxBorrowable != testMaxBorrow {
				t.Errorf("max borrowable = %d, want %d", result.MaxBorrowable, testMaxBorrow)
			}
			if result.LiquidationPrice != 0 {
				t.Errorf("liquidation price = %d, want 0 with no debt", result.LiquidationPrice)
			}

			acc, _ := f.accRepo.GetByID(context.Background(), "acc-1")
			if acc.AvailableSats != 0 || acc.CollateralSats != testCollateral {
				t.Errorf("collateral not pledged: available=%d collateral=%d", acc.AvailableSats, acc.CollateralSats)
			}

			ops := f.opRepo.Recorded()
			if len(ops) != 1 || ops[0].Type != domain.OperationCollateralDeposit {
				t.Errorf("expected a single COLLATERAL_DEPOSIT operation, got %v", ops)
			}
		})
	}
}

func TestLendingUseCase_Borrow(t *testing.T) {
	openLoan := func(t *testing.T, f *lendingFixture) {
		t.Helper()
		f.seedAccount(t, "acc-1", testCollateral, 0)
		if _, err := f.uc.DepositCollateral(context.Background(), usecase.DepositCollateralInput{
			OwnerID: "acc-1", Sats: testCollateral,
		}); err != nil {
			t.Fatalf("open loan: %v", err)
		}
	}

	t.Run("borrow within capacity", func(t *testing.T) {
		f := newLendingFixture()
		openLoan(t, f)

		result, err := f.uc.Borrow(context.Background(), usecase.BorrowInput{OwnerID: "acc-1", Cents: 10_000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.NewBorrowedTotal != 10_000 {
			t.Errorf("borrowed total = %d, want 10000", result.NewBorrowedTotal)
		}
		if result.AvailableCapacity != testMaxBorrow-10_000 {
			t.Errorf("capacity = %d, want %d", result.AvailableCapacity, testMaxBorrow-10_000)
		}

		// 10,000 cents against 300,000 sats at 90% trips at a rate of
		// floor(10000 * 1e8 / (300000 * 0.9)).
		if result.LiquidationPrice != 3_703_703 {
			t.Errorf("liquidation price = %d, want 3703703", result.LiquidationPrice)
		}

		acc, _ := f.accRepo.GetByID(context.Background(), "acc-1")
		if acc.AvailableCents != 10_000 || acc.BorrowedCents != 10_000 {
			t.Errorf("borrow not credited: available=%d borrowed=%d", acc.AvailableCents, acc.BorrowedCents)
		}
	})

	t.Run("borrow up to the exact ceiling", func(t *testing.T) {
		f := newLendingFixture()
		openLoan(t, f)

		result, err := f.uc.Borrow(context.Background(), usecase.BorrowInput{OwnerID: "acc-1", Cents: testMaxBorrow})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.AvailableCapacity != 0 {
			t.Errorf("capacity = %d, want 0", result.AvailableCapacity)
		}
	})

	t.Run("reject borrow beyond capacity", func(t *testing.T) {
		f := newLendingFixture()
		openLoan(t, f)

		_, err := f.uc.Borrow(context.Background(), usecase.BorrowInput{OwnerID: "acc-1", Cents: testMaxBorrow + 1})
		if !errors.Is(err, domain.ErrInsufficientCapacity) {
			t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
		}
	})

	t.Run("reject borrow without active loan", func(t *testing.T) {
		f := newLendingFixture()
		f.seedAccount(t, "acc-1", 0, 0)

		_, err := f.uc.Borrow(context.Background(), usecase.BorrowInput{OwnerID: "acc-1", Cents: 100})
		if !errors.Is(err, domain.ErrNoActiveLoan) {
			t.Fatalf("expected ErrNoActiveLoan, got %v", err)
		}
	})

	t.Run("cumulative borrows respect the ceiling", func(t *testing.T) {
		f := newLendingFixture()
		openLoan(t, f)

		if _, err := f.uc.Borrow(context.Background(), usecase.BorrowInput{OwnerID: "acc-1", Cents: 10_000}); err != nil {
			t.Fatalf("first borrow: %v", err)
		}
		if _, err := f.uc.Borrow(context.Background(), usecase.BorrowInput{OwnerID: "acc-1", Cents: 6_200}); err != nil {
			t.Fatalf("second borrow: %v", err)
		}
		if _, err := f.uc.Borrow(context.Background(), usecase.BorrowInput{OwnerID: "acc-1", Cents: 1}); !errors.Is(err, domain.ErrInsufficientCapacity) {
			t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
		}
	})
}

func TestLendingUseCase_Repay(t *testing.T) {
	// Opens a loan and borrows 10,000 cents, leaving the account with extra
	// base currency to cover interest on payoff.
	setup := func(t *testing.T) *lendingFixture {
		t.Helper()
		f := newLendingFixture()
		f.seedAccount(t, "acc-1", testCollateral, 1_000)
		if _, err := f.uc.DepositCollateral(context.Background(), usecase.DepositCollateralInput{
			OwnerID: "acc-1", Sats: testCollateral,
		}); err != nil {
			t.Fatalf("open loan: %v", err)
		}
		if _, err := f.uc.Borrow(context.Background(), usecase.BorrowInput{OwnerID: "acc-1", Cents: 10_000}); err != nil {
			t.Fatalf("borrow: %v", err)
		}
		return f
	}

	t.Run("same-day payoff charges the 30-day minimum", func(t *testing.T) {
		f := setup(t)

		// 10,000 cents at 12% for the 30-day floor: round(10000*0.12*30/365).
		status, err := f.uc.GetStatus(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if status.MinimumInterestDue != 99 {
			t.Fatalf("minimum interest = %d, want 99", status.MinimumInterestDue)
		}
		if status.TotalDue != 10_099 {
			t.Fatalf("total due = %d, want 10099", status.TotalDue)
		}

		result, err := f.uc.Repay(context.Background(), usecase.RepayInput{OwnerID: "acc-1", Cents: 10_099})
		if err != nil {
			t.Fatalf("repay: %v", err)
		}
		if result.Status != domain.LoanStatusRepaid {
			t.Errorf("status = %s, want REPAID", result.Status)
		}
		if result.RemainingDebt != 0 {
			t.Errorf("remaining debt = %d, want 0", result.RemainingDebt)
		}
		if result.MinimumInterestApplied != 99 {
			t.Errorf("minimum interest applied = %d, want 99", result.MinimumInterestApplied)
		}
		if result.CollateralReturned != testCollateral {
			t.Errorf("collateral returned = %d, want %d", result.CollateralReturned, testCollateral)
		}

		acc, _ := f.accRepo.GetByID(context.Background(), "acc-1")
		if acc.CollateralSats != 0 || acc.AvailableSats != testCollateral {
			t.Errorf("collateral not released: available=%d collateral=%d", acc.AvailableSats, acc.CollateralSats)
		}
		if acc.BorrowedCents != 0 {
			t.Errorf("account still shows debt: %d", acc.BorrowedCents)
		}
		// Started with 1,000 spare, borrowed 10,000, paid 10,099.
		if acc.AvailableCents != 901 {
			t.Errorf("available cents = %d, want 901", acc.AvailableCents)
		}
	})

	t.Run("partial repayment keeps the loan open", func(t *testing.T) {
		f := setup(t)

		result, err := f.uc.Repay(context.Background(), usecase.RepayInput{OwnerID: "acc-1", Cents: 5_000})
		if err != nil {
			t.Fatalf("repay: %v", err)
		}
		if result.Status != domain.LoanStatusActive {
			t.Errorf("status = %s, want ACTIVE", result.Status)
		}
		if result.RemainingDebt != 5_000 {
			t.Errorf("remaining debt = %d, want 5000", result.RemainingDebt)
		}
		if result.CollateralReturned != 0 {
			t.Errorf("collateral returned = %d, want 0 on partial repay", result.CollateralReturned)
		}
	})

	t.Run("payment past the principal tops up the interest floor", func(t *testing.T) {
		f := setup(t)

		// 10,050 exceeds the 10,000 principal but not the 10,099 payoff; the
		// floor is accrued first so the balance cannot go negative.
		result, err := f.uc.Repay(context.Background(), usecase.RepayInput{OwnerID: "acc-1", Cents: 10_050})
		if err != nil {
			t.Fatalf("repay: %v", err)
		}
		if result.Status != domain.LoanStatusActive {
			t.Errorf("status = %s, want ACTIVE", result.Status)
		}
		if result.RemainingDebt != 49 {
			t.Errorf("remaining debt = %d, want 49", result.RemainingDebt)
		}
		if result.MinimumInterestApplied != 99 {
			t.Errorf("minimum interest applied = %d, want 99", result.MinimumInterestApplied)
		}
	})

	t.Run("repaying exactly the principal still accrues the floor", func(t *testing.T) {
		f := setup(t)

		// Paying the 10,000 principal on day 0 could zero the debt, so the
		// 99-cent floor is accrued first and the loan stays open owing it.
		result, err := f.uc.Repay(context.Background(), usecase.RepayInput{OwnerID: "acc-1", Cents: 10_000})
		if err != nil {
			t.Fatalf("repay: %v", err)
		}
		if result.Status != domain.LoanStatusActive {
			t.Errorf("status = %s, want ACTIVE", result.Status)
		}
		if result.RemainingDebt != 99 {
			t.Errorf("remaining debt = %d, want the 99-cent floor", result.RemainingDebt)
		}
		if result.MinimumInterestApplied != 99 {
			t.Errorf("minimum interest applied = %d, want 99", result.MinimumInterestApplied)
		}
		if result.CollateralReturned != 0 {
			t.Errorf("collateral returned = %d, want 0 while the floor is owed", result.CollateralReturned)
		}

		// Settling the quoted payoff closes the loan. The 99 cents left
		// over is outstanding principal, so it carries its own 1-cent floor.
		status, err := f.uc.GetStatus(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if status.TotalDue != 100 {
			t.Fatalf("total due = %d, want 100", status.TotalDue)
		}
		result, err = f.uc.Repay(context.Background(), usecase.RepayInput{OwnerID: "acc-1", Cents: status.TotalDue})
		if err != nil {
			t.Fatalf("settle payoff: %v", err)
		}
		if result.Status != domain.LoanStatusRepaid {
			t.Errorf("status = %s, want REPAID after settling the payoff", result.Status)
		}
		if result.CollateralReturned != testCollateral {
			t.Errorf("collateral returned = %d, want %d", result.CollateralReturned, testCollateral)
		}
	})

	t.Run("reject repayment above the payoff amount", func(t *testing.T) {
		f := setup(t)

		_, err := f.uc.Repay(context.Background(), usecase.RepayInput{OwnerID: "acc-1", Cents: 10_100})
		if !errors.Is(err, domain.ErrExceedsOutstandingDebt) {
			t.Fatalf("expected ErrExceedsOutstandingDebt, got %v", err)
		}
	})

	t.Run("reject repayment exceeding available funds", func(t *testing.T) {
		f := newLendingFixture()
		f.seedAccount(t, "acc-1", testCollateral, 0)
		if _, err := f.uc.DepositCollateral(context.Background(), usecase.DepositCollateralInput{
			OwnerID: "acc-1", Sats: testCollateral,
		}); err != nil {
			t.Fatalf("open loan: %v", err)
		}
		if _, err := f.uc.Borrow(context.Background(), usecase.BorrowInput{OwnerID: "acc-1", Cents: 10_000}); err != nil {
			t.Fatalf("borrow: %v", err)
		}

		// Full payoff needs 10,099 but the account only holds the borrowed
		// 10,000.
		_, err := f.uc.Repay(context.Background(), usecase.RepayInput{OwnerID: "acc-1", Cents: 10_099})
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("expected ErrInsufficientFunds, got %v", err)
		}
	})

	t.Run("second payoff finds no active loan", func(t *testing.T) {
		f := setup(t)

		if _, err := f.uc.Repay(context.Background(), usecase.RepayInput{OwnerID: "acc-1", Cents: 10_099}); err != nil {
			t.Fatalf("first payoff: %v", err)
		}
		_, err := f.uc.Repay(context.Background(), usecase.RepayInput{OwnerID: "acc-1", Cents: 10_099})
		if !errors.Is(err, domain.ErrNoActiveLoan) {
			t.Fatalf("expected ErrNoActiveLoan, got %v", err)
		}
	})

	t.Run("interest already accrued beyond the floor is charged in full", func(t *testing.T) {
		f := setup(t)

		// Simulate a loan held long enough that accrued interest exceeds the
		// 30-day floor.
		loan, err := f.loanRepo.GetActiveByOwner(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("loan lookup: %v", err)
		}
		loan.BorrowedCents += 500 // accrued by the daily job
		acc, _ := f.accRepo.GetByID(context.Background(), "acc-1")
		acc.ApplyInterest(500)
		acc.AvailableCents += 500

		result, err := f.uc.Repay(context.Background(), usecase.RepayInput{OwnerID: "acc-1", Cents: 10_500})
		if err != nil {
			t.Fatalf("repay: %v", err)
		}
		if result.Status != domain.LoanStatusRepaid {
			t.Errorf("status = %s, want REPAID", result.Status)
		}
		if result.MinimumInterestApplied != 0 {
			t.Errorf("minimum interest applied = %d, want 0 when accrual exceeds floor", result.MinimumInterestApplied)
		}
	})
}

func TestLendingUseCase_AddCollateral(t *testing.T) {
	f := newLendingFixture()
	f.seedAccount(t, "acc-1", 2*testCollateral, 0)
	if _, err := f.uc.DepositCollateral(context.Background(), usecase.DepositCollateralInput{
		OwnerID: "acc-1", Sats: testCollateral,
	}); err != nil {
		t.Fatalf("open loan: %v", err)
	}
	if _, err := f.uc.Borrow(context.Background(), usecase.BorrowInput{OwnerID: "acc-1", Cents: 10_000}); err != nil {
		t.Fatalf("borrow: %v", err)
	}

	before, err := f.uc.GetStatus(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	result, err := f.uc.AddCollateral(context.Background(), usecase.AddCollateralInput{OwnerID: "acc-1", Sats: testCollateral})
	if err != nil {
		t.Fatalf("add collateral: %v", err)
	}

	if result.NewTotalCollateral != 2*testCollateral {
		t.Errorf("total collateral = %d, want %d", result.NewTotalCollateral, 2*testCollateral)
	}
	if !result.NewLTV.LessThan(before.CurrentLTV) {
		t.Errorf("ltv did not drop: before=%s after=%s", before.CurrentLTV, result.NewLTV)
	}
	if result.LiquidationPrice >= before.LiquidationPrice {
		t.Errorf("liquidation price did not drop: before=%d after=%d", before.LiquidationPrice, result.LiquidationPrice)
	}
	if result.AvailableCapacity <= before.AvailableCapacity {
		t.Errorf("capacity did not grow: before=%d after=%d", before.AvailableCapacity, result.AvailableCapacity)
	}
}

func TestLendingUseCase_GetStatus(t *testing.T) {
	f := newLendingFixture()
	f.seedAccount(t, "acc-1", testCollateral, 0)

	if _, err := f.uc.GetStatus(context.Background(), "acc-1"); !errors.Is(err, domain.ErrNoActiveLoan) {
		t.Fatalf("expected ErrNoActiveLoan, got %v", err)
	}

	if _, err := f.uc.DepositCollateral(context.Background(), usecase.DepositCollateralInput{
		OwnerID: "acc-1", Sats: testCollateral,
	}); err != nil {
		t.Fatalf("open loan: %v", err)
	}
	if _, err := f.uc.Borrow(context.Background(), usecase.BorrowInput{OwnerID: "acc-1", Cents: 10_000}); err != nil {
		t.Fatalf("borrow: %v", err)
	}

	status, err := f.uc.GetStatus(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.BorrowedCents != 10_000 || status.PrincipalCents != 10_000 {
		t.Errorf("borrowed=%d principal=%d, want 10000/10000", status.BorrowedCents, status.PrincipalCents)
	}
	if status.RiskStatus != domain.RiskStatusSafe {
		t.Errorf("risk status = %s, want SAFE", status.RiskStatus)
	}
	// 10,000 / 27,000 value.
	if status.CurrentLTV.StringFixed(2) != "37.04" {
		t.Errorf("ltv = %s, want 37.04", status.CurrentLTV.StringFixed(2))
	}
}

func TestLendingUseCase_GetHistory(t *testing.T) {
	f := newLendingFixture()
	f.seedAccount(t, "acc-1", testCollateral, 1_000)
	if _, err := f.uc.DepositCollateral(context.Background(), usecase.DepositCollateralInput{
		OwnerID: "acc-1", Sats: testCollateral,
	}); err != nil {
		t.Fatalf("open loan: %v", err)
	}
	if _, err := f.uc.Borrow(context.Background(), usecase.BorrowInput{OwnerID: "acc-1", Cents: 10_000}); err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if _, err := f.uc.Repay(context.Background(), usecase.RepayInput{OwnerID: "acc-1", Cents: 10_099}); err != nil {
		t.Fatalf("repay: %v", err)
	}

	ops, err := f.uc.GetHistory(context.Background(), usecase.GetHistoryInput{OwnerID: "acc-1"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	// Deposit, borrow, the minimum-interest accrual, then the repayment.
	types := make([]domain.OperationType, 0, len(ops))
	for _, op := range ops {
		types = append(types, op.Type)
	}
	want := []domain.OperationType{
		domain.OperationCollateralDeposit,
		domain.OperationBorrow,
		domain.OperationInterestAccrual,
		domain.OperationRepay,
	}
	if len(types) != len(want) {
		t.Fatalf("operation types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("operation types = %v, want %v", types, want)
		}
	}
}
