package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/golend/internal/domain"
	"github.com/iho/golend/internal/infrastructure/metrics"
)

// LendingUseCase implements the synchronous lending operations: deposit
// collateral, borrow, repay, add collateral, status and history reads.
//
// Every mutating operation runs in a single transaction that locks the
// account row first and the loan row second. All use cases touching a loan
// follow the same lock order, so a repayment can never race the risk monitor
// on stale figures.
type LendingUseCase struct {
	txManager     TransactionManager
	accountRepo   AccountRepository
	loanRepo      LoanRepository
	operationRepo OperationRepository
	outboxRepo    OutboxRepository
	oracle        RateOracle
	idGen         IDGenerator
	params        LendingParams
	metrics       *metrics.Metrics
}

// NewLendingUseCase creates a new LendingUseCase.
func NewLendingUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	loanRepo LoanRepository,
	operationRepo OperationRepository,
	outboxRepo OutboxRepository,
	oracle RateOracle,
	idGen IDGenerator,
	params LendingParams,
	metrics *metrics.Metrics,
) *LendingUseCase {
	return &LendingUseCase{
		txManager:     txManager,
		accountRepo:   accountRepo,
		loanRepo:      loanRepo,
		operationRepo: operationRepo,
		outboxRepo:    outboxRepo,
		oracle:        oracle,
		idGen:         idGen,
		params:        params,
		metrics:       metrics,
	}
}

// DepositCollateralInput represents input for opening a loan.
type DepositCollateralInput struct {
	OwnerID  string
	Sats     int64
	LTVRatio int64 // zero means the configured default
}

// DepositCollateralResult is returned after a loan is opened.
type DepositCollateralResult struct {
	LoanID           string
	MaxBorrowable    int64
	LiquidationPrice int64
}

// DepositCollateral locks crypto as collateral and opens a new loan with
// zero debt. An account can hold at most one active loan.
func (uc *LendingUseCase) DepositCollateral(ctx context.Context, input DepositCollateralInput) (*DepositCollateralResult, error) {
	if err := domain.ValidateAmount(input.Sats); err != nil {
		return nil, err
	}

	ltvRatio := input.LTVRatio
	if ltvRatio == 0 {
		ltvRatio = uc.params.DefaultLTVRatio
	}
	if err := domain.ValidateLTVRatio(ltvRatio); err != nil {
		return nil, err
	}

	// Rate fetched before any mutation: fail closed on oracle trouble.
	sellRate, err := uc.oracle.SellRate(ctx)
	if err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	_, err = uc.loanRepo.GetActiveByOwnerForUpdate(txCtx, tx, input.OwnerID)
	if err == nil {
		return nil, domain.ErrLoanAlreadyActive
	}
	if !errors.Is(err, domain.ErrNoActiveLoan) {
		return nil, err
	}

	if err := account.ValidateCryptoDebit(input.Sats); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account.PledgeCollateral(input.Sats)
	if err := uc.accountRepo.Update(txCtx, tx, account, now); err != nil {
		return nil, err
	}

	loan := &domain.Loan{
		ID:             uc.idGen.Generate(),
		OwnerID:        input.OwnerID,
		CollateralSats: input.Sats,
		LTVRatio:       ltvRatio,
		InterestRate:   uc.params.InterestRate,
		Status:         domain.LoanStatusActive,
		CreatedAt:      now,
	}
	if err := uc.loanRepo.Create(txCtx, tx, loan); err != nil {
		return nil, err
	}

	op := &domain.Operation{
		ID:              uc.idGen.Generate(),
		LoanID:          loan.ID,
		OwnerID:         input.OwnerID,
		Type:            domain.OperationCollateralDeposit,
		CryptoDeltaSats: input.Sats,
		ExecutionRate:   sellRate,
		CreatedAt:       now,
	}
	if err := uc.operationRepo.Create(txCtx, tx, op); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   loan.ID,
		AggregateType: domain.AggregateTypeLoan,
		EventType:     domain.EventTypeLoanOpened,
		Payload: map[string]any{
			"loan_id":         loan.ID,
			"owner_id":        loan.OwnerID,
			"collateral_sats": loan.CollateralSats,
			"ltv_ratio":       loan.LTVRatio,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoansOpened.Inc()
	}

	return &DepositCollateralResult{
		LoanID:           loan.ID,
		MaxBorrowable:    loan.MaxBorrowable(sellRate),
		LiquidationPrice: loan.LiquidationPrice,
	}, nil
}

// BorrowInput represents input for borrowing against collateral.
type BorrowInput struct {
	OwnerID string
	Cents   int64
}

// BorrowResult is returned after a successful borrow.
type BorrowResult struct {
	NewBorrowedTotal  int64
	AvailableCapacity int64
	LiquidationPrice  int64
}

// Borrow draws base currency against the active loan's collateral, up to the
// LTV-derived ceiling at the current sell rate.
func (uc *LendingUseCase) Borrow(ctx context.Context, input BorrowInput) (*BorrowResult, error) {
	if err := domain.ValidateAmount(input.Cents); err != nil {
		return nil, err
	}

	sellRate, err := uc.oracle.SellRate(ctx)
	if err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	loan, err := uc.loanRepo.GetActiveByOwnerForUpdate(txCtx, tx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	if input.Cents > loan.AvailableCapacity(sellRate) {
		return nil, domain.ErrInsufficientCapacity
	}

	now := time.Now().UTC()
	loan.BorrowedCents += input.Cents
	loan.PrincipalCents += input.Cents
	loan.RecomputeLiquidationPrice(uc.params.LiquidationThreshold)
	if err := uc.loanRepo.Update(txCtx, tx, loan); err != nil {
		return nil, err
	}

	account.ApplyBorrow(input.Cents)
	if err := uc.accountRepo.Update(txCtx, tx, account, now); err != nil {
		return nil, err
	}

	op := &domain.Operation{
		ID:             uc.idGen.Generate(),
		LoanID:         loan.ID,
		OwnerID:        input.OwnerID,
		Type:           domain.OperationBorrow,
		BaseDeltaCents: input.Cents,
		ExecutionRate:  sellRate,
		CreatedAt:      now,
	}
	if err := uc.operationRepo.Create(txCtx, tx, op); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   loan.ID,
		AggregateType: domain.AggregateTypeLoan,
		EventType:     domain.EventTypeLoanBorrowed,
		Payload: map[string]any{
			"loan_id":        loan.ID,
			"owner_id":       loan.OwnerID,
			"amount_cents":   input.Cents,
			"borrowed_cents": loan.BorrowedCents,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Borrows.Inc()
		uc.metrics.BorrowAmount.Observe(float64(input.Cents))
	}

	return &BorrowResult{
		NewBorrowedTotal:  loan.BorrowedCents,
		AvailableCapacity: loan.AvailableCapacity(sellRate),
		LiquidationPrice:  loan.LiquidationPrice,
	}, nil
}

// RepayInput represents input for repaying debt.
type RepayInput struct {
	OwnerID string
	Cents   int64
}

// RepayResult is returned after a successful repayment.
type RepayResult struct {
	RemainingDebt          int64
	Status                 domain.LoanStatus
	CollateralReturned     int64
	MinimumInterestApplied int64
}

// Repay pays down the active loan. A full payoff is subject to the
// minimum-interest floor: when the floor exceeds the interest accrued so
// far, the shortfall is accrued first in the same transaction, so the
// lender never receives less than the minimum even on same-day repayment.
// Repaying to exactly zero closes the loan and returns the collateral.
func (uc *LendingUseCase) Repay(ctx context.Context, input RepayInput) (*RepayResult, error) {
	if err := domain.ValidateAmount(input.Cents); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	loan, err := uc.loanRepo.GetActiveByOwnerForUpdate(txCtx, tx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	interestDue, totalDue := loan.TotalDue(now, uc.params.MinInterestDays)

	if input.Cents > totalDue {
		return nil, domain.ErrExceedsOutstandingDebt
	}
	if err := account.ValidateBaseDebit(input.Cents); err != nil {
		return nil, err
	}

	var minimumApplied int64
	// Any payment that could zero the debt accrued so far tops up to the
	// minimum-interest floor first, so the loan can only close once the
	// floor is settled and the lender never receives less than the minimum.
	if input.Cents >= loan.BorrowedCents {
		if shortfall := interestDue - loan.InterestAccrued(); shortfall > 0 {
			minimumApplied = shortfall
			loan.BorrowedCents += shortfall
			account.ApplyInterest(shortfall)

			accrualOp := &domain.Operation{
				ID:             uc.idGen.Generate(),
				LoanID:         loan.ID,
				OwnerID:        input.OwnerID,
				Type:           domain.OperationInterestAccrual,
				BaseDeltaCents: shortfall,
				Detail:         map[string]any{"minimum_interest_floor": true},
				CreatedAt:      now,
			}
			if err := uc.operationRepo.Create(txCtx, tx, accrualOp); err != nil {
				return nil, err
			}
		}
	}

	account.ApplyRepay(input.Cents)
	applyRepayment(loan, input.Cents)

	var collateralReturned int64
	if loan.BorrowedCents == 0 {
		collateralReturned = loan.CollateralSats
		account.ReleaseCollateral(collateralReturned)
		account.ClearDebt()

		loan.CollateralSats = 0
		loan.Status = domain.LoanStatusRepaid
		loan.ClosedAt = &now
	}
	loan.RecomputeLiquidationPrice(uc.params.LiquidationThreshold)

	if err := uc.loanRepo.Update(txCtx, tx, loan); err != nil {
		return nil, err
	}
	if err := uc.accountRepo.Update(txCtx, tx, account, now); err != nil {
		return nil, err
	}

	op := &domain.Operation{
		ID:              uc.idGen.Generate(),
		LoanID:          loan.ID,
		OwnerID:         input.OwnerID,
		Type:            domain.OperationRepay,
		BaseDeltaCents:  -input.Cents,
		CryptoDeltaSats: -collateralReturned,
		CreatedAt:       now,
	}
	if err := uc.operationRepo.Create(txCtx, tx, op); err != nil {
		return nil, err
	}

	eventType := domain.EventTypeLoanRepaid
	if loan.Status == domain.LoanStatusRepaid {
		eventType = domain.EventTypeLoanClosed
	}
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   loan.ID,
		AggregateType: domain.AggregateTypeLoan,
		EventType:     eventType,
		Payload: map[string]any{
			"loan_id":        loan.ID,
			"owner_id":       loan.OwnerID,
			"amount_cents":   input.Cents,
			"remaining_debt": loan.BorrowedCents,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Repayments.Inc()
		if loan.Status == domain.LoanStatusRepaid {
			uc.metrics.LoansClosed.WithLabelValues(string(domain.LoanStatusRepaid)).Inc()
		}
	}

	return &RepayResult{
		RemainingDebt:          loan.BorrowedCents,
		Status:                 loan.Status,
		CollateralReturned:     collateralReturned,
		MinimumInterestApplied: minimumApplied,
	}, nil
}

// applyRepayment reduces the outstanding debt, consuming the interest
// portion before touching principal so that PrincipalCents always reflects
// the principal still outstanding.
func applyRepayment(loan *domain.Loan, cents int64) {
	interestPortion := loan.InterestAccrued()
	loan.BorrowedCents -= cents
	if cents > interestPortion {
		loan.PrincipalCents -= cents - interestPortion
		if loan.PrincipalCents < 0 {
			loan.PrincipalCents = 0
		}
	}
}

// AddCollateralInput represents input for topping up collateral.
type AddCollateralInput struct {
	OwnerID string
	Sats    int64
}

// AddCollateralResult is returned after a collateral top-up.
type AddCollateralResult struct {
	NewTotalCollateral int64
	NewLTV             decimal.Decimal
	LiquidationPrice   int64
	AvailableCapacity  int64
}

// AddCollateral moves additional crypto into the collateral bucket, lowering
// the loan's LTV and liquidation price.
func (uc *LendingUseCase) AddCollateral(ctx context.Context, input AddCollateralInput) (*AddCollateralResult, error) {
	if err := domain.ValidateAmount(input.Sats); err != nil {
		return nil, err
	}

	sellRate, err := uc.oracle.SellRate(ctx)
	if err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	loan, err := uc.loanRepo.GetActiveByOwnerForUpdate(txCtx, tx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateCryptoDebit(input.Sats); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account.PledgeCollateral(input.Sats)
	loan.CollateralSats += input.Sats
	loan.RecomputeLiquidationPrice(uc.params.LiquidationThreshold)

	if err := uc.loanRepo.Update(txCtx, tx, loan); err != nil {
		return nil, err
	}
	if err := uc.accountRepo.Update(txCtx, tx, account, now); err != nil {
		return nil, err
	}

	op := &domain.Operation{
		ID:              uc.idGen.Generate(),
		LoanID:          loan.ID,
		OwnerID:         input.OwnerID,
		Type:            domain.OperationAddCollateral,
		CryptoDeltaSats: input.Sats,
		ExecutionRate:   sellRate,
		CreatedAt:       now,
	}
	if err := uc.operationRepo.Create(txCtx, tx, op); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CollateralAdded.Inc()
	}

	return &AddCollateralResult{
		NewTotalCollateral: loan.CollateralSats,
		NewLTV:             loan.CurrentLTV(sellRate),
		LiquidationPrice:   loan.LiquidationPrice,
		AvailableCapacity:  loan.AvailableCapacity(sellRate),
	}, nil
}

// LoanStatusView is the read-only view of an active loan.
type LoanStatusView struct {
	LoanID             string
	OwnerID            string
	CollateralSats     int64
	BorrowedCents      int64
	PrincipalCents     int64
	InterestAccrued    int64
	CurrentLTV         decimal.Decimal
	RiskStatus         domain.RiskStatus
	MaxBorrowable      int64
	AvailableCapacity  int64
	MinimumInterestDue int64
	TotalDue           int64
	LiquidationPrice   int64
	InterestRate       decimal.Decimal
	CreatedAt          time.Time
}

// GetStatus returns the current view of the account's active loan. It never
// mutates state.
func (uc *LendingUseCase) GetStatus(ctx context.Context, ownerID string) (*LoanStatusView, error) {
	loan, err := uc.loanRepo.GetActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sellRate, err := uc.oracle.SellRate(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ltv := loan.CurrentLTV(sellRate)
	interestDue, totalDue := loan.TotalDue(now, uc.params.MinInterestDays)

	return &LoanStatusView{
		LoanID:             loan.ID,
		OwnerID:            loan.OwnerID,
		CollateralSats:     loan.CollateralSats,
		BorrowedCents:      loan.BorrowedCents,
		PrincipalCents:     loan.PrincipalCents,
		InterestAccrued:    loan.InterestAccrued(),
		CurrentLTV:         ltv,
		RiskStatus:         domain.RiskStatusFor(ltv, uc.params.WarningThreshold, uc.params.LiquidationThreshold),
		MaxBorrowable:      loan.MaxBorrowable(sellRate),
		AvailableCapacity:  loan.AvailableCapacity(sellRate),
		MinimumInterestDue: interestDue,
		TotalDue:           totalDue,
		LiquidationPrice:   loan.LiquidationPrice,
		InterestRate:       loan.InterestRate,
		CreatedAt:          loan.CreatedAt,
	}, nil
}

// GetHistoryInput represents input for listing operation records.
type GetHistoryInput struct {
	OwnerID string
	LoanID  string // optional; empty lists across all of the owner's loans
	Limit   int
	Offset  int
}

// GetHistory lists the operation log, newest first.
func (uc *LendingUseCase) GetHistory(ctx context.Context, input GetHistoryInput) ([]*domain.Operation, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	if input.LoanID != "" {
		return uc.operationRepo.ListByLoan(ctx, input.LoanID, limit, offset)
	}

	return uc.operationRepo.ListByOwner(ctx, input.OwnerID, limit, offset)
}
