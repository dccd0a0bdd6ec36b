package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/golend/internal/domain"
	"github.com/iho/golend/internal/infrastructure/metrics"
)

// LiquidationOutcome describes what a risk check did to a loan.
type LiquidationOutcome string

const (
	OutcomeNone    LiquidationOutcome = "none"
	OutcomeWarned  LiquidationOutcome = "warned"
	OutcomePartial LiquidationOutcome = "partial"
	OutcomeFull    LiquidationOutcome = "full"
)

// LiquidationResult reports the outcome of a risk check or forced
// liquidation on a single loan.
type LiquidationResult struct {
	LoanID     string
	Outcome    LiquidationOutcome
	CurrentLTV decimal.Decimal
	Detail     domain.LiquidationDetail

	// ShortfallCents is the debt written off because the collateral could
	// not cover it. Non-zero results demand operator attention.
	ShortfallCents int64
}

// SweepReport aggregates one pass of the risk monitor over all open loans.
type SweepReport struct {
	Checked     int
	Warned      int
	Partial     int
	Full        int
	Failed      int
	StartedAt   time.Time
	CompletedAt time.Time
}

// LiquidationUseCase recomputes loan-to-value for open loans and executes
// partial or full liquidations. It shares the lending engine's lock order:
// account row first, then loan row.
type LiquidationUseCase struct {
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

// NewLiquidationUseCase creates a new LiquidationUseCase.
func NewLiquidationUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	loanRepo LoanRepository,
	operationRepo OperationRepository,
	outboxRepo OutboxRepository,
	oracle RateOracle,
	idGen IDGenerator,
	params LendingParams,
	metrics *metrics.Metrics,
) *LiquidationUseCase {
	return &LiquidationUseCase{
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

// CheckAndLiquidate recomputes the loan's LTV at the current sell rate and
// partially liquidates it back to the target threshold when it is at or
// above the liquidation threshold. In the warning band it only emits a
// warning event. A loan that cannot be safely checked (rate unavailable) is
// left untouched; the caller retries on its next tick.
func (uc *LiquidationUseCase) CheckAndLiquidate(ctx context.Context, loanID string) (*LiquidationResult, error) {
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

	account, loan, err := uc.lockAccountAndLoan(txCtx, tx, loanID)
	if err != nil {
		return nil, err
	}

	result := &LiquidationResult{LoanID: loanID, Outcome: OutcomeNone}
	if !loan.IsActive() || loan.BorrowedCents <= 0 || loan.CollateralSats <= 0 {
		return result, nil
	}

	ltv := loan.CurrentLTV(sellRate)
	result.CurrentLTV = ltv

	now := time.Now().UTC()

	switch domain.RiskStatusFor(ltv, uc.params.WarningThreshold, uc.params.LiquidationThreshold) {
	case domain.RiskStatusSafe:
		// Returning to safe re-arms the warning for the next excursion.
		if loan.WarnedAt != nil {
			loan.WarnedAt = nil
			if err := uc.loanRepo.Update(txCtx, tx, loan); err != nil {
				return nil, err
			}
			if err := tx.Commit(txCtx); err != nil {
				return nil, err
			}
		}

		return result, nil

	case domain.RiskStatusWarning:
		result.Outcome = OutcomeWarned
		// An unbroken stay in the warning band gets a single event; the
		// sweep re-checks every tick and would otherwise flood the outbox.
		if loan.WarnedAt != nil {
			return result, nil
		}

		loan.WarnedAt = &now
		if err := uc.loanRepo.Update(txCtx, tx, loan); err != nil {
			return nil, err
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   loan.ID,
			AggregateType: domain.AggregateTypeLoan,
			EventType:     domain.EventTypeLiquidationWarning,
			Payload: map[string]any{
				"loan_id":           loan.ID,
				"owner_id":          loan.OwnerID,
				"current_ltv":       ltv.StringFixed(4),
				"liquidation_price": loan.LiquidationPrice,
				"sell_rate":         sellRate,
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
			uc.metrics.LiquidationWarnings.Inc()
		}

		return result, nil
	}

	// At or above the liquidation threshold: sell just enough collateral to
	// restore the target LTV.
	detail, full, shortfall, err := uc.partialLiquidate(txCtx, tx, account, loan, sellRate, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	result.Detail = detail
	result.ShortfallCents = shortfall
	result.Outcome = OutcomePartial
	if full {
		result.Outcome = OutcomeFull
	}

	if uc.metrics != nil {
		uc.metrics.Liquidations.WithLabelValues(string(result.Outcome)).Inc()
		if shortfall > 0 {
			uc.metrics.LiquidationShortfalls.Inc()
		}
	}

	return result, nil
}

// partialLiquidate performs the forced sale inside the caller's transaction
// and returns the audit detail, whether the loan reached a terminal state,
// and any written-off shortfall.
func (uc *LiquidationUseCase) partialLiquidate(
	ctx context.Context,
	tx Transaction,
	account *domain.Account,
	loan *domain.Loan,
	sellRate int64,
	now time.Time,
) (domain.LiquidationDetail, bool, int64, error) {
	collateralValue := domain.CollateralValue(loan.CollateralSats, sellRate)
	saleValue := domain.LiquidationSaleValue(loan.BorrowedCents, collateralValue, uc.params.TargetThreshold)

	satsToSell := domain.CollateralToSell(saleValue, sellRate)
	if satsToSell > loan.CollateralSats {
		satsToSell = loan.CollateralSats
	}

	proceeds := domain.SaleProceeds(satsToSell, sellRate)
	debtReduction := proceeds
	if debtReduction > loan.BorrowedCents {
		debtReduction = loan.BorrowedCents
	}
	excessProceeds := proceeds - debtReduction

	loan.CollateralSats -= satsToSell
	applyRepayment(loan, debtReduction)
	account.ApplyLiquidation(satsToSell, debtReduction, excessProceeds)
	account.ClearInterestAccrued()

	var (
		full               bool
		shortfall          int64
		collateralReturned int64
	)

	switch {
	case loan.BorrowedCents == 0:
		// Debt fully cleared; close out and return what remains.
		full = true
		collateralReturned = loan.CollateralSats
		account.ReleaseCollateral(collateralReturned)
		loan.CollateralSats = 0

	case loan.CollateralSats == 0:
		// Collateral exhausted with debt remaining: the loan must still end
		// in a terminal state with the debt clamped to zero, never negative.
		// The shortfall is surfaced for operator intervention.
		full = true
		shortfall = loan.BorrowedCents
		loan.BorrowedCents = 0
		loan.PrincipalCents = 0
		account.ClearDebt()
	}

	if full {
		loan.Status = domain.LoanStatusLiquidated
		loan.ClosedAt = &now
	}
	loan.WarnedAt = nil
	loan.RecomputeLiquidationPrice(uc.params.LiquidationThreshold)

	if err := uc.loanRepo.Update(ctx, tx, loan); err != nil {
		return domain.LiquidationDetail{}, false, 0, err
	}
	if err := uc.accountRepo.Update(ctx, tx, account, now); err != nil {
		return domain.LiquidationDetail{}, false, 0, err
	}

	detail := domain.LiquidationDetail{
		DebtCleared:        debtReduction,
		CollateralSold:     satsToSell,
		CollateralReturned: collateralReturned,
		ExecutionRate:      sellRate,
		ExcessProceeds:     excessProceeds,
	}

	opType := domain.OperationPartialLiquidation
	if full {
		opType = domain.OperationFullLiquidation
	}

	detailMap := detail.ToMap()
	if shortfall > 0 {
		detailMap["shortfall_cents"] = shortfall
	}

	op := &domain.Operation{
		ID:              uc.idGen.Generate(),
		LoanID:          loan.ID,
		OwnerID:         loan.OwnerID,
		Type:            opType,
		BaseDeltaCents:  -debtReduction,
		CryptoDeltaSats: -(satsToSell + collateralReturned),
		ExecutionRate:   sellRate,
		Detail:          detailMap,
		CreatedAt:       now,
	}
	if err := uc.operationRepo.Create(ctx, tx, op); err != nil {
		return domain.LiquidationDetail{}, false, 0, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   loan.ID,
		AggregateType: domain.AggregateTypeLoan,
		EventType:     domain.EventTypeLoanLiquidated,
		Payload: map[string]any{
			"loan_id":         loan.ID,
			"owner_id":        loan.OwnerID,
			"partial":         !full,
			"debt_cleared":    debtReduction,
			"collateral_sold": satsToSell,
			"execution_rate":  sellRate,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return domain.LiquidationDetail{}, false, 0, err
	}

	return detail, full, shortfall, nil
}

// ForceLiquidate forecloses the loan immediately regardless of LTV. The
// 30-day minimum-interest floor is applied before computing the debt, then
// exactly enough collateral is sold to cover principal plus interest; the
// remainder goes back to the available bucket. Fails with
// ErrInsufficientCollateral, before any mutation, when the collateral cannot
// cover the computed debt.
func (uc *LiquidationUseCase) ForceLiquidate(ctx context.Context, loanID string) (*LiquidationResult, error) {
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

	account, loan, err := uc.lockAccountAndLoan(txCtx, tx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.IsActive() {
		return nil, domain.ErrLoanClosed
	}

	now := time.Now().UTC()
	ltv := loan.CurrentLTV(sellRate)

	if loan.BorrowedCents == 0 {
		// Nothing owed: closing is just returning the collateral.
		collateralReturned := loan.CollateralSats
		account.ReleaseCollateral(collateralReturned)
		account.ClearDebt()
		account.ClearInterestAccrued()

		loan.CollateralSats = 0
		loan.Status = domain.LoanStatusLiquidated
		loan.ClosedAt = &now
		loan.RecomputeLiquidationPrice(uc.params.LiquidationThreshold)

		detail := domain.LiquidationDetail{
			CollateralReturned: collateralReturned,
			ExecutionRate:      sellRate,
		}
		if err := uc.finishForcedLiquidation(txCtx, tx, account, loan, detail, collateralReturned, now); err != nil {
			return nil, err
		}
		if err := tx.Commit(txCtx); err != nil {
			return nil, err
		}

		if uc.metrics != nil {
			uc.metrics.Liquidations.WithLabelValues(string(OutcomeFull)).Inc()
		}

		return &LiquidationResult{LoanID: loanID, Outcome: OutcomeFull, CurrentLTV: ltv, Detail: detail}, nil
	}

	interestDue, totalDue := loan.TotalDue(now, uc.params.MinInterestDays)

	satsToSell := domain.CollateralToSell(totalDue, sellRate)
	if satsToSell > loan.CollateralSats {
		return nil, domain.ErrInsufficientCollateral
	}

	minimumApplied := interestDue - loan.InterestAccrued()
	if minimumApplied > 0 {
		loan.BorrowedCents += minimumApplied
		account.ApplyInterest(minimumApplied)

		accrualOp := &domain.Operation{
			ID:             uc.idGen.Generate(),
			LoanID:         loan.ID,
			OwnerID:        loan.OwnerID,
			Type:           domain.OperationInterestAccrual,
			BaseDeltaCents: minimumApplied,
			Detail:         map[string]any{"minimum_interest_floor": true},
			CreatedAt:      now,
		}
		if err := uc.operationRepo.Create(txCtx, tx, accrualOp); err != nil {
			return nil, err
		}
	} else {
		minimumApplied = 0
	}

	proceeds := domain.SaleProceeds(satsToSell, sellRate)
	excessProceeds := proceeds - totalDue
	collateralReturned := loan.CollateralSats - satsToSell

	account.ApplyLiquidation(satsToSell, totalDue, excessProceeds)
	account.ReleaseCollateral(collateralReturned)
	account.ClearDebt()
	account.ClearInterestAccrued()

	loan.BorrowedCents = 0
	loan.PrincipalCents = 0
	loan.CollateralSats = 0
	loan.Status = domain.LoanStatusLiquidated
	loan.ClosedAt = &now
	loan.RecomputeLiquidationPrice(uc.params.LiquidationThreshold)

	detail := domain.LiquidationDetail{
		DebtCleared:            totalDue,
		CollateralSold:         satsToSell,
		CollateralReturned:     collateralReturned,
		ExecutionRate:          sellRate,
		MinimumInterestApplied: minimumApplied,
		ExcessProceeds:         excessProceeds,
	}
	if err := uc.finishForcedLiquidation(txCtx, tx, account, loan, detail, collateralReturned, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.Liquidations.WithLabelValues(string(OutcomeFull)).Inc()
	}

	return &LiquidationResult{LoanID: loanID, Outcome: OutcomeFull, CurrentLTV: ltv, Detail: detail}, nil
}

// finishForcedLiquidation persists the loan and account and appends the
// FULL_LIQUIDATION record and event for a forced closure.
func (uc *LiquidationUseCase) finishForcedLiquidation(
	ctx context.Context,
	tx Transaction,
	account *domain.Account,
	loan *domain.Loan,
	detail domain.LiquidationDetail,
	collateralReturned int64,
	now time.Time,
) error {
	if err := uc.loanRepo.Update(ctx, tx, loan); err != nil {
		return err
	}
	if err := uc.accountRepo.Update(ctx, tx, account, now); err != nil {
		return err
	}

	op := &domain.Operation{
		ID:              uc.idGen.Generate(),
		LoanID:          loan.ID,
		OwnerID:         loan.OwnerID,
		Type:            domain.OperationFullLiquidation,
		BaseDeltaCents:  -detail.DebtCleared,
		CryptoDeltaSats: -(detail.CollateralSold + collateralReturned),
		ExecutionRate:   detail.ExecutionRate,
		Detail:          detail.ToMap(),
		CreatedAt:       now,
	}
	if err := uc.operationRepo.Create(ctx, tx, op); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   loan.ID,
		AggregateType: domain.AggregateTypeLoan,
		EventType:     domain.EventTypeLoanLiquidated,
		Payload: map[string]any{
			"loan_id":         loan.ID,
			"owner_id":        loan.OwnerID,
			"partial":         false,
			"debt_cleared":    detail.DebtCleared,
			"collateral_sold": detail.CollateralSold,
			"execution_rate":  detail.ExecutionRate,
		},
		CreatedAt: now,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

// AtRiskLoan is one row of the admin at-risk listing.
type AtRiskLoan struct {
	LoanID     string
	OwnerID    string
	CurrentLTV decimal.Decimal
	RiskStatus domain.RiskStatus
}

// ListAtRisk returns every open loan whose LTV at the current sell rate is
// in the warning band or above.
func (uc *LiquidationUseCase) ListAtRisk(ctx context.Context) ([]AtRiskLoan, error) {
	sellRate, err := uc.oracle.SellRate(ctx)
	if err != nil {
		return nil, err
	}

	var atRisk []AtRiskLoan
	for offset := 0; ; offset += AccrualBatchSize {
		loans, err := uc.loanRepo.ListActiveWithDebt(ctx, AccrualBatchSize, offset)
		if err != nil {
			return nil, err
		}

		for _, loan := range loans {
			ltv := loan.CurrentLTV(sellRate)
			status := domain.RiskStatusFor(ltv, uc.params.WarningThreshold, uc.params.LiquidationThreshold)
			if status == domain.RiskStatusSafe {
				continue
			}

			atRisk = append(atRisk, AtRiskLoan{
				LoanID:     loan.ID,
				OwnerID:    loan.OwnerID,
				CurrentLTV: ltv,
				RiskStatus: status,
			})
		}

		if len(loans) < AccrualBatchSize {
			break
		}
	}

	return atRisk, nil
}

// Sweep runs one risk-monitor pass over all open loans with debt. A loan
// that cannot be processed is logged by the caller and skipped; its failure
// never blocks the rest of the sweep.
func (uc *LiquidationUseCase) Sweep(ctx context.Context, onError func(loanID string, err error)) (*SweepReport, error) {
	report := &SweepReport{StartedAt: time.Now().UTC()}

	for offset := 0; ; {
		loans, err := uc.loanRepo.ListActiveWithDebt(ctx, AccrualBatchSize, offset)
		if err != nil {
			return report, err
		}

		closed := 0
		for _, loan := range loans {
			if loan.CollateralSats <= 0 {
				continue
			}

			report.Checked++

			result, err := uc.CheckAndLiquidate(ctx, loan.ID)
			if err != nil {
				report.Failed++
				if onError != nil {
					onError(loan.ID, err)
				}
				continue
			}

			switch result.Outcome {
			case OutcomeWarned:
				report.Warned++
			case OutcomePartial:
				report.Partial++
			case OutcomeFull:
				report.Full++
				closed++
			}
		}

		if len(loans) < AccrualBatchSize {
			break
		}

		// Full liquidations drop rows out of the id-ordered listing, shifting
		// later rows left. Advance by the rows that actually remain so none
		// are skipped.
		offset += len(loans) - closed
	}

	report.CompletedAt = time.Now().UTC()

	return report, nil
}

// lockAccountAndLoan acquires the account and loan row locks in the engine's
// canonical order. The loan is re-read under its lock, so the unlocked
// lookup used to discover the owner cannot leak stale state.
func (uc *LiquidationUseCase) lockAccountAndLoan(ctx context.Context, tx Transaction, loanID string) (*domain.Account, *domain.Loan, error) {
	peek, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, peek.OwnerID)
	if err != nil {
		return nil, nil, err
	}

	loan, err := uc.loanRepo.GetByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		return nil, nil, err
	}

	return account, loan, nil
}
