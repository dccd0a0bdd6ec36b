package usecase

import (
	"context"
	"time"

	"github.com/iho/golend/internal/domain"
	"github.com/iho/golend/internal/infrastructure/metrics"
)

// AccrualReport aggregates one daily interest pass over all open loans.
type AccrualReport struct {
	Processed          int
	Accrued            int
	Skipped            int
	Failed             int
	TotalInterestCents int64
	StartedAt          time.Time
	CompletedAt        time.Time
}

// AccrualUseCase adds daily simple interest to every open loan with debt.
// Accrual is idempotent per calendar day: a loan already accrued today is
// skipped, so the job can be re-run after a crash without double-charging.
type AccrualUseCase struct {
	txManager     TransactionManager
	accountRepo   AccountRepository
	loanRepo      LoanRepository
	operationRepo OperationRepository
	idGen         IDGenerator
	params        LendingParams
	metrics       *metrics.Metrics
}

// NewAccrualUseCase creates a new AccrualUseCase.
func NewAccrualUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	loanRepo LoanRepository,
	operationRepo OperationRepository,
	idGen IDGenerator,
	params LendingParams,
	metrics *metrics.Metrics,
) *AccrualUseCase {
	return &AccrualUseCase{
		txManager:     txManager,
		accountRepo:   accountRepo,
		loanRepo:      loanRepo,
		operationRepo: operationRepo,
		idGen:         idGen,
		params:        params,
		metrics:       metrics,
	}
}

// AccrueAll runs one accrual pass. Failures on individual loans are reported
// through onError and do not abort the pass.
func (uc *AccrualUseCase) AccrueAll(ctx context.Context, onError func(loanID string, err error)) (*AccrualReport, error) {
	report := &AccrualReport{StartedAt: time.Now().UTC()}

	for offset := 0; ; offset += AccrualBatchSize {
		loans, err := uc.loanRepo.ListActiveWithDebt(ctx, AccrualBatchSize, offset)
		if err != nil {
			return report, err
		}

		for _, loan := range loans {
			report.Processed++

			amount, err := uc.AccrueLoan(ctx, loan.ID)
			if err != nil {
				report.Failed++
				if onError != nil {
					onError(loan.ID, err)
				}
				continue
			}

			if amount == 0 {
				report.Skipped++
				continue
			}

			report.Accrued++
			report.TotalInterestCents += amount
		}

		if len(loans) < AccrualBatchSize {
			break
		}
	}

	report.CompletedAt = time.Now().UTC()

	if uc.metrics != nil {
		uc.metrics.InterestAccrued.Add(float64(report.TotalInterestCents))
	}

	return report, nil
}

// AccrueLoan charges one day of interest to a single loan. Returns the
// amount charged, or zero when the loan was already accrued today or has
// nothing to accrue.
func (uc *AccrualUseCase) AccrueLoan(ctx context.Context, loanID string) (int64, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	peek, err := uc.loanRepo.GetByID(txCtx, loanID)
	if err != nil {
		return 0, err
	}

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, peek.OwnerID)
	if err != nil {
		return 0, err
	}

	loan, err := uc.loanRepo.GetByIDForUpdate(txCtx, tx, loanID)
	if err != nil {
		return 0, err
	}

	if !loan.IsActive() || loan.BorrowedCents <= 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)
	if loan.LastAccruedOn != nil && !loan.LastAccruedOn.Before(today) {
		return 0, nil
	}

	interest := domain.DailyInterest(loan.BorrowedCents, loan.InterestRate)
	if interest > 0 {
		loan.BorrowedCents += interest
		loan.RecomputeLiquidationPrice(uc.params.LiquidationThreshold)
		account.ApplyInterest(interest)

		op := &domain.Operation{
			ID:             uc.idGen.Generate(),
			LoanID:         loan.ID,
			OwnerID:        loan.OwnerID,
			Type:           domain.OperationInterestAccrual,
			BaseDeltaCents: interest,
			Detail:         map[string]any{"accrued_on": today.Format("2006-01-02")},
			CreatedAt:      now,
		}
		if err := uc.operationRepo.Create(txCtx, tx, op); err != nil {
			return 0, err
		}

		if err := uc.accountRepo.Update(txCtx, tx, account, now); err != nil {
			return 0, err
		}
	}

	loan.LastAccruedOn = &today
	if err := uc.loanRepo.Update(txCtx, tx, loan); err != nil {
		return 0, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return 0, err
	}

	return interest, nil
}
