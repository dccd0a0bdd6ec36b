package usecase

import (
	"context"
	"time"
)

// ReconciliationReport is the result of a consistency check between the
// denormalized account debt totals and the active loan book.
type ReconciliationReport struct {
	AccountBorrowedCents int64
	LoanBorrowedCents    int64
	DriftCents           int64
	Balanced             bool
	CheckedAt            time.Time
}

// ReconciliationUseCase cross-checks the two places debt is recorded. Every
// mutation updates the loan and the owner's account in the same transaction,
// so any drift between the totals means a bug or manual tampering.
type ReconciliationUseCase struct {
	ledgerRepo LedgerRepository
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(ledgerRepo LedgerRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{ledgerRepo: ledgerRepo}
}

// VerifyBalance compares total borrowed across accounts with total borrowed
// across active loans.
func (uc *ReconciliationUseCase) VerifyBalance(ctx context.Context) (*ReconciliationReport, error) {
	accountTotal, loanTotal, err := uc.ledgerRepo.TotalBorrowed(ctx)
	if err != nil {
		return nil, err
	}

	return &ReconciliationReport{
		AccountBorrowedCents: accountTotal,
		LoanBorrowedCents:    loanTotal,
		DriftCents:           accountTotal - loanTotal,
		Balanced:             accountTotal == loanTotal,
		CheckedAt:            time.Now().UTC(),
	}, nil
}
