package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/golend/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements ledger-wide consistency queries.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(pool)}
}

// TotalBorrowed sums outstanding debt on accounts and on active loans. Both
// figures are written in the same transaction on every mutation, so a
// mismatch indicates corruption.
func (r *LedgerRepository) TotalBorrowed(ctx context.Context) (int64, int64, error) {
	accountTotal, err := r.queries.TotalBorrowedOnAccounts(ctx)
	if err != nil {
		return 0, 0, err
	}

	loanTotal, err := r.queries.TotalBorrowedOnActiveLoans(ctx)
	if err != nil {
		return 0, 0, err
	}

	return accountTotal, loanTotal, nil
}
