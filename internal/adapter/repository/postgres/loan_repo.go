package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/golend/internal/domain"
	"github.com/iho/golend/internal/infrastructure/postgres/generated"
	"github.com/iho/golend/internal/usecase"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index that allows at most one active loan per owner.
const uniqueViolation = "23505"

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create inserts a new loan within a transaction.
func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	_, err := queries.CreateLoan(ctx, generated.CreateLoanParams{
		ID:               loan.ID,
		OwnerID:          loan.OwnerID,
		CollateralSats:   loan.CollateralSats,
		BorrowedCents:    loan.BorrowedCents,
		PrincipalCents:   loan.PrincipalCents,
		LtvRatio:         loan.LTVRatio,
		InterestRate:     decimalToNumeric(loan.InterestRate),
		LiquidationPrice: loan.LiquidationPrice,
		Status:           string(loan.Status),
		LastAccruedOn:    timePtrToPgDate(loan.LastAccruedOn),
		Version:          loan.Version,
		CreatedAt:        timeToPgTimestamptz(loan.CreatedAt),
		ClosedAt:         timePtrToPgTimestamptz(loan.ClosedAt),
		WarnedAt:         timePtrToPgTimestamptz(loan.WarnedAt),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrLoanAlreadyActive
		}

		return err
	}

	return nil
}

// GetByID retrieves a loan by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	row, err := r.queries.GetLoanByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}

		return nil, err
	}

	return rowToLoan(row), nil
}

// GetByIDForUpdate retrieves a loan by ID with a FOR UPDATE lock.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.GetLoanByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}

		return nil, err
	}

	return rowToLoan(row), nil
}

// GetActiveByOwner retrieves the owner's active loan.
func (r *LoanRepository) GetActiveByOwner(ctx context.Context, ownerID string) (*domain.Loan, error) {
	row, err := r.queries.GetActiveLoanByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoActiveLoan
		}

		return nil, err
	}

	return rowToLoan(row), nil
}

// GetActiveByOwnerForUpdate retrieves the owner's active loan with a FOR
// UPDATE lock.
func (r *LoanRepository) GetActiveByOwnerForUpdate(ctx context.Context, tx usecase.Transaction, ownerID string) (*domain.Loan, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.GetActiveLoanByOwnerForUpdate(ctx, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoActiveLoan
		}

		return nil, err
	}

	return rowToLoan(row), nil
}

// Update persists the mutable fields of a loan.
func (r *LoanRepository) Update(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.UpdateLoan(ctx, generated.UpdateLoanParams{
		ID:               loan.ID,
		CollateralSats:   loan.CollateralSats,
		BorrowedCents:    loan.BorrowedCents,
		PrincipalCents:   loan.PrincipalCents,
		LiquidationPrice: loan.LiquidationPrice,
		Status:           string(loan.Status),
		LastAccruedOn:    timePtrToPgDate(loan.LastAccruedOn),
		ClosedAt:         timePtrToPgTimestamptz(loan.ClosedAt),
		WarnedAt:         timePtrToPgTimestamptz(loan.WarnedAt),
	})
}

// ListActiveWithDebt pages through open loans carrying debt, in stable ID
// order so concurrent sweeps cover every loan exactly once.
func (r *LoanRepository) ListActiveWithDebt(ctx context.Context, limit, offset int) ([]*domain.Loan, error) {
	rows, err := r.queries.ListActiveLoansWithDebt(ctx, generated.ListActiveLoansWithDebtParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	loans := make([]*domain.Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, rowToLoan(row))
	}

	return loans, nil
}

// ListByOwner lists the owner's loans, newest first.
func (r *LoanRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Loan, error) {
	rows, err := r.queries.ListLoansByOwner(ctx, generated.ListLoansByOwnerParams{
		OwnerID: ownerID,
		Limit:   int32(limit),
		Offset:  int32(offset),
	})
	if err != nil {
		return nil, err
	}

	loans := make([]*domain.Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, rowToLoan(row))
	}

	return loans, nil
}

func rowToLoan(row generated.Loan) *domain.Loan {
	var lastAccruedOn *time.Time
	if row.LastAccruedOn.Valid {
		t := row.LastAccruedOn.Time
		lastAccruedOn = &t
	}

	var closedAt *time.Time
	if row.ClosedAt.Valid {
		t := row.ClosedAt.Time
		closedAt = &t
	}

	var warnedAt *time.Time
	if row.WarnedAt.Valid {
		t := row.WarnedAt.Time
		warnedAt = &t
	}

	return &domain.Loan{
		ID:               row.ID,
		OwnerID:          row.OwnerID,
		CollateralSats:   row.CollateralSats,
		BorrowedCents:    row.BorrowedCents,
		PrincipalCents:   row.PrincipalCents,
		LTVRatio:         row.LtvRatio,
		InterestRate:     numericToDecimal(row.InterestRate),
		LiquidationPrice: row.LiquidationPrice,
		Status:           domain.LoanStatus(row.Status),
		LastAccruedOn:    lastAccruedOn,
		WarnedAt:         warnedAt,
		Version:          row.Version,
		CreatedAt:        row.CreatedAt.Time,
		ClosedAt:         closedAt,
	}
}

func timePtrToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}

	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func timePtrToPgDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}

	return pgtype.Date{Time: *t, Valid: true}
}
