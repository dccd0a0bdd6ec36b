package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/golend/internal/domain"
	"github.com/iho/golend/internal/usecase"
)

// OperationRepository implements the append-only operation log.
type OperationRepository struct {
	pool *pgxpool.Pool
}

// NewOperationRepository creates a new OperationRepository.
func NewOperationRepository(pool *pgxpool.Pool) *OperationRepository {
	return &OperationRepository{pool: pool}
}

// Create appends an operation record inside the caller's transaction.
func (r *OperationRepository) Create(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error {
	var detailJSON []byte
	if op.Detail != nil {
		var err error
		detailJSON, err = json.Marshal(op.Detail)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO operations (
			id, loan_id, owner_id, type,
			base_delta_cents, crypto_delta_sats, execution_rate,
			detail, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	pgxTx := tx.(*Tx).PgxTx()
	_, err := pgxTx.Exec(ctx, query,
		op.ID,
		op.LoanID,
		op.OwnerID,
		string(op.Type),
		op.BaseDeltaCents,
		op.CryptoDeltaSats,
		op.ExecutionRate,
		detailJSON,
		op.CreatedAt,
	)

	return err
}

// ListByLoan lists a loan's operations, newest first.
func (r *OperationRepository) ListByLoan(ctx context.Context, loanID string, limit, offset int) ([]*domain.Operation, error) {
	query := `
		SELECT id, loan_id, owner_id, type,
		       base_delta_cents, crypto_delta_sats, execution_rate,
		       detail, created_at
		FROM operations
		WHERE loan_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, loanID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOperations(rows)
}

// ListByOwner lists an owner's operations across all loans, newest first.
func (r *OperationRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Operation, error) {
	query := `
		SELECT id, loan_id, owner_id, type,
		       base_delta_cents, crypto_delta_sats, execution_rate,
		       detail, created_at
		FROM operations
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOperations(rows)
}

func scanOperations(rows pgx.Rows) ([]*domain.Operation, error) {
	var ops []*domain.Operation
	for rows.Next() {
		var (
			op         domain.Operation
			opType     string
			detailJSON []byte
			createdAt  time.Time
		)

		err := rows.Scan(
			&op.ID,
			&op.LoanID,
			&op.OwnerID,
			&opType,
			&op.BaseDeltaCents,
			&op.CryptoDeltaSats,
			&op.ExecutionRate,
			&detailJSON,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		op.Type = domain.OperationType(opType)
		op.CreatedAt = createdAt
		if detailJSON != nil {
			_ = json.Unmarshal(detailJSON, &op.Detail)
		}

		ops = append(ops, &op)
	}

	return ops, rows.Err()
}
