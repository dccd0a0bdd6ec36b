package usecase

import (
	"context"
	"time"

	"github.com/iho/golend/internal/domain"
)

// AccountRepository defines data access for account balance buckets.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	Update(ctx context.Context, tx Transaction, account *domain.Account, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// LoanRepository defines data access for loans.
type LoanRepository interface {
	Create(ctx context.Context, tx Transaction, loan *domain.Loan) error
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Loan, error)
	GetActiveByOwner(ctx context.Context, ownerID string) (*domain.Loan, error)
	GetActiveByOwnerForUpdate(ctx context.Context, tx Transaction, ownerID string) (*domain.Loan, error)
	Update(ctx context.Context, tx Transaction, loan *domain.Loan) error
	ListActiveWithDebt(ctx context.Context, limit, offset int) ([]*domain.Loan, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Loan, error)
}

// OperationRepository defines data access for the append-only operation log.
type OperationRepository interface {
	Create(ctx context.Context, tx Transaction, op *domain.Operation) error
	ListByLoan(ctx context.Context, loanID string, limit, offset int) ([]*domain.Operation, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Operation, error)
}

// LedgerRepository defines ledger-wide consistency queries.
type LedgerRepository interface {
	// TotalBorrowed returns the borrowed totals recorded on accounts and on
	// active loans; the two must agree.
	TotalBorrowed(ctx context.Context) (accountTotal, loanTotal int64, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// RateOracle supplies current conversion rates between the crypto asset and
// the base currency, in cents per domain.AssetScale sats. Implementations
// must return domain.ErrRateUnavailable rather than a stale or default rate;
// callers fail closed on it.
type RateOracle interface {
	SellRate(ctx context.Context) (int64, error)
	BuyRate(ctx context.Context) (int64, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
