package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/golend/internal/domain"
)

// AccountUseCase provisions accounts and credits their available buckets.
// Funding is the on-ramp: collateral can only be pledged from the available
// crypto bucket, and repayments can only be drawn from the available base
// bucket.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(txManager TransactionManager, accountRepo AccountRepository) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
	}
}

// CreateAccount provisions an empty account. Creating an account that
// already exists is not an error; the existing account is returned.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, id string) (*domain.Account, error) {
	if err := domain.ValidateAccountID(id); err != nil {
		return nil, err
	}

	existing, err := uc.accountRepo.GetByID(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount returns the account's balance buckets.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	if err := domain.ValidateAccountID(id); err != nil {
		return nil, err
	}
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccounts returns a page of accounts.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.accountRepo.List(ctx, limit, offset)
}

// DepositCrypto credits the available crypto bucket.
func (uc *AccountUseCase) DepositCrypto(ctx context.Context, id string, sats int64) (*domain.Account, error) {
	return uc.credit(ctx, id, sats, func(acc *domain.Account, amount int64) {
		acc.AvailableSats += amount
	})
}

// DepositBase credits the available base-currency bucket.
func (uc *AccountUseCase) DepositBase(ctx context.Context, id string, cents int64) (*domain.Account, error) {
	return uc.credit(ctx, id, cents, func(acc *domain.Account, amount int64) {
		acc.AvailableCents += amount
	})
}

func (uc *AccountUseCase) credit(ctx context.Context, id string, amount int64, apply func(*domain.Account, int64)) (*domain.Account, error) {
	if err := domain.ValidateAccountID(id); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	apply(account, amount)

	now := time.Now().UTC()
	if err := uc.accountRepo.Update(txCtx, tx, account, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	account.UpdatedAt = now

	return account, nil
}
