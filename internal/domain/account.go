package domain

import "time"

// Account holds the per-account balance buckets mutated by the lending
// engine. Crypto buckets are in sats, base buckets in cents.
type Account struct {
	ID                   string
	AvailableSats        int64
	CollateralSats       int64
	AvailableCents       int64
	BorrowedCents        int64
	InterestAccruedCents int64
	Version              int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ValidateCryptoDebit checks that the available crypto bucket covers amount.
func (a *Account) ValidateCryptoDebit(sats int64) error {
	if sats <= 0 {
		return ErrInvalidAmount
	}
	if a.AvailableSats < sats {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateBaseDebit checks that the available base bucket covers amount.
func (a *Account) ValidateBaseDebit(cents int64) error {
	if cents <= 0 {
		return ErrInvalidAmount
	}
	if a.AvailableCents < cents {
		return ErrInsufficientFunds
	}
	return nil
}

// PledgeCollateral moves sats from the available bucket to the collateral
// bucket. Caller validates first.
func (a *Account) PledgeCollateral(sats int64) {
	a.AvailableSats -= sats
	a.CollateralSats += sats
}

// ReleaseCollateral moves sats from the collateral bucket back to available.
func (a *Account) ReleaseCollateral(sats int64) {
	a.CollateralSats -= sats
	a.AvailableSats += sats
}

// ApplyLiquidation applies a forced collateral sale: sold sats leave the
// collateral bucket, the cleared debt comes off the borrowed mirror, and any
// proceeds beyond the debt are credited to the available base bucket.
func (a *Account) ApplyLiquidation(soldSats, debtCleared, excessProceedsCents int64) {
	a.CollateralSats -= soldSats
	a.BorrowedCents -= debtCleared
	if a.BorrowedCents < 0 {
		a.BorrowedCents = 0
	}
	a.AvailableCents += excessProceedsCents
}

// ApplyBorrow credits the borrowed base currency to the account.
func (a *Account) ApplyBorrow(cents int64) {
	a.AvailableCents += cents
	a.BorrowedCents += cents
}

// ApplyRepay debits the repayment from available and reduces the borrowed
// mirror by the same amount.
func (a *Account) ApplyRepay(cents int64) {
	a.AvailableCents -= cents
	a.BorrowedCents -= cents
}

// ApplyInterest grows the borrowed mirror and the running interest total.
func (a *Account) ApplyInterest(cents int64) {
	a.BorrowedCents += cents
	a.InterestAccruedCents += cents
}

// ClearDebt zeroes the borrowed mirror. Used when a loan reaches a terminal
// state so a rounding residue can never linger on the account.
func (a *Account) ClearDebt() {
	a.BorrowedCents = 0
}

// ClearInterestAccrued resets the running interest total when a loan
// reaches a terminal state.
func (a *Account) ClearInterestAccrued() {
	a.InterestAccruedCents = 0
}
