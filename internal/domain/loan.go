package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusActive     LoanStatus = "ACTIVE"
	LoanStatusRepaid     LoanStatus = "REPAID"
	LoanStatusLiquidated LoanStatus = "LIQUIDATED"
)

// RiskStatus classifies a loan's current loan-to-value ratio.
type RiskStatus string

const (
	RiskStatusSafe      RiskStatus = "SAFE"
	RiskStatusWarning   RiskStatus = "WARNING"
	RiskStatusLiquidate RiskStatus = "LIQUIDATE"
)

// Loan is a collateralized position: crypto pledged as collateral against a
// base-currency debt. BorrowedCents tracks principal plus accrued interest;
// PrincipalCents is the authoritative running principal, updated alongside
// every borrow and repayment so that interest never has to be re-derived
// from the operation log.
type Loan struct {
	ID               string
	OwnerID          string
	CollateralSats   int64
	BorrowedCents    int64
	PrincipalCents   int64
	LTVRatio         int64
	InterestRate     decimal.Decimal
	LiquidationPrice int64
	Status           LoanStatus
	LastAccruedOn    *time.Time
	WarnedAt         *time.Time
	Version          int64
	CreatedAt        time.Time
	ClosedAt         *time.Time
}

// IsActive reports whether the loan can still be mutated.
func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// MaxBorrowable returns the debt ceiling at the given sell rate.
func (l *Loan) MaxBorrowable(sellRate int64) int64 {
	return MaxBorrowable(l.CollateralSats, sellRate, l.LTVRatio)
}

// AvailableCapacity returns the remaining borrowing headroom, never negative.
func (l *Loan) AvailableCapacity(sellRate int64) int64 {
	capacity := l.MaxBorrowable(sellRate) - l.BorrowedCents
	if capacity < 0 {
		return 0
	}
	return capacity
}

// CurrentLTV returns the loan-to-value percentage at the given sell rate.
func (l *Loan) CurrentLTV(sellRate int64) decimal.Decimal {
	return CurrentLTV(l.BorrowedCents, l.CollateralSats, sellRate)
}

// InterestAccrued returns the interest portion of the outstanding debt.
func (l *Loan) InterestAccrued() int64 {
	accrued := l.BorrowedCents - l.PrincipalCents
	if accrued < 0 {
		return 0
	}
	return accrued
}

// MinimumInterestDue returns the interest owed under the minimum-period
// floor: at least minDays of interest are charged regardless of how quickly
// the loan is repaid.
func (l *Loan) MinimumInterestDue(now time.Time, minDays int64) int64 {
	days := DaysElapsed(l.CreatedAt, now)
	if days < minDays {
		days = minDays
	}
	return InterestFor(l.PrincipalCents, l.InterestRate, days)
}

// TotalDue returns the interest actually owed and the full payoff amount at
// the given time. The charged interest is whichever is larger: interest
// already accrued onto the debt, or the minimum-period floor.
func (l *Loan) TotalDue(now time.Time, minDays int64) (interestDue, totalDue int64) {
	interestDue = l.MinimumInterestDue(now, minDays)
	if accrued := l.InterestAccrued(); accrued > interestDue {
		interestDue = accrued
	}
	return interestDue, l.PrincipalCents + interestDue
}

// RecomputeLiquidationPrice refreshes the denormalized trigger price after
// any change to the borrowed or collateral amount.
func (l *Loan) RecomputeLiquidationPrice(liquidationThreshold int64) {
	l.LiquidationPrice = LiquidationPrice(l.BorrowedCents, l.CollateralSats, liquidationThreshold)
}

// RiskStatusFor classifies a loan-to-value percentage against the configured
// warning and liquidation thresholds.
func RiskStatusFor(ltv decimal.Decimal, warningThreshold, liquidationThreshold int64) RiskStatus {
	switch {
	case ltv.GreaterThanOrEqual(decimal.NewFromInt(liquidationThreshold)):
		return RiskStatusLiquidate
	case ltv.GreaterThanOrEqual(decimal.NewFromInt(warningThreshold)):
		return RiskStatusWarning
	default:
		return RiskStatusSafe
	}
}
