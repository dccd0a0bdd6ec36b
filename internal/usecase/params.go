package usecase

import "github.com/shopspring/decimal"

// LendingParams carries the configurable lending policy. Values come from
// environment config; the ltv ratio and interest rate are captured onto each
// loan at creation so later policy changes do not affect open loans.
type LendingParams struct {
	// DefaultLTVRatio is the loan-to-value ratio (percent) used when the
	// caller does not supply one.
	DefaultLTVRatio int64

	// InterestRate is the annual interest rate (percent) captured onto
	// loans at creation.
	InterestRate decimal.Decimal

	// LiquidationThreshold is the LTV percentage at which automatic
	// partial liquidation triggers.
	LiquidationThreshold int64

	// WarningThreshold is the LTV percentage at which a warning is
	// emitted without any state change.
	WarningThreshold int64

	// TargetThreshold is the LTV percentage a partial liquidation
	// restores the loan to.
	TargetThreshold int64

	// MinInterestDays is the minimum number of days of interest charged
	// on repayment regardless of actual loan duration.
	MinInterestDays int64
}

// DefaultLendingParams returns the stock policy.
func DefaultLendingParams() LendingParams {
	return LendingParams{
		DefaultLTVRatio:      60,
		InterestRate:         decimal.NewFromInt(12),
		LiquidationThreshold: 90,
		WarningThreshold:     85,
		TargetThreshold:      60,
		MinInterestDays:      30,
	}
}
