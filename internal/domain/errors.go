package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Loan lifecycle errors
	ErrLoanNotFound      = errors.New("loan not found")
	ErrLoanAlreadyActive = errors.New("account already has an active loan")
	ErrNoActiveLoan      = errors.New("account has no active loan")
	ErrLoanClosed        = errors.New("loan is in a terminal state")

	// Lending errors
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidLTVRatio        = errors.New("loan-to-value ratio out of range")
	ErrInsufficientCapacity   = errors.New("borrow amount exceeds available capacity")
	ErrExceedsOutstandingDebt = errors.New("repay amount exceeds outstanding debt")

	// Liquidation errors
	ErrInsufficientCollateral = errors.New("collateral cannot cover computed debt")

	// Oracle errors
	ErrRateUnavailable = errors.New("conversion rate unavailable")
)
