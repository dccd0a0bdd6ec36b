package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// Validation errors
var (
	ErrInvalidAccountID = errors.New("invalid account id")
	ErrAmountTooLarge   = errors.New("amount exceeds maximum allowed")
)

// Validation constants
const (
	// MaxAmount bounds any single movement; large enough for every
	// realistic position, small enough that the decimal intermediates in
	// the valuation math stay far from int64 overflow.
	MaxAmount = int64(1_000_000_000_000_000) // 1e15 smallest units

	MinLTVRatio = 1
	MaxLTVRatio = 90
)

var accountIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateAccountID validates an account identifier.
func ValidateAccountID(id string) error {
	if !accountIDRegex.MatchString(id) {
		return ErrInvalidAccountID
	}
	return nil
}

// ValidateAmount validates a movement amount in smallest units.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > MaxAmount {
		return fmt.Errorf("%w: maximum is %d", ErrAmountTooLarge, MaxAmount)
	}
	return nil
}

// ValidateLTVRatio validates a loan-to-value ratio percentage.
func ValidateLTVRatio(ratio int64) error {
	if ratio < MinLTVRatio || ratio > MaxLTVRatio {
		return fmt.Errorf("%w: must be between %d and %d", ErrInvalidLTVRatio, MinLTVRatio, MaxLTVRatio)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
