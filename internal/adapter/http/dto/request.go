package dto

import (
	"github.com/iho/golend/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	ID string `json:"id"`
}

// DepositFundsRequest represents a request to credit an account's available
// buckets. Exactly one of the two amounts should be positive.
type DepositFundsRequest struct {
	Sats  int64 `json:"sats,omitempty"`
	Cents int64 `json:"cents,omitempty"`
}

// DepositCollateralRequest represents a request to open a loan.
type DepositCollateralRequest struct {
	OwnerID  string `json:"owner_id"`
	Sats     int64  `json:"sats"`
	LTVRatio int64  `json:"ltv_ratio,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositCollateralRequest) ToUseCaseInput() usecase.DepositCollateralInput {
	return usecase.DepositCollateralInput{
		OwnerID:  r.OwnerID,
		Sats:     r.Sats,
		LTVRatio: r.LTVRatio,
	}
}

// BorrowRequest represents a request to draw base currency against a loan.
type BorrowRequest struct {
	OwnerID string `json:"owner_id"`
	Cents   int64  `json:"cents"`
}

// ToUseCaseInput converts to use case input.
func (r *BorrowRequest) ToUseCaseInput() usecase.BorrowInput {
	return usecase.BorrowInput{
		OwnerID: r.OwnerID,
		Cents:   r.Cents,
	}
}

// RepayRequest represents a request to pay down a loan.
type RepayRequest struct {
	OwnerID string `json:"owner_id"`
	Cents   int64  `json:"cents"`
}

// ToUseCaseInput converts to use case input.
func (r *RepayRequest) ToUseCaseInput() usecase.RepayInput {
	return usecase.RepayInput{
		OwnerID: r.OwnerID,
		Cents:   r.Cents,
	}
}

// AddCollateralRequest represents a request to top up loan collateral.
type AddCollateralRequest struct {
	OwnerID string `json:"owner_id"`
	Sats    int64  `json:"sats"`
}

// ToUseCaseInput converts to use case input.
func (r *AddCollateralRequest) ToUseCaseInput() usecase.AddCollateralInput {
	return usecase.AddCollateralInput{
		OwnerID: r.OwnerID,
		Sats:    r.Sats,
	}
}
