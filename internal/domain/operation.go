package domain

import "time"

// OperationType identifies a state-changing lending action.
type OperationType string

const (
	OperationCollateralDeposit  OperationType = "COLLATERAL_DEPOSIT"
	OperationBorrow             OperationType = "BORROW"
	OperationRepay              OperationType = "REPAY"
	OperationAddCollateral      OperationType = "ADD_COLLATERAL"
	OperationInterestAccrual    OperationType = "INTEREST_ACCRUAL"
	OperationPartialLiquidation OperationType = "PARTIAL_LIQUIDATION"
	OperationFullLiquidation    OperationType = "FULL_LIQUIDATION"
)

// Operation is one immutable entry in the loan's audit trail. Exactly one is
// appended, in the same transaction, for every executed mutation. Deltas are
// signed from the loan position's perspective: positive when the position
// grows (more collateral pledged, more debt outstanding), negative when it
// shrinks (repayment, collateral sold or returned).
type Operation struct {
	ID              string
	LoanID          string
	OwnerID         string
	Type            OperationType
	BaseDeltaCents  int64
	CryptoDeltaSats int64
	ExecutionRate   int64
	Detail          map[string]any
	CreatedAt       time.Time
}

// LiquidationDetail is the structured breakdown recorded on liquidation
// operations, required for audit reconstruction.
type LiquidationDetail struct {
	DebtCleared            int64 `json:"debt_cleared"`
	CollateralSold         int64 `json:"collateral_sold"`
	CollateralReturned     int64 `json:"collateral_returned"`
	ExecutionRate          int64 `json:"execution_rate"`
	MinimumInterestApplied int64 `json:"minimum_interest_applied"`
	ExcessProceeds         int64 `json:"excess_proceeds"`
}

// ToMap renders the detail for the operation's JSONB column.
func (d LiquidationDetail) ToMap() map[string]any {
	return map[string]any{
		"debt_cleared":             d.DebtCleared,
		"collateral_sold":          d.CollateralSold,
		"collateral_returned":      d.CollateralReturned,
		"execution_rate":           d.ExecutionRate,
		"minimum_interest_applied": d.MinimumInterestApplied,
		"excess_proceeds":          d.ExcessProceeds,
	}
}
