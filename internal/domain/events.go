package domain

import "time"

// Event types
const (
	EventTypeLoanOpened         = "loan.opened"
	EventTypeLoanBorrowed       = "loan.borrowed"
	EventTypeLoanRepaid         = "loan.repaid"
	EventTypeLoanClosed         = "loan.closed"
	EventTypeInterestAccrued    = "loan.interest_accrued"
	EventTypeLiquidationWarning = "loan.liquidation_warning"
	EventTypeLoanLiquidated     = "loan.liquidated"
)

// Aggregate types
const (
	AggregateTypeLoan    = "loan"
	AggregateTypeAccount = "account"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// LiquidationWarningEvent payload. Emitted when a loan's LTV enters the
// warning band; the notification layer fans it out to the account holder.
type LiquidationWarningEvent struct {
	LoanID           string `json:"loan_id"`
	OwnerID          string `json:"owner_id"`
	CurrentLTV       string `json:"current_ltv"`
	LiquidationPrice int64  `json:"liquidation_price"`
	SellRate         int64  `json:"sell_rate"`
}

// LoanLiquidatedEvent payload.
type LoanLiquidatedEvent struct {
	LoanID         string `json:"loan_id"`
	OwnerID        string `json:"owner_id"`
	Partial        bool   `json:"partial"`
	DebtCleared    int64  `json:"debt_cleared"`
	CollateralSold int64  `json:"collateral_sold"`
	ExecutionRate  int64  `json:"execution_rate"`
}
