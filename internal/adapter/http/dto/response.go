package dto

import (
	"time"

	"github.com/iho/golend/internal/domain"
	"github.com/iho/golend/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID                   string    `json:"id"`
	AvailableSats        int64     `json:"available_sats"`
	CollateralSats       int64     `json:"collateral_sats"`
	AvailableCents       int64     `json:"available_cents"`
	BorrowedCents        int64     `json:"borrowed_cents"`
	InterestAccruedCents int64     `json:"interest_accrued_cents"`
	Version              int64     `json:"version"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:                   a.ID,
		AvailableSats:        a.AvailableSats,
		CollateralSats:       a.CollateralSats,
		AvailableCents:       a.AvailableCents,
		BorrowedCents:        a.BorrowedCents,
		InterestAccruedCents: a.InterestAccruedCents,
		Version:              a.Version,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// DepositCollateralResponse is returned after a loan is opened.
type DepositCollateralResponse struct {
	LoanID           string `json:"loan_id"`
	MaxBorrowable    int64  `json:"max_borrowable_cents"`
	LiquidationPrice int64  `json:"liquidation_price"`
}

// DepositCollateralFromResult converts a use case result to a response.
func DepositCollateralFromResult(r *usecase.DepositCollateralResult) *DepositCollateralResponse {
	return &DepositCollateralResponse{
		LoanID:           r.LoanID,
		MaxBorrowable:    r.MaxBorrowable,
		LiquidationPrice: r.LiquidationPrice,
	}
}

// BorrowResponse is returned after a successful borrow.
type BorrowResponse struct {
	NewBorrowedTotal  int64 `json:"new_borrowed_total_cents"`
	AvailableCapacity int64 `json:"available_capacity_cents"`
	LiquidationPrice  int64 `json:"liquidation_price"`
}

// BorrowFromResult converts a use case result to a response.
func BorrowFromResult(r *usecase.BorrowResult) *BorrowResponse {
	return &BorrowResponse{
		NewBorrowedTotal:  r.NewBorrowedTotal,
		AvailableCapacity: r.AvailableCapacity,
		LiquidationPrice:  r.LiquidationPrice,
	}
}

// RepayResponse is returned after a successful repayment.
type RepayResponse struct {
	RemainingDebt          int64  `json:"remaining_debt_cents"`
	Status                 string `json:"status"`
	CollateralReturned     int64  `json:"collateral_returned_sats"`
	MinimumInterestApplied int64  `json:"minimum_interest_applied_cents"`
}

// RepayFromResult converts a use case result to a response.
func RepayFromResult(r *usecase.RepayResult) *RepayResponse {
	return &RepayResponse{
		RemainingDebt:          r.RemainingDebt,
		Status:                 string(r.Status),
		CollateralReturned:     r.CollateralReturned,
		MinimumInterestApplied: r.MinimumInterestApplied,
	}
}

// AddCollateralResponse is returned after a collateral top-up.
type AddCollateralResponse struct {
	NewTotalCollateral int64  `json:"new_total_collateral_sats"`
	NewLTV             string `json:"new_ltv"`
	LiquidationPrice   int64  `json:"liquidation_price"`
	AvailableCapacity  int64  `json:"available_capacity_cents"`
}

// AddCollateralFromResult converts a use case result to a response.
func AddCollateralFromResult(r *usecase.AddCollateralResult) *AddCollateralResponse {
	return &AddCollateralResponse{
		NewTotalCollateral: r.NewTotalCollateral,
		NewLTV:             r.NewLTV.StringFixed(2),
		LiquidationPrice:   r.LiquidationPrice,
		AvailableCapacity:  r.AvailableCapacity,
	}
}

// LoanStatusResponse represents the active loan's current state.
type LoanStatusResponse struct {
	LoanID             string    `json:"loan_id"`
	OwnerID            string    `json:"owner_id"`
	CollateralSats     int64     `json:"collateral_sats"`
	BorrowedCents      int64     `json:"borrowed_cents"`
	PrincipalCents     int64     `json:"principal_cents"`
	InterestAccrued    int64     `json:"interest_accrued_cents"`
	CurrentLTV         string    `json:"current_ltv"`
	RiskStatus         string    `json:"risk_status"`
	MaxBorrowable      int64     `json:"max_borrowable_cents"`
	AvailableCapacity  int64     `json:"available_capacity_cents"`
	MinimumInterestDue int64     `json:"minimum_interest_due_cents"`
	TotalDue           int64     `json:"total_due_cents"`
	LiquidationPrice   int64     `json:"liquidation_price"`
	InterestRate       string    `json:"interest_rate"`
	CreatedAt          time.Time `json:"created_at"`
}

// LoanStatusFromView converts a use case status view to a response.
func LoanStatusFromView(v *usecase.LoanStatusView) *LoanStatusResponse {
	return &LoanStatusResponse{
		LoanID:             v.LoanID,
		OwnerID:            v.OwnerID,
		CollateralSats:     v.CollateralSats,
		BorrowedCents:      v.BorrowedCents,
		PrincipalCents:     v.PrincipalCents,
		InterestAccrued:    v.InterestAccrued,
		CurrentLTV:         v.CurrentLTV.StringFixed(2),
		RiskStatus:         string(v.RiskStatus),
		MaxBorrowable:      v.MaxBorrowable,
		AvailableCapacity:  v.AvailableCapacity,
		MinimumInterestDue: v.MinimumInterestDue,
		TotalDue:           v.TotalDue,
		LiquidationPrice:   v.LiquidationPrice,
		InterestRate:       v.InterestRate.StringFixed(2),
		CreatedAt:          v.CreatedAt,
	}
}

// OperationResponse represents an operation record in API responses.
type OperationResponse struct {
	ID              string         `json:"id"`
	LoanID          string         `json:"loan_id"`
	OwnerID         string         `json:"owner_id"`
	Type            string         `json:"type"`
	BaseDeltaCents  int64          `json:"base_delta_cents"`
	CryptoDeltaSats int64          `json:"crypto_delta_sats"`
	ExecutionRate   int64          `json:"execution_rate,omitempty"`
	Detail          map[string]any `json:"detail,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// OperationFromDomain converts a domain operation to a response.
func OperationFromDomain(op *domain.Operation) *OperationResponse {
	return &OperationResponse{
		ID:              op.ID,
		LoanID:          op.LoanID,
		OwnerID:         op.OwnerID,
		Type:            string(op.Type),
		BaseDeltaCents:  op.BaseDeltaCents,
		CryptoDeltaSats: op.CryptoDeltaSats,
		ExecutionRate:   op.ExecutionRate,
		Detail:          op.Detail,
		CreatedAt:       op.CreatedAt,
	}
}

// OperationsFromDomain converts domain operations to responses.
func OperationsFromDomain(ops []*domain.Operation) []*OperationResponse {
	result := make([]*OperationResponse, len(ops))
	for i, op := range ops {
		result[i] = OperationFromDomain(op)
	}
	return result
}

// HistoryResponse wraps a page of operation records.
type HistoryResponse struct {
	Operations []*OperationResponse `json:"operations"`
	Total      int64                `json:"total"`
}

// AtRiskLoanResponse represents a loan above the warning threshold.
type AtRiskLoanResponse struct {
	LoanID     string `json:"loan_id"`
	OwnerID    string `json:"owner_id"`
	CurrentLTV string `json:"current_ltv"`
	RiskStatus string `json:"risk_status"`
}

// AtRiskLoansFromUseCase converts at-risk rows to responses.
func AtRiskLoansFromUseCase(loans []usecase.AtRiskLoan) []*AtRiskLoanResponse {
	result := make([]*AtRiskLoanResponse, len(loans))
	for i, l := range loans {
		result[i] = &AtRiskLoanResponse{
			LoanID:     l.LoanID,
			OwnerID:    l.OwnerID,
			CurrentLTV: l.CurrentLTV.StringFixed(2),
			RiskStatus: string(l.RiskStatus),
		}
	}
	return result
}

// LiquidationResponse is returned after an admin-triggered liquidation.
type LiquidationResponse struct {
	LoanID         string                   `json:"loan_id"`
	Outcome        string                   `json:"outcome"`
	CurrentLTV     string                   `json:"current_ltv"`
	ShortfallCents int64                    `json:"shortfall_cents,omitempty"`
	Detail         domain.LiquidationDetail `json:"detail"`
}

// LiquidationFromResult converts a use case result to a response.
func LiquidationFromResult(r *usecase.LiquidationResult) *LiquidationResponse {
	return &LiquidationResponse{
		LoanID:         r.LoanID,
		Outcome:        string(r.Outcome),
		CurrentLTV:     r.CurrentLTV.StringFixed(2),
		ShortfallCents: r.ShortfallCents,
		Detail:         r.Detail,
	}
}

// ReconciliationResponse reports the account-vs-loan debt cross-check.
type ReconciliationResponse struct {
	AccountBorrowedCents int64     `json:"account_borrowed_cents"`
	LoanBorrowedCents    int64     `json:"loan_borrowed_cents"`
	DriftCents           int64     `json:"drift_cents"`
	Balanced             bool      `json:"balanced"`
	CheckedAt            time.Time `json:"checked_at"`
}

// ReconciliationFromReport converts a use case report to a response.
func ReconciliationFromReport(r *usecase.ReconciliationReport) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountBorrowedCents: r.AccountBorrowedCents,
		LoanBorrowedCents:    r.LoanBorrowedCents,
		DriftCents:           r.DriftCents,
		Balanced:             r.Balanced,
		CheckedAt:            r.CheckedAt,
	}
}

// AccrualRunResponse reports an admin-triggered accrual pass.
type AccrualRunResponse struct {
	Processed          int   `json:"processed"`
	Accrued            int   `json:"accrued"`
	Skipped            int   `json:"skipped"`
	Failed             int   `json:"failed"`
	TotalInterestCents int64 `json:"total_interest_cents"`
}

// AccrualRunFromReport converts a use case report to a response.
func AccrualRunFromReport(r *usecase.AccrualReport) *AccrualRunResponse {
	return &AccrualRunResponse{
		Processed:          r.Processed,
		Accrued:            r.Accrued,
		Skipped:            r.Skipped,
		Failed:             r.Failed,
		TotalInterestCents: r.TotalInterestCents,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
