package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/golend/internal/adapter/http/dto"
	"github.com/iho/golend/internal/usecase"
)

// LiquidationService defines the risk operations needed by AdminHandler.
type LiquidationService interface {
	ListAtRisk(ctx context.Context) ([]usecase.AtRiskLoan, error)
	ForceLiquidate(ctx context.Context, loanID string) (*usecase.LiquidationResult, error)
}

// AccrualService defines the accrual operations needed by AdminHandler.
type AccrualService interface {
	AccrueAll(ctx context.Context, onError func(loanID string, err error)) (*usecase.AccrualReport, error)
}

// ReconciliationService defines the audit operations needed by AdminHandler.
type ReconciliationService interface {
	VerifyBalance(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// AdminHandler handles operator endpoints.
type AdminHandler struct {
	liquidationUC    LiquidationService
	accrualUC        AccrualService
	reconciliationUC ReconciliationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(liquidationUC LiquidationService, accrualUC AccrualService, reconciliationUC ReconciliationService) *AdminHandler {
	return &AdminHandler{
		liquidationUC:    liquidationUC,
		accrualUC:        accrualUC,
		reconciliationUC: reconciliationUC,
	}
}

// ListAtRisk lists loans at or above the warning threshold.
func (h *AdminHandler) ListAtRisk(w http.ResponseWriter, r *http.Request) {
	loans, err := h.liquidationUC.ListAtRisk(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list at-risk loans", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AtRiskLoansFromUseCase(loans))
}

// ForceLiquidate sells a loan's entire outstanding position at the current rate.
func (h *AdminHandler) ForceLiquidate(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "id")
	if loanID == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	result, err := h.liquidationUC.ForceLiquidate(r.Context(), loanID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to liquidate loan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LiquidationFromResult(result))
}

// RunAccrual triggers an interest accrual pass over all open loans.
func (h *AdminHandler) RunAccrual(w http.ResponseWriter, r *http.Request) {
	report, err := h.accrualUC.AccrueAll(r.Context(), nil)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to run accrual", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccrualRunFromReport(report))
}

// Reconciliation cross-checks account debt totals against loan debt totals.
func (h *AdminHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.VerifyBalance(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reconcile", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromReport(report))
}
