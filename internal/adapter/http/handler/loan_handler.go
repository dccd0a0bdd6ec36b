package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/golend/internal/adapter/http/dto"
	"github.com/iho/golend/internal/domain"
	"github.com/iho/golend/internal/usecase"
)

// LendingService defines the behavior needed by LoanHandler.
type LendingService interface {
	DepositCollateral(ctx context.Context, input usecase.DepositCollateralInput) (*usecase.DepositCollateralResult, error)
	Borrow(ctx context.Context, input usecase.BorrowInput) (*usecase.BorrowResult, error)
	Repay(ctx context.Context, input usecase.RepayInput) (*usecase.RepayResult, error)
	AddCollateral(ctx context.Context, input usecase.AddCollateralInput) (*usecase.AddCollateralResult, error)
	GetStatus(ctx context.Context, ownerID string) (*usecase.LoanStatusView, error)
	GetHistory(ctx context.Context, input usecase.GetHistoryInput) ([]*domain.Operation, error)
}

// LoanHandler handles loan lifecycle HTTP requests.
type LoanHandler struct {
	lendingUC LendingService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(lendingUC LendingService) *LoanHandler {
	return &LoanHandler{lendingUC: lendingUC}
}

// DepositCollateral locks crypto as collateral and opens a loan.
func (h *LoanHandler) DepositCollateral(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositCollateralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.lendingUC.DepositCollateral(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to open loan", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.DepositCollateralFromResult(result))
}

// Borrow draws base currency against the active loan.
func (h *LoanHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	var req dto.BorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.lendingUC.Borrow(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to borrow", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BorrowFromResult(result))
}

// Repay pays down the active loan.
func (h *LoanHandler) Repay(w http.ResponseWriter, r *http.Request) {
	var req dto.RepayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.lendingUC.Repay(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to repay", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RepayFromResult(result))
}

// AddCollateral tops up the active loan's collateral.
func (h *LoanHandler) AddCollateral(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCollateralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.lendingUC.AddCollateral(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add collateral", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AddCollateralFromResult(result))
}

// Status returns the owner's active loan view.
func (h *LoanHandler) Status(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "missing owner ID", "")
		return
	}

	view, err := h.lendingUC.GetStatus(r.Context(), ownerID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get loan status", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanStatusFromView(view))
}

// History lists the owner's operation log, newest first.
func (h *LoanHandler) History(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "missing owner ID", "")
		return
	}

	ops, err := h.lendingUC.GetHistory(r.Context(), usecase.GetHistoryInput{
		OwnerID: ownerID,
		LoanID:  r.URL.Query().Get("loan_id"),
		Limit:   parseIntQuery(r, "limit", 20),
		Offset:  parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get history", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryResponse{
		Operations: dto.OperationsFromDomain(ops),
		Total:      int64(len(ops)),
	})
}
