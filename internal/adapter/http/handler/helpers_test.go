package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/golend/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	testCases := []struct {
		err      error
		expected int
	}{
		{domain.ErrAccountNotFound, http.StatusNotFound},
		{domain.ErrLoanNotFound, http.StatusNotFound},
		{domain.ErrNoActiveLoan, http.StatusNotFound},
		{domain.ErrLoanAlreadyActive, http.StatusConflict},
		{domain.ErrLoanClosed, http.StatusConflict},
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{domain.ErrInvalidAccountID, http.StatusBadRequest},
		{domain.ErrInvalidLTVRatio, http.StatusBadRequest},
		{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{domain.ErrInsufficientCapacity, http.StatusUnprocessableEntity},
		{domain.ErrExceedsOutstandingDebt, http.StatusUnprocessableEntity},
		{domain.ErrInsufficientCollateral, http.StatusUnprocessableEntity},
		{domain.ErrRateUnavailable, http.StatusServiceUnavailable},
		{errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			if got := mapDomainError(tc.err); got != tc.expected {
				t.Fatalf("mapDomainError(%v) = %d, expected %d", tc.err, got, tc.expected)
			}
		})
	}
}

func TestMapDomainError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("open loan: %w", domain.ErrLoanAlreadyActive)
	if got := mapDomainError(wrapped); got != http.StatusConflict {
		t.Fatalf("expected wrapped error to map to 409, got %d", got)
	}
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/loans?limit=15&bad=xyz", nil)

	if got := parseIntQuery(req, "limit", 20); got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}
	if got := parseIntQuery(req, "missing", 20); got != 20 {
		t.Fatalf("expected default 20, got %d", got)
	}
	if got := parseIntQuery(req, "bad", 7); got != 7 {
		t.Fatalf("expected default 7 for unparsable value, got %d", got)
	}
}
