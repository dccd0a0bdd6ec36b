package usecase_test

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/golend/internal/usecase"
	"github.com/iho/golend/internal/usecase/mocks"
)

func TestReconciliationUseCase_VerifyBalance(t *testing.T) {
	t.Run("balanced ledger", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
		ledgerRepo.EXPECT().TotalBorrowed(gomock.Any()).Return(int64(125_000), int64(125_000), nil)

		uc := usecase.NewReconciliationUseCase(ledgerRepo)
		report, err := uc.VerifyBalance(context.Background())
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !report.Balanced {
			t.Error("expected balanced report")
		}
		if report.DriftCents != 0 {
			t.Errorf("drift = %d, want 0", report.DriftCents)
		}
	})

	t.Run("drift is surfaced", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
		ledgerRepo.EXPECT().TotalBorrowed(gomock.Any()).Return(int64(125_000), int64(124_900), nil)

		uc := usecase.NewReconciliationUseCase(ledgerRepo)
		report, err := uc.VerifyBalance(context.Background())
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if report.Balanced {
			t.Error("expected unbalanced report")
		}
		if report.DriftCents != 100 {
			t.Errorf("drift = %d, want 100", report.DriftCents)
		}
	})
}
