package domain

import "testing"

func TestAccountValidateCryptoDebit(t *testing.T) {
	acc := &Account{ID: "acc-1", AvailableSats: 500_000}

	tests := []struct {
		name    string
		sats    int64
		wantErr error
	}{
		{"sufficient balance", 300_000, nil},
		{"exact balance", 500_000, nil},
		{"insufficient balance", 500_001, ErrInsufficientFunds},
		{"zero amount", 0, ErrInvalidAmount},
		{"negative amount", -1, ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := acc.ValidateCryptoDebit(tt.sats); err != tt.wantErr {
				t.Errorf("ValidateCryptoDebit(%d) = %v, want %v", tt.sats, err, tt.wantErr)
			}
		})
	}
}

func TestAccountValidateBaseDebit(t *testing.T) {
	acc := &Account{ID: "acc-1", AvailableCents: 10_000}

	if err := acc.ValidateBaseDebit(10_000); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := acc.ValidateBaseDebit(10_001); err != ErrInsufficientFunds {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestAccountCollateralConservation(t *testing.T) {
	acc := &Account{ID: "acc-1", AvailableSats: 500_000}
	totalBefore := acc.AvailableSats + acc.CollateralSats

	acc.PledgeCollateral(300_000)
	if acc.AvailableSats != 200_000 || acc.CollateralSats != 300_000 {
		t.Errorf("after pledge: available=%d collateral=%d", acc.AvailableSats, acc.CollateralSats)
	}

	acc.ReleaseCollateral(300_000)
	if acc.AvailableSats+acc.CollateralSats != totalBefore {
		t.Error("pledge/release must conserve total crypto")
	}
}

func TestAccountBorrowRepayMirror(t *testing.T) {
	acc := &Account{ID: "acc-1"}

	acc.ApplyBorrow(10_000)
	if acc.AvailableCents != 10_000 || acc.BorrowedCents != 10_000 {
		t.Errorf("after borrow: available=%d borrowed=%d", acc.AvailableCents, acc.BorrowedCents)
	}

	acc.ApplyInterest(99)
	if acc.BorrowedCents != 10_099 || acc.InterestAccruedCents != 99 {
		t.Errorf("after interest: borrowed=%d interest=%d", acc.BorrowedCents, acc.InterestAccruedCents)
	}

	acc.ApplyRepay(10_099)
	if acc.BorrowedCents != 0 {
		t.Errorf("after full repay: borrowed=%d, want 0", acc.BorrowedCents)
	}
	if acc.AvailableCents != 0 {
		t.Errorf("after full repay: available=%d, want 0", acc.AvailableCents)
	}
}

func TestAccountLiquidationClamps(t *testing.T) {
	acc := &Account{ID: "acc-1", CollateralSats: 300_000, BorrowedCents: 16_000, InterestAccruedCents: 120}

	acc.ApplyLiquidation(200_000, 9_000, 35)
	if acc.CollateralSats != 100_000 {
		t.Errorf("collateral = %d, want 100000", acc.CollateralSats)
	}
	if acc.BorrowedCents != 7_000 {
		t.Errorf("borrowed = %d, want 7000", acc.BorrowedCents)
	}
	if acc.AvailableCents != 35 {
		t.Errorf("excess proceeds = %d, want 35", acc.AvailableCents)
	}

	// Clearing more debt than the mirror holds clamps at zero.
	acc.ApplyLiquidation(0, 50_000, 0)
	if acc.BorrowedCents != 0 {
		t.Errorf("borrowed = %d, want 0", acc.BorrowedCents)
	}

	acc.ClearDebt()
	acc.ClearInterestAccrued()
	if acc.BorrowedCents != 0 || acc.InterestAccruedCents != 0 {
		t.Error("terminal clamps must zero borrowed and interest buckets")
	}
}
