package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAccountID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid ulid-like", "01J8ZQ4X5T9GVMB2C3D4E5F6G7", false},
		{"valid with dash", "acc-1", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
		{"invalid characters", "acc 1;drop", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccountID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAccountID(%q) = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateAmount(0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if err := ValidateAmount(MaxAmount + 1); !errors.Is(err, ErrAmountTooLarge) {
		t.Errorf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidateLTVRatio(t *testing.T) {
	for _, ratio := range []int64{1, 60, 90} {
		if err := ValidateLTVRatio(ratio); err != nil {
			t.Errorf("ValidateLTVRatio(%d) = %v", ratio, err)
		}
	}
	for _, ratio := range []int64{0, -1, 91, 100} {
		if err := ValidateLTVRatio(ratio); !errors.Is(err, ErrInvalidLTVRatio) {
			t.Errorf("ValidateLTVRatio(%d) = %v, want ErrInvalidLTVRatio", ratio, err)
		}
	}
}

func TestValidatePagination(t *testing.T) {
	limit, offset := ValidatePagination(0, -5)
	if limit != 50 || offset != 0 {
		t.Errorf("got limit=%d offset=%d, want defaults", limit, offset)
	}

	limit, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Errorf("limit = %d, want capped at 1000", limit)
	}
}
