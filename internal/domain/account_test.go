package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccount_ValidateDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		debitAmount decimal.Decimal
		expectError bool
	}{
		{
			name:        "debit more than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(150),
			expectError: true,
		},
		{
			name:        "debit exact balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(100),
			expectError: false,
		},
		{
			name:        "debit less than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(50),
			expectError: false,
		},
		{
			name:        "debit one cent over balance",
			balance:     decimal.RequireFromString("100.00"),
			debitAmount: decimal.RequireFromString("100.01"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance}

			err := acc.ValidateDebit(tt.debitAmount)

			if tt.expectError && !errors.Is(err, ErrInsufficientFunds) {
				t.Errorf("expected ErrInsufficientFunds, got %v", err)
			}

			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAccount_ApplyDebitCredit(t *testing.T) {
	acc := &Account{Balance: decimal.RequireFromString("1000.00")}

	if got := acc.ApplyDebit(decimal.RequireFromString("250.00")); !got.Equal(decimal.RequireFromString("750.00")) {
		t.Errorf("expected 750.00 after debit, got %s", got)
	}

	if got := acc.ApplyCredit(decimal.RequireFromString("250.00")); !got.Equal(decimal.RequireFromString("1250.00")) {
		t.Errorf("expected 1250.00 after credit, got %s", got)
	}

	// Apply helpers never mutate the account itself.
	if !acc.Balance.Equal(decimal.RequireFromString("1000.00")) {
		t.Errorf("balance mutated to %s", acc.Balance)
	}
}

func TestRecordKind_IsCredit(t *testing.T) {
	credits := []RecordKind{KindDeposit, KindTransferIn}
	debits := []RecordKind{KindWithdrawal, KindTransferOut}

	for _, k := range credits {
		if !k.IsCredit() {
			t.Errorf("expected %s to be a credit", k)
		}
	}

	for _, k := range debits {
		if k.IsCredit() {
			t.Errorf("expected %s to be a debit", k)
		}
	}
}
