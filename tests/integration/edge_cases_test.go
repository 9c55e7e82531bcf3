package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

func TestDepositValidationEdgeCases(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	stack := newLedgerStack(t)
	stack.DB.TruncateAll(ctx)

	account := stack.DB.CreateTestAccount(ctx, "edge", decimal.RequireFromString("50.00"))

	tests := []struct {
		name     string
		amount   string
		expected error
	}{
		{"zero amount", "0", domain.ErrInvalidAmount},
		{"negative amount", "-10.00", domain.ErrInvalidAmount},
		{"sub-cent precision", "10.001", domain.ErrAmountTooPrecise},
		{"too large", "10000000000000.00", domain.ErrAmountTooLarge},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := stack.LedgerUC.Deposit(ctx, usecase.DepositInput{
				AccountID: account.ID,
				Amount:    decimal.RequireFromString(tt.amount),
			})
			if !errors.Is(err, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, err)
			}
		})
	}

	// None of the rejected operations should have left a record.
	records, err := stack.RecordUC.ListByAccount(ctx, usecase.ListByAccountInput{AccountID: account.ID, Limit: 10})
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestOperationsOnMissingAccount(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	stack := newLedgerStack(t)
	stack.DB.TruncateAll(ctx)

	_, err := stack.LedgerUC.Deposit(ctx, usecase.DepositInput{
		AccountID: "missing",
		Amount:    decimal.RequireFromString("10.00"),
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound on deposit, got %v", err)
	}

	_, err = stack.LedgerUC.Withdraw(ctx, usecase.WithdrawInput{
		AccountID: "missing",
		Amount:    decimal.RequireFromString("10.00"),
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound on withdrawal, got %v", err)
	}
}

func TestWithdrawExactBalanceToZero(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	stack := newLedgerStack(t)
	stack.DB.TruncateAll(ctx)

	account := stack.DB.CreateTestAccount(ctx, "drainable", decimal.RequireFromString("25.00"))

	record, err := stack.LedgerUC.Withdraw(ctx, usecase.WithdrawInput{
		AccountID: account.ID,
		Amount:    decimal.RequireFromString("25.00"),
	})
	if err != nil {
		t.Fatalf("expected exact-balance withdrawal to succeed: %v", err)
	}
	if !record.CurrentBalance.IsZero() {
		t.Fatalf("expected zero balance, got %s", record.CurrentBalance)
	}

	// The next withdrawal must fail, the account is empty.
	_, err = stack.LedgerUC.Withdraw(ctx, usecase.WithdrawInput{
		AccountID: account.ID,
		Amount:    decimal.RequireFromString("0.01"),
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestRecordHistoryIsOrderedNewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	stack := newLedgerStack(t)
	stack.DB.TruncateAll(ctx)

	account := stack.DB.CreateTestAccount(ctx, "history", decimal.RequireFromString("100.00"))

	amounts := []string{"1.00", "2.00", "3.00"}
	for _, a := range amounts {
		if _, err := stack.LedgerUC.Deposit(ctx, usecase.DepositInput{
			AccountID: account.ID,
			Amount:    decimal.RequireFromString(a),
		}); err != nil {
			t.Fatalf("deposit failed: %v", err)
		}
	}

	records, err := stack.RecordUC.ListByAccount(ctx, usecase.ListByAccountInput{AccountID: account.ID, Limit: 10})
	if err != nil {
		t.Fatalf("failed to list records: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if !records[0].Amount.Equal(decimal.RequireFromString("3.00")) {
		t.Fatalf("expected newest record first, got %s", records[0].Amount)
	}

	// Running balances chain backwards through the history.
	for i := 0; i < len(records)-1; i++ {
		if !records[i].PreviousBalance.Equal(records[i+1].CurrentBalance) {
			t.Fatalf("balance chain broken between records %d and %d", i, i+1)
		}
	}
}
