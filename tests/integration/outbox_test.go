package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

func TestOperationsStageOutboxEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	stack := newLedgerStack(t)
	stack.DB.TruncateAll(ctx)

	from := stack.DB.CreateTestAccount(ctx, "payer", decimal.RequireFromString("100.00"))
	to := stack.DB.CreateTestAccount(ctx, "payee", decimal.Zero)

	if _, err := stack.LedgerUC.Deposit(ctx, usecase.DepositInput{
		AccountID: from.ID,
		Amount:    decimal.RequireFromString("20.00"),
	}); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	if _, err := stack.LedgerUC.Transfer(ctx, usecase.TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.RequireFromString("15.00"),
	}); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	events, err := stack.OutboxRepo.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("failed to fetch unpublished events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 staged events, got %d", len(events))
	}

	types := map[string]bool{}
	for _, e := range events {
		types[e.EventType] = true
	}
	if !types[domain.EventTypeDepositRecorded] || !types[domain.EventTypeTransferRecorded] {
		t.Fatalf("expected deposit and transfer events, got %v", types)
	}
}

func TestFailedOperationStagesNoEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	stack := newLedgerStack(t)
	stack.DB.TruncateAll(ctx)

	account := stack.DB.CreateTestAccount(ctx, "broke", decimal.RequireFromString("5.00"))

	if _, err := stack.LedgerUC.Withdraw(ctx, usecase.WithdrawInput{
		AccountID: account.ID,
		Amount:    decimal.RequireFromString("50.00"),
	}); err == nil {
		t.Fatalf("expected withdrawal to fail")
	}

	events, err := stack.OutboxRepo.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("failed to fetch unpublished events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events after rolled-back operation, got %d", len(events))
	}
}

func TestMarkPublishedRetiresEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	stack := newLedgerStack(t)
	stack.DB.TruncateAll(ctx)

	account := stack.DB.CreateTestAccount(ctx, "publisher", decimal.RequireFromString("100.00"))

	if _, err := stack.LedgerUC.Deposit(ctx, usecase.DepositInput{
		AccountID: account.ID,
		Amount:    decimal.RequireFromString("20.00"),
	}); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	events, err := stack.OutboxRepo.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("failed to fetch unpublished events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 staged event, got %d", len(events))
	}

	if err := stack.OutboxRepo.MarkPublished(ctx, events[0].ID, time.Now().UTC()); err != nil {
		t.Fatalf("failed to mark published: %v", err)
	}

	remaining, err := stack.OutboxRepo.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("failed to fetch unpublished events: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no unpublished events, got %d", len(remaining))
	}

	// Retired events are swept once they pass retention.
	if err := stack.OutboxRepo.DeletePublished(ctx, time.Now().UTC().Add(time.Minute)); err != nil {
		t.Fatalf("failed to sweep published events: %v", err)
	}
}
