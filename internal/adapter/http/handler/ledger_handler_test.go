package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

type ledgerServiceStub struct {
	depositFn  func(ctx context.Context, input usecase.DepositInput) (*domain.Record, error)
	withdrawFn func(ctx context.Context, input usecase.WithdrawInput) (*domain.Record, error)
	transferFn func(ctx context.Context, input usecase.TransferInput) (*domain.TransferResult, error)
}

func (s *ledgerServiceStub) Deposit(ctx context.Context, input usecase.DepositInput) (*domain.Record, error) {
	return s.depositFn(ctx, input)
}

func (s *ledgerServiceStub) Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Record, error) {
	return s.withdrawFn(ctx, input)
}

func (s *ledgerServiceStub) Transfer(ctx context.Context, input usecase.TransferInput) (*domain.TransferResult, error) {
	return s.transferFn(ctx, input)
}

func TestLedgerHandler_Deposit_Success(t *testing.T) {
	record := &domain.Record{
		ID:             "rec-1",
		AccountID:      "acc-1",
		Kind:           domain.KindDeposit,
		Amount:         decimal.RequireFromString("25.00"),
		CurrentBalance: decimal.RequireFromString("125.00"),
	}

	var captured usecase.DepositInput
	handler := NewLedgerHandler(&ledgerServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (*domain.Record, error) {
			captured = input
			return record, nil
		},
	})

	body, _ := json.Marshal(dto.DepositRequest{
		Amount:      decimal.RequireFromString("25.00"),
		Description: "payroll",
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/deposit", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Deposit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.AccountID != "acc-1" || captured.Description != "payroll" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
	if !captured.Amount.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected amount 25.00, got %s", captured.Amount)
	}

	var resp dto.RecordResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "rec-1" || resp.Kind != string(domain.KindDeposit) {
		t.Fatalf("unexpected record response: %+v", resp)
	}
}

func TestLedgerHandler_Deposit_InvalidAmount(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (*domain.Record, error) {
			return nil, domain.ErrInvalidAmount
		},
	})

	body, _ := json.Marshal(dto.DepositRequest{Amount: decimal.RequireFromString("-5.00")})
	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/deposit", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Deposit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLedgerHandler_Deposit_InvalidJSON(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (*domain.Record, error) {
			t.Fatal("Deposit should not be called for invalid payload")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/deposit", bytes.NewBufferString("{invalid"))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Deposit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLedgerHandler_Withdraw_Success(t *testing.T) {
	record := &domain.Record{
		ID:        "rec-2",
		AccountID: "acc-1",
		Kind:      domain.KindWithdrawal,
		Amount:    decimal.RequireFromString("-10.00"),
	}

	handler := NewLedgerHandler(&ledgerServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (*domain.Record, error) {
			if input.AccountID != "acc-1" {
				t.Fatalf("expected account acc-1, got %s", input.AccountID)
			}
			return record, nil
		},
	})

	body, _ := json.Marshal(dto.WithdrawRequest{Amount: decimal.RequireFromString("10.00")})
	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/withdraw", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Withdraw(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLedgerHandler_Withdraw_InsufficientFunds(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (*domain.Record, error) {
			return nil, domain.ErrInsufficientFunds
		},
	})

	body, _ := json.Marshal(dto.WithdrawRequest{Amount: decimal.RequireFromString("1000.00")})
	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/withdraw", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Withdraw(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "withdrawal rejected" {
		t.Fatalf("unexpected error message: %q", resp.Error)
	}
}

func TestLedgerHandler_Transfer_Success(t *testing.T) {
	result := &domain.TransferResult{
		TransferID: "tr-1",
		Out: &domain.Record{
			ID:        "rec-out",
			AccountID: "acc-1",
			Kind:      domain.KindTransferOut,
			Amount:    decimal.RequireFromString("-30.00"),
		},
		In: &domain.Record{
			ID:        "rec-in",
			AccountID: "acc-2",
			Kind:      domain.KindTransferIn,
			Amount:    decimal.RequireFromString("30.00"),
		},
	}

	var captured usecase.TransferInput
	handler := NewLedgerHandler(&ledgerServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.TransferResult, error) {
			captured = input
			return result, nil
		},
	})

	body, _ := json.Marshal(dto.TransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        decimal.RequireFromString("30.00"),
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Transfer(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.FromAccountID != "acc-1" || captured.ToAccountID != "acc-2" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TransferID != "tr-1" || resp.Out.ID != "rec-out" || resp.In.ID != "rec-in" {
		t.Fatalf("unexpected transfer response: %+v", resp)
	}
}

func TestLedgerHandler_Transfer_SelfTransfer(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.TransferResult, error) {
			return nil, domain.ErrSelfTransfer
		},
	})

	body, _ := json.Marshal(dto.TransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-1",
		Amount:        decimal.RequireFromString("30.00"),
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Transfer(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLedgerHandler_Transfer_RecipientNotFound(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.TransferResult, error) {
			return nil, domain.ErrRecipientNotFound
		},
	})

	body, _ := json.Marshal(dto.TransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-missing",
		Amount:        decimal.RequireFromString("30.00"),
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Transfer(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
