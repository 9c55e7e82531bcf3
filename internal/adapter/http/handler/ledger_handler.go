package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	Deposit(ctx context.Context, input usecase.DepositInput) (*domain.Record, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Record, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.TransferResult, error)
}

// LedgerHandler handles deposit, withdrawal and transfer requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Deposit deposits into an account.
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	record, err := h.ledgerUC.Deposit(r.Context(), usecase.DepositInput{
		AccountID:   id,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, err, "deposit rejected")
		return
	}

	writeJSON(w, http.StatusCreated, dto.RecordFromDomain(record))
}

// Withdraw withdraws from an account.
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	record, err := h.ledgerUC.Withdraw(r.Context(), usecase.WithdrawInput{
		AccountID:   id,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, err, "withdrawal rejected")
		return
	}

	writeJSON(w, http.StatusCreated, dto.RecordFromDomain(record))
}

// Transfer moves funds between two accounts.
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.ledgerUC.Transfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "transfer rejected")
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(result))
}
