package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankledger/internal/usecase"
)

// ConsistencyService defines the behavior needed by ConsistencyHandler.
type ConsistencyService interface {
	CheckConsistency(ctx context.Context) (bool, error)
	CheckAccount(ctx context.Context, accountID string) (bool, error)
}

// ConsistencyHandler exposes ledger reconciliation checks.
type ConsistencyHandler struct {
	reconciliationUC ConsistencyService
}

// NewConsistencyHandler creates a new ConsistencyHandler.
func NewConsistencyHandler(reconciliationUC ConsistencyService) *ConsistencyHandler {
	return &ConsistencyHandler{reconciliationUC: reconciliationUC}
}

// Check verifies the whole ledger.
func (h *ConsistencyHandler) Check(w http.ResponseWriter, r *http.Request) {
	consistent, err := h.reconciliationUC.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"consistent": false,
				"message":    err.Error(),
			})
			return
		}
		writeDomainError(w, err, "failed to check consistency")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"consistent": consistent})
}

// CheckAccount verifies a single account against its records.
func (h *ConsistencyHandler) CheckAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	consistent, err := h.reconciliationUC.CheckAccount(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"account_id": id,
				"consistent": false,
				"message":    err.Error(),
			})
			return
		}
		writeDomainError(w, err, "failed to check account")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": id,
		"consistent": consistent,
	})
}
