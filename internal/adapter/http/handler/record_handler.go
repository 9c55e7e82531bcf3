package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// RecordService defines the behavior needed by RecordHandler.
type RecordService interface {
	ListByAccount(ctx context.Context, input usecase.ListByAccountInput) ([]*domain.Record, error)
	ListByTransfer(ctx context.Context, transferID string) ([]*domain.Record, error)
}

// RecordHandler serves transaction history.
type RecordHandler struct {
	recordUC RecordService
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(recordUC RecordService) *RecordHandler {
	return &RecordHandler{recordUC: recordUC}
}

// ListByAccount lists an account's records, newest first.
func (h *RecordHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	records, err := h.recordUC.ListByAccount(r.Context(), usecase.ListByAccountInput{
		AccountID: id,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeDomainError(w, err, "failed to list records")
		return
	}

	writeJSON(w, http.StatusOK, dto.ListRecordsResponse{
		Records: dto.RecordsFromDomain(records),
		Total:   int64(len(records)),
	})
}

// ListByTransfer lists both legs of a transfer.
func (h *RecordHandler) ListByTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	records, err := h.recordUC.ListByTransfer(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to list transfer records")
		return
	}

	writeJSON(w, http.StatusOK, dto.ListRecordsResponse{
		Records: dto.RecordsFromDomain(records),
		Total:   int64(len(records)),
	})
}
