package usecase

import (
	"context"

	"github.com/iho/bankledger/internal/domain"
)

// RecordUseCase handles transaction-record queries.
type RecordUseCase struct {
	recordRepo RecordRepository
}

// NewRecordUseCase creates a new RecordUseCase.
func NewRecordUseCase(recordRepo RecordRepository) *RecordUseCase {
	return &RecordUseCase{recordRepo: recordRepo}
}

// ListByAccountInput represents input for listing an account's records.
type ListByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListByAccount lists an account's records, newest first.
func (uc *RecordUseCase) ListByAccount(ctx context.Context, input ListByAccountInput) ([]*domain.Record, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.recordRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

// ListByTransfer lists the two legs of a transfer.
func (uc *RecordUseCase) ListByTransfer(ctx context.Context, transferID string) ([]*domain.Record, error) {
	return uc.recordRepo.ListByTransfer(ctx, transferID)
}
