package usecase

import (
	"context"
	"time"

	"github.com/iho/bankledger/internal/domain"
)

// NullOutboxRepository discards staged events. It stands in for the real
// outbox when event publishing is disabled.
type NullOutboxRepository struct{}

func (NullOutboxRepository) Create(_ context.Context, _ Transaction, _ *domain.OutboxEvent) error {
	return nil
}

func (NullOutboxRepository) GetUnpublished(_ context.Context, _ int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (NullOutboxRepository) MarkPublished(_ context.Context, _ string, _ time.Time) error {
	return nil
}

func (NullOutboxRepository) DeletePublished(_ context.Context, _ time.Time) error {
	return nil
}
