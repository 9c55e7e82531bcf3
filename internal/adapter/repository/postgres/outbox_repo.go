package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// Create stages an outbox event in the same transaction as the ledger
// mutation it describes.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	pgxTx := tx.(*Tx).PgxTx()

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	_, err = pgxTx.Exec(ctx,
		`INSERT INTO outbox_events (id, aggregate_id, aggregate_type, event_type, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID,
		event.AggregateID,
		event.AggregateType,
		event.EventType,
		payload,
		timeToPgTimestamptz(event.CreatedAt),
	)

	return storeErr(err)
}

// GetUnpublished retrieves unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at
		 FROM outbox_events
		 WHERE published = FALSE
		 ORDER BY created_at
		 LIMIT $1`, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var events []*domain.OutboxEvent
	for rows.Next() {
		var (
			event     domain.OutboxEvent
			payload   []byte
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(&event.ID, &event.AggregateID, &event.AggregateType, &event.EventType, &payload, &createdAt)
		if err != nil {
			return nil, storeErr(err)
		}

		if err := json.Unmarshal(payload, &event.Payload); err != nil {
			return nil, err
		}

		event.CreatedAt = createdAt.Time
		events = append(events, &event)
	}

	return events, storeErr(rows.Err())
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE outbox_events SET published = TRUE, published_at = $2 WHERE id = $1`,
		id, timeToPgTimestamptz(publishedAt))

	return storeErr(err)
}

// DeletePublished removes published events created before the cutoff.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM outbox_events WHERE published = TRUE AND created_at < $1`,
		timeToPgTimestamptz(before))

	return storeErr(err)
}
