// Package eventpublisher drains the transactional outbox. Events are
// staged in the same store transaction as the ledger mutation they
// describe, so a crash between commit and publish loses nothing: the
// poller picks the event up on the next tick.
package eventpublisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
	"github.com/iho/bankledger/internal/usecase"
)

// Publisher delivers a single outbox event to an external system.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// OutboxPoller periodically fetches unpublished events and hands them to a
// Publisher. Delivery is at-least-once: an event is marked published only
// after Publish succeeds.
type OutboxPoller struct {
	outboxRepo usecase.OutboxRepository
	publisher  Publisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	batchSize  int
	interval   time.Duration
	retention  time.Duration
}

// Config for OutboxPoller.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	BatchSize  int           // events fetched per tick
	Interval   time.Duration // polling interval
	Retention  time.Duration // how long published events are kept
}

// NewOutboxPoller creates a new OutboxPoller.
func NewOutboxPoller(cfg Config) *OutboxPoller {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Retention == 0 {
		cfg.Retention = 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &OutboxPoller{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		retention:  cfg.Retention,
	}
}

// Start runs the polling loop until the context is cancelled.
func (p *OutboxPoller) Start(ctx context.Context) error {
	p.logger.Info("outbox poller started",
		slog.Int("batch_size", p.batchSize),
		slog.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Drain whatever accumulated while we were down.
	if err := p.drain(ctx); err != nil {
		p.logger.Error("outbox drain failed", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox poller shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := p.drain(ctx); err != nil {
				p.logger.Error("outbox drain failed", slog.String("error", err.Error()))
			}
		}
	}
}

// drain publishes one batch and sweeps old published events.
func (p *OutboxPoller) drain(ctx context.Context) error {
	events, err := p.outboxRepo.GetUnpublished(ctx, p.batchSize)
	if err != nil {
		return err
	}

	if p.metrics != nil {
		p.metrics.OutboxBacklog.Set(float64(len(events)))
	}

	for _, event := range events {
		if err := p.publisher.Publish(ctx, event); err != nil {
			p.logger.Error("event publish failed",
				slog.String("event_id", event.ID),
				slog.String("event_type", event.EventType),
				slog.String("error", err.Error()))
			if p.metrics != nil {
				p.metrics.EventPublishErrors.Inc()
			}
			// Leave it unpublished; the next tick retries it.
			continue
		}

		if p.metrics != nil {
			p.metrics.EventsPublished.Inc()
		}

		if err := p.outboxRepo.MarkPublished(ctx, event.ID, time.Now()); err != nil {
			p.logger.Error("failed to mark event published",
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()))
		}
	}

	if len(events) > 0 {
		p.logger.Info("outbox batch drained", slog.Int("count", len(events)))
	}

	return p.outboxRepo.DeletePublished(ctx, time.Now().Add(-p.retention))
}

// LogPublisher writes events to the log instead of an external broker.
// It is the publisher of last resort when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info("event published",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.EventType),
		slog.String("aggregate_type", event.AggregateType),
		slog.String("aggregate_id", event.AggregateID),
		slog.String("payload", string(payload)))

	return nil
}
