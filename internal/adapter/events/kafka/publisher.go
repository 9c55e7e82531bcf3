// Package kafka publishes outbox events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"

	"github.com/iho/bankledger/internal/domain"
)

// Publisher implements eventpublisher.Publisher on a Kafka writer.
// Messages are keyed by aggregate ID so all events for one account land in
// the same partition, in order.
type Publisher struct {
	writer      *kafka.Writer
	maxInterval time.Duration
	maxElapsed  time.Duration
}

// NewPublisher creates a Publisher writing to the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		maxInterval: 2 * time.Second,
		maxElapsed:  30 * time.Second,
	}
}

// Publish writes one event, retrying transient broker errors with
// exponential backoff. The outbox poller treats any returned error as
// "try again next tick", so giving up here is safe.
func (p *Publisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	message, err := encodeMessage(event)
	if err != nil {
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.MaxInterval = p.maxInterval
	b.MaxElapsedTime = p.maxElapsed

	return backoff.Retry(func() error {
		return p.writer.WriteMessages(ctx, message)
	}, backoff.WithContext(b, ctx))
}

// encodeMessage builds the wire message for one outbox event. The key is
// the aggregate ID, so partition ordering follows the account.
func encodeMessage(event *domain.OutboxEvent) (kafka.Message, error) {
	value, err := json.Marshal(struct {
		ID            string    `json:"id"`
		AggregateID   string    `json:"aggregate_id"`
		AggregateType string    `json:"aggregate_type"`
		EventType     string    `json:"event_type"`
		Payload       any       `json:"payload"`
		CreatedAt     time.Time `json:"created_at"`
	}{
		ID:            event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       event.Payload,
		CreatedAt:     event.CreatedAt,
	})
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}, nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
