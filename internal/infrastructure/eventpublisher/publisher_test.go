package eventpublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

func TestDrainPublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", EventType: domain.EventTypeDepositRecorded}},
	}
	pub := &stubPublisher{}
	poller := newTestPoller(repo, pub)

	if err := poller.drain(context.Background()); err != nil {
		t.Fatalf("drain failed: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.published))
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected evt-1 marked published, got %#v", repo.marked)
	}
}

func TestDrainLeavesFailedEventsForRetry(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: domain.EventTypeDepositRecorded},
			{ID: "evt-2", EventType: domain.EventTypeTransferRecorded},
		},
	}
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("broker down")},
	}
	poller := newTestPoller(repo, pub)

	if err := poller.drain(context.Background()); err != nil {
		t.Fatalf("drain returned error: %v", err)
	}

	if len(pub.published) != 1 || pub.published[0].ID != "evt-2" {
		t.Fatalf("expected only evt-2 published, got %#v", pub.published)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-2" {
		t.Fatalf("expected only evt-2 marked, got %#v", repo.marked)
	}
}

func TestDrainSweepsExpiredPublishedEvents(t *testing.T) {
	repo := &stubOutboxRepo{}
	poller := newTestPoller(repo, &stubPublisher{})

	if err := poller.drain(context.Background()); err != nil {
		t.Fatalf("drain failed: %v", err)
	}

	if repo.sweeps != 1 {
		t.Fatalf("expected one retention sweep, got %d", repo.sweeps)
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	poller := newTestPoller(&stubOutboxRepo{}, &stubPublisher{})
	poller.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- poller.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func newTestPoller(repo *stubOutboxRepo, pub *stubPublisher) *OutboxPoller {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return NewOutboxPoller(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Logger:     logger,
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	})
}

type stubOutboxRepo struct {
	events []*domain.OutboxEvent
	marked []string
	sweeps int
}

func (s *stubOutboxRepo) Create(context.Context, usecase.Transaction, *domain.OutboxEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if len(s.events) <= limit {
		return append([]*domain.OutboxEvent(nil), s.events...), nil
	}
	return append([]*domain.OutboxEvent(nil), s.events[:limit]...), nil
}

func (s *stubOutboxRepo) MarkPublished(_ context.Context, id string, _ time.Time) error {
	s.marked = append(s.marked, id)
	return nil
}

func (s *stubOutboxRepo) DeletePublished(context.Context, time.Time) error {
	s.sweeps++
	return nil
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}
