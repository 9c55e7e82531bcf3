package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// CreateRecord is the RecordRepository Create. It stages the record inside tx.
func (s *Store) CreateRecord(_ context.Context, tx usecase.Transaction, record *domain.Record) error {
	mtx := tx.(*Tx)
	cp := *record
	mtx.records = append(mtx.records, &cp)
	return nil
}

// GetRecordByID retrieves a record by ID.
func (s *Store) GetRecordByID(_ context.Context, id string) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	cp := *record
	return &cp, nil
}

// ListByAccount retrieves an account's records, newest first.
func (s *Store) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.byAcct[accountID]

	records := make([]*domain.Record, 0, limit)
	for i := len(all) - 1 - offset; i >= 0 && len(records) < limit; i-- {
		cp := *all[i]
		records = append(records, &cp)
	}

	return records, nil
}

// ListByTransfer retrieves both legs of a transfer, debit leg first.
func (s *Store) ListByTransfer(_ context.Context, transferID string) ([]*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []*domain.Record
	for _, record := range s.records {
		if record.TransferID == transferID {
			cp := *record
			records = append(records, &cp)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Amount.LessThan(records[j].Amount)
	})

	return records, nil
}

// SumByAccount returns the sum of the signed amounts of an account's records.
func (s *Store) SumByAccount(_ context.Context, accountID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := decimal.Zero
	for _, record := range s.byAcct[accountID] {
		sum = sum.Add(record.Amount)
	}

	return sum, nil
}

// CheckConsistency returns the total of all balances and the total of all
// recorded amounts.
func (s *Store) CheckConsistency(_ context.Context) (decimal.Decimal, decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	totalBalance := decimal.Zero
	for _, account := range s.accounts {
		totalBalance = totalBalance.Add(account.Balance)
	}

	totalRecorded := decimal.Zero
	for _, record := range s.records {
		totalRecorded = totalRecorded.Add(record.Amount)
	}

	return totalBalance, totalRecorded, nil
}

// CreateEvent is the OutboxRepository Create. It stages the event inside tx.
func (s *Store) CreateEvent(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	mtx := tx.(*Tx)
	cp := *event
	mtx.events = append(mtx.events, &cp)
	return nil
}

// GetUnpublished retrieves unpublished events, oldest first.
func (s *Store) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []*domain.OutboxEvent
	for _, event := range s.outbox {
		if event.Published {
			continue
		}
		cp := *event
		events = append(events, &cp)
		if len(events) == limit {
			break
		}
	}

	return events, nil
}

// MarkPublished marks an event as published.
func (s *Store) MarkPublished(_ context.Context, id string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, event := range s.outbox {
		if event.ID == id {
			event.Published = true
			at := publishedAt
			event.PublishedAt = &at
			return nil
		}
	}

	return nil
}

// DeletePublished removes published events created before the cutoff.
func (s *Store) DeletePublished(_ context.Context, before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.outbox[:0]
	for _, event := range s.outbox {
		if event.Published && event.CreatedAt.Before(before) {
			continue
		}
		kept = append(kept, event)
	}
	s.outbox = kept

	return nil
}
