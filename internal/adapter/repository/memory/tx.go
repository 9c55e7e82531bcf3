package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// Tx stages changes against a Store. Nothing it stages is visible to other
// transactions before Commit; Rollback discards everything. Row locks
// acquired through GetByIDsForUpdate are held until either one runs.
type Tx struct {
	store       *Store
	held        []rowLock
	newAccounts []*domain.Account
	balances    map[string]decimal.Decimal
	records     []*domain.Record
	events      []*domain.OutboxEvent
	updatedAt   time.Time
	done        bool
}

// Commit applies the staged changes atomically and releases row locks.
// If ctx has already ended nothing is applied; the context error is
// returned and the transaction stays open for Rollback to discard.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.done = true

	s := t.store
	s.mu.Lock()
	for _, account := range t.newAccounts {
		s.insertAccount(account)
	}
	for id, balance := range t.balances {
		account, ok := s.accounts[id]
		if !ok {
			continue
		}
		account.Balance = balance
		account.Version++
		account.UpdatedAt = t.updatedAt
	}
	for _, record := range t.records {
		s.records[record.ID] = record
		s.byAcct[record.AccountID] = append(s.byAcct[record.AccountID], record)
	}
	s.outbox = append(s.outbox, t.events...)
	s.mu.Unlock()

	t.release()
	return nil
}

// Rollback discards the staged changes and releases row locks. It is safe
// to call after Commit.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true

	t.release()
	return nil
}

func (t *Tx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		<-t.held[i]
	}
	t.held = nil
}
