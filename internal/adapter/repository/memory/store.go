// Package memory provides an in-memory ledger store with the same
// transactional contract as the postgres adapter. It backs the CLI's
// ephemeral mode and the concurrency tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// Store holds accounts, records and outbox events in process memory.
// It implements every repository interface plus TransactionManager, so a
// single instance wires the whole use case layer.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	records  map[string]*domain.Record
	byAcct   map[string][]*domain.Record
	outbox   []*domain.OutboxEvent
	rowLocks map[string]rowLock
}

// rowLock is a capacity-1 semaphore. Unlike sync.Mutex it can be acquired
// with a select, so a waiter abandons the lock when its context ends.
type rowLock chan struct{}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		records:  make(map[string]*domain.Record),
		byAcct:   make(map[string][]*domain.Record),
		rowLocks: make(map[string]rowLock),
	}
}

// Begin starts a transaction. Changes staged through it become visible
// only on Commit.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: s, balances: make(map[string]decimal.Decimal)}, nil
}

// Create inserts an account outside any transaction.
func (s *Store) Create(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertAccount(account)
	return nil
}

// CreateTx stages an account insert inside tx.
func (s *Store) CreateTx(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	mtx := tx.(*Tx)
	cp := *account
	mtx.newAccounts = append(mtx.newAccounts, &cp)
	return nil
}

// GetByID retrieves an account by ID without locking it.
func (s *Store) GetByID(_ context.Context, id string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	cp := *account
	return &cp, nil
}

// GetByIDsForUpdate locks each listed account for the duration of tx and
// returns their current state. Locks are taken in the order given, so
// callers passing sorted ids serialize against each other without
// deadlocking. Missing ids are skipped, as a row lock on a missing row
// would be. A cancelled or expired context abandons the wait; locks
// already taken stay on tx and are released by its Rollback.
func (s *Store) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	mtx := tx.(*Tx)

	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		lock := s.lockFor(id)
		if lock == nil {
			continue
		}

		select {
		case lock <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		mtx.held = append(mtx.held, lock)

		s.mu.Lock()
		account, ok := s.accounts[id]
		if !ok {
			// Deleted between lockFor and here. Release and skip.
			s.mu.Unlock()
			<-lock
			mtx.held = mtx.held[:len(mtx.held)-1]
			continue
		}
		cp := *account
		s.mu.Unlock()

		accounts = append(accounts, &cp)
	}

	return accounts, nil
}

// UpdateBalance stages a balance change inside tx.
func (s *Store) UpdateBalance(_ context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	mtx := tx.(*Tx)
	mtx.balances[id] = balance
	mtx.updatedAt = updatedAt
	return nil
}

// List retrieves accounts ordered by ID.
func (s *Store) List(_ context.Context, limit, offset int) ([]*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit < len(ids) {
		ids = ids[:limit]
	}

	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		cp := *s.accounts[id]
		accounts = append(accounts, &cp)
	}

	return accounts, nil
}

// lockFor returns the lock for an account, or nil if the account does not
// exist.
func (s *Store) lockFor(id string) rowLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return nil
	}

	lock, ok := s.rowLocks[id]
	if !ok {
		lock = make(rowLock, 1)
		s.rowLocks[id] = lock
	}

	return lock
}

// insertAccount must be called with s.mu held.
func (s *Store) insertAccount(account *domain.Account) {
	cp := *account
	s.accounts[cp.ID] = &cp
	s.rowLocks[cp.ID] = make(rowLock, 1)
}

// RecordStore adapts a Store to usecase.RecordRepository. The wrapper
// exists because Create and GetByID are already taken by the account
// method set on Store.
type RecordStore struct {
	*Store
}

func (r RecordStore) Create(ctx context.Context, tx usecase.Transaction, record *domain.Record) error {
	return r.CreateRecord(ctx, tx, record)
}

func (r RecordStore) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	return r.GetRecordByID(ctx, id)
}

// OutboxStore adapts a Store to usecase.OutboxRepository.
type OutboxStore struct {
	*Store
}

func (o OutboxStore) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return o.CreateEvent(ctx, tx, event)
}

var (
	_ usecase.AccountRepository  = (*Store)(nil)
	_ usecase.RecordRepository   = RecordStore{}
	_ usecase.LedgerRepository   = (*Store)(nil)
	_ usecase.OutboxRepository   = OutboxStore{}
	_ usecase.TransactionManager = (*Store)(nil)
)
