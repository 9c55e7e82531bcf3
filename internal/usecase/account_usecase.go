package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	recordRepo  RecordRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	cache       Cache
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase. cache and m may be nil;
// without a cache, balance reads always hit the store.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	recordRepo RecordRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		recordRepo:  recordRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		cache:       cache,
		cacheTTL:    cacheTTL,
		metrics:     m,
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	Name           string
	OpeningBalance decimal.Decimal
}

// OpenAccount creates a new account. A non-zero opening balance is booked
// as an opening Deposit record in the same transaction, so that the
// balance always equals the sum of the account's record amounts.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	if input.OpeningBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	if !input.OpeningBalance.IsZero() {
		if err := domain.ValidateAmount(input.OpeningBalance); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		Balance:   input.OpeningBalance,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, err
	}

	if !input.OpeningBalance.IsZero() {
		record := &domain.Record{
			ID:              uc.idGen.Generate(),
			AccountID:       account.ID,
			Kind:            domain.KindDeposit,
			Amount:          input.OpeningBalance,
			PreviousBalance: decimal.Zero,
			CurrentBalance:  input.OpeningBalance,
			Description:     "Opening balance",
			CreatedAt:       now,
		}

		if err := uc.recordRepo.Create(ctx, tx, record); err != nil {
			return nil, err
		}
	}

	err = uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountOpened,
		Payload: domain.AccountOpenedEvent{
			AccountID:      account.ID,
			Name:           account.Name,
			OpeningBalance: input.OpeningBalance.String(),
		},
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsOpened.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetBalance returns the account balance for display. The value is served
// through a short-lived cache and may trail in-flight operations; it is
// never used as the basis for a withdrawal or transfer decision.
func (uc *AccountUseCase) GetBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, balanceCacheKey(id)); err == nil {
			if balance, perr := decimal.NewFromString(cached); perr == nil {
				if uc.metrics != nil {
					uc.metrics.BalanceCacheHits.Inc()
				}
				return balance, nil
			}
		}
		if uc.metrics != nil {
			uc.metrics.BalanceCacheMisses.Inc()
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}

	if uc.cache != nil {
		// Best effort: a cache failure never fails the read.
		_ = uc.cache.Set(ctx, balanceCacheKey(id), account.Balance.String(), uc.cacheTTL)
	}

	return account.Balance, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}

func balanceCacheKey(accountID string) string {
	return "balance:" + accountID
}
