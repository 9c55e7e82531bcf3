package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
)

// LedgerUseCase is the transaction engine: it validates business rules and
// orchestrates atomic one- and two-account updates against the store.
// Every operation either commits fully or leaves the ledger untouched.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	recordRepo  RecordRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase. metrics may be nil.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	recordRepo RecordRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		recordRepo:  recordRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     m,
	}
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

// TransferInput represents input for a transfer between two accounts.
type TransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
}

// withAccountsLocked runs fn inside a transaction that holds update locks
// on all listed accounts. IDs are locked in ascending order so that two
// concurrent transfers targeting each other cannot deadlock. The locks are
// released on every exit path; fn's staged changes commit only if fn
// returns nil.
func (uc *LedgerUseCase) withAccountsLocked(
	ctx context.Context,
	ids []string,
	fn func(tx Transaction, accounts map[string]*domain.Account) error,
) error {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, sorted)
	if err != nil {
		return err
	}

	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountMap[a.ID] = a
	}

	if err := fn(tx, accountMap); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Deposit increases the account balance by amount and appends one Deposit
// record with a positive signed amount.
func (uc *LedgerUseCase) Deposit(ctx context.Context, input DepositInput) (*domain.Record, error) {
	start := time.Now()

	if err := domain.ValidateAmount(input.Amount); err != nil {
		uc.countError("deposit", err)
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = "Self-deposit"
	}

	var record *domain.Record

	err := uc.withAccountsLocked(ctx, []string{input.AccountID}, func(tx Transaction, accounts map[string]*domain.Account) error {
		account := accounts[input.AccountID]
		if account == nil {
			return domain.ErrAccountNotFound
		}

		now := time.Now().UTC()
		newBalance := account.ApplyCredit(input.Amount)

		record = &domain.Record{
			ID:              uc.idGen.Generate(),
			AccountID:       account.ID,
			Kind:            domain.KindDeposit,
			Amount:          input.Amount,
			PreviousBalance: account.Balance,
			CurrentBalance:  newBalance,
			Description:     description,
			CreatedAt:       now,
		}

		if err := uc.recordRepo.Create(ctx, tx, record); err != nil {
			return err
		}

		if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
			return err
		}

		return uc.stageEvent(ctx, tx, domain.AggregateTypeAccount, account.ID, domain.EventTypeDepositRecorded, domain.DepositRecordedEvent{
			RecordID:  record.ID,
			AccountID: account.ID,
			Amount:    input.Amount.String(),
		}, now)
	})
	if err != nil {
		uc.countError("deposit", err)
		return nil, err
	}

	uc.observe("deposit", start, input.Amount)

	return record, nil
}

// Withdraw decreases the account balance by amount and appends one
// Withdrawal record with a negative signed amount. The funds check runs
// inside the locked scope, never against a stale read.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*domain.Record, error) {
	start := time.Now()

	if err := domain.ValidateAmount(input.Amount); err != nil {
		uc.countError("withdrawal", err)
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = "Self-withdrawal"
	}

	var record *domain.Record

	err := uc.withAccountsLocked(ctx, []string{input.AccountID}, func(tx Transaction, accounts map[string]*domain.Account) error {
		account := accounts[input.AccountID]
		if account == nil {
			return domain.ErrAccountNotFound
		}

		if err := account.ValidateDebit(input.Amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		newBalance := account.ApplyDebit(input.Amount)

		record = &domain.Record{
			ID:              uc.idGen.Generate(),
			AccountID:       account.ID,
			Kind:            domain.KindWithdrawal,
			Amount:          input.Amount.Neg(),
			PreviousBalance: account.Balance,
			CurrentBalance:  newBalance,
			Description:     description,
			CreatedAt:       now,
		}

		if err := uc.recordRepo.Create(ctx, tx, record); err != nil {
			return err
		}

		if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
			return err
		}

		return uc.stageEvent(ctx, tx, domain.AggregateTypeAccount, account.ID, domain.EventTypeWithdrawalRecorded, domain.WithdrawalRecordedEvent{
			RecordID:  record.ID,
			AccountID: account.ID,
			Amount:    input.Amount.Neg().String(),
		}, now)
	})
	if err != nil {
		uc.countError("withdrawal", err)
		return nil, err
	}

	uc.observe("withdrawal", start, input.Amount)

	return record, nil
}

// Transfer atomically moves amount from the sender to the recipient,
// appending a TransferOut record on the sender and a TransferIn record on
// the recipient. Both balance changes and both records commit together or
// not at all.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.TransferResult, error) {
	start := time.Now()

	if input.FromAccountID == input.ToAccountID {
		uc.countError("transfer", domain.ErrSelfTransfer)
		return nil, domain.ErrSelfTransfer
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		uc.countError("transfer", err)
		return nil, err
	}

	var result *domain.TransferResult

	ids := []string{input.FromAccountID, input.ToAccountID}

	err := uc.withAccountsLocked(ctx, ids, func(tx Transaction, accounts map[string]*domain.Account) error {
		sender := accounts[input.FromAccountID]
		if sender == nil {
			return domain.ErrAccountNotFound
		}

		recipient := accounts[input.ToAccountID]
		if recipient == nil {
			return domain.ErrRecipientNotFound
		}

		if err := sender.ValidateDebit(input.Amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		transferID := uc.idGen.Generate()

		outDescription := input.Description
		if outDescription == "" {
			outDescription = "To " + recipient.Name
		}

		inDescription := input.Description
		if inDescription == "" {
			inDescription = "From " + sender.Name
		}

		senderBalance := sender.ApplyDebit(input.Amount)
		out := &domain.Record{
			ID:              uc.idGen.Generate(),
			AccountID:       sender.ID,
			TransferID:      transferID,
			CounterpartyID:  recipient.ID,
			Kind:            domain.KindTransferOut,
			Amount:          input.Amount.Neg(),
			PreviousBalance: sender.Balance,
			CurrentBalance:  senderBalance,
			Description:     outDescription,
			CreatedAt:       now,
		}

		if err := uc.recordRepo.Create(ctx, tx, out); err != nil {
			return err
		}

		if err := uc.accountRepo.UpdateBalance(ctx, tx, sender.ID, senderBalance, now); err != nil {
			return err
		}

		recipientBalance := recipient.ApplyCredit(input.Amount)
		in := &domain.Record{
			ID:              uc.idGen.Generate(),
			AccountID:       recipient.ID,
			TransferID:      transferID,
			CounterpartyID:  sender.ID,
			Kind:            domain.KindTransferIn,
			Amount:          input.Amount,
			PreviousBalance: recipient.Balance,
			CurrentBalance:  recipientBalance,
			Description:     inDescription,
			CreatedAt:       now,
		}

		if err := uc.recordRepo.Create(ctx, tx, in); err != nil {
			return err
		}

		if err := uc.accountRepo.UpdateBalance(ctx, tx, recipient.ID, recipientBalance, now); err != nil {
			return err
		}

		result = &domain.TransferResult{TransferID: transferID, Out: out, In: in}

		return uc.stageEvent(ctx, tx, domain.AggregateTypeTransfer, transferID, domain.EventTypeTransferRecorded, domain.TransferRecordedEvent{
			TransferID:    transferID,
			FromAccountID: sender.ID,
			ToAccountID:   recipient.ID,
			Amount:        input.Amount.String(),
		}, now)
	})
	if err != nil {
		uc.countError("transfer", err)
		return nil, err
	}

	uc.observe("transfer", start, input.Amount)

	return result, nil
}

func (uc *LedgerUseCase) observe(operation string, start time.Time, amount decimal.Decimal) {
	if uc.metrics == nil {
		return
	}

	switch operation {
	case "deposit":
		uc.metrics.DepositsRecorded.Inc()
	case "withdrawal":
		uc.metrics.WithdrawalsRecorded.Inc()
	case "transfer":
		uc.metrics.TransfersRecorded.Inc()
	}

	uc.metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	uc.metrics.OperationAmount.WithLabelValues(operation).Observe(amount.InexactFloat64())
}

func (uc *LedgerUseCase) countError(operation string, err error) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.OperationErrors.WithLabelValues(operation, errorReason(err)).Inc()
}

// errorReason keeps the error label cardinality bounded.
func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrAmountTooPrecise):
		return "amount_too_precise"
	case errors.Is(err, domain.ErrAmountTooLarge):
		return "amount_too_large"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrRecipientNotFound):
		return "recipient_not_found"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "other"
	}
}

func (uc *LedgerUseCase) stageEvent(
	ctx context.Context,
	tx Transaction,
	aggregateType, aggregateID, eventType string,
	payload any,
	now time.Time,
) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	})
}
