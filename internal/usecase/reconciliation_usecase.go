package usecase

import (
	"context"
	"errors"

	"github.com/iho/bankledger/internal/infrastructure/metrics"
)

var (
	// ErrInconsistentLedger is returned when stored balances do not match
	// the sum of recorded amounts.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match recorded amounts")
)

// ReconciliationUseCase verifies the reconstructable-ledger invariant.
type ReconciliationUseCase struct {
	ledgerRepo  LedgerRepository
	accountRepo AccountRepository
	recordRepo  RecordRepository
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new ReconciliationUseCase. m may be nil.
func NewReconciliationUseCase(ledgerRepo LedgerRepository, accountRepo AccountRepository, recordRepo RecordRepository, m *metrics.Metrics) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		recordRepo:  recordRepo,
		metrics:     m,
	}
}

// CheckConsistency verifies that the sum of all account balances equals the
// sum of all record amounts. Deposits and withdrawals move the two totals
// together; transfers cancel out inside them, so a committed ledger always
// keeps them equal.
func (uc *ReconciliationUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	totalBalance, totalRecorded, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return false, err
	}

	if !totalBalance.Equal(totalRecorded) {
		if uc.metrics != nil {
			uc.metrics.ConsistencyFailures.Inc()
		}
		return false, ErrInconsistentLedger
	}

	return true, nil
}

// CheckAccount verifies a single account: its balance must equal the sum of
// the signed amounts of its records.
func (uc *ReconciliationUseCase) CheckAccount(ctx context.Context, accountID string) (bool, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}

	recorded, err := uc.recordRepo.SumByAccount(ctx, accountID)
	if err != nil {
		return false, err
	}

	if !account.Balance.Equal(recorded) {
		return false, ErrInconsistentLedger
	}

	return true, nil
}
