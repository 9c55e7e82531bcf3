package integration

import (
	"testing"

	"github.com/iho/bankledger/internal/adapter/repository/postgres"
	"github.com/iho/bankledger/internal/usecase"
	"github.com/iho/bankledger/tests/testutil"
)

// ledgerStack bundles the postgres-backed use cases under test.
type ledgerStack struct {
	DB               *testutil.TestDB
	AccountUC        *usecase.AccountUseCase
	LedgerUC         *usecase.LedgerUseCase
	RecordUC         *usecase.RecordUseCase
	ReconciliationUC *usecase.ReconciliationUseCase
	OutboxRepo       *postgres.OutboxRepository
}

func newLedgerStack(t *testing.T) *ledgerStack {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	recordRepo := postgres.NewRecordRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	idGen := postgres.NewULIDGenerator()

	return &ledgerStack{
		DB:               testDB,
		AccountUC:        usecase.NewAccountUseCase(txManager, accountRepo, recordRepo, outboxRepo, idGen, nil, 0, nil),
		LedgerUC:         usecase.NewLedgerUseCase(txManager, accountRepo, recordRepo, outboxRepo, idGen, nil),
		RecordUC:         usecase.NewRecordUseCase(recordRepo),
		ReconciliationUC: usecase.NewReconciliationUseCase(ledgerRepo, accountRepo, recordRepo, nil),
		OutboxRepo:       outboxRepo,
	}
}
