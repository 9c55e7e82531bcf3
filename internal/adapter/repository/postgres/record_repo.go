package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

const recordColumns = "id, account_id, transfer_id, counterparty_id, kind, amount, previous_balance, current_balance, description, created_at"

// RecordRepository implements usecase.RecordRepository.
type RecordRepository struct {
	pool *pgxpool.Pool
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

// Create stages a record inside tx. Records are append-only: there is no
// update or delete path.
func (r *RecordRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.Record) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`INSERT INTO records (id, account_id, transfer_id, counterparty_id, kind, amount, previous_balance, current_balance, description, created_at)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10)`,
		record.ID,
		record.AccountID,
		record.TransferID,
		record.CounterpartyID,
		string(record.Kind),
		decimalToNumeric(record.Amount),
		decimalToNumeric(record.PreviousBalance),
		decimalToNumeric(record.CurrentBalance),
		record.Description,
		timeToPgTimestamptz(record.CreatedAt),
	)

	return storeErr(err)
}

// GetByID retrieves a record by ID.
func (r *RecordRepository) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = $1`, id)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, storeErr(err)
	}

	return record, nil
}

// ListByAccount retrieves an account's records, newest first.
func (r *RecordRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM records
		 WHERE account_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListByTransfer retrieves both legs of a transfer.
func (r *RecordRepository) ListByTransfer(ctx context.Context, transferID string) ([]*domain.Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM records WHERE transfer_id = $1 ORDER BY amount`, transferID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// SumByAccount returns the sum of the signed amounts of an account's
// records. For a consistent ledger it equals the account balance.
func (r *RecordRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM records WHERE account_id = $1`, accountID)

	var sum pgtype.Numeric
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, storeErr(err)
	}

	return numericToDecimal(sum), nil
}

func collectRecords(rows pgx.Rows) ([]*domain.Record, error) {
	var records []*domain.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, storeErr(err)
		}

		records = append(records, record)
	}

	return records, storeErr(rows.Err())
}

func scanRecord(row pgx.Row) (*domain.Record, error) {
	var (
		record          domain.Record
		transferID      pgtype.Text
		counterpartyID  pgtype.Text
		kind            string
		amount          pgtype.Numeric
		previousBalance pgtype.Numeric
		currentBalance  pgtype.Numeric
		createdAt       pgtype.Timestamptz
	)

	err := row.Scan(
		&record.ID,
		&record.AccountID,
		&transferID,
		&counterpartyID,
		&kind,
		&amount,
		&previousBalance,
		&currentBalance,
		&record.Description,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	record.TransferID = transferID.String
	record.CounterpartyID = counterpartyID.String
	record.Kind = domain.RecordKind(kind)
	record.Amount = numericToDecimal(amount)
	record.PreviousBalance = numericToDecimal(previousBalance)
	record.CurrentBalance = numericToDecimal(currentBalance)
	record.CreatedAt = createdAt.Time

	return &record, nil
}
