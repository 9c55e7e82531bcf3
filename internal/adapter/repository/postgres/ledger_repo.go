package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerRepository implements usecase.LedgerRepository on top of the
// accounts and records tables.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// CheckConsistency returns the total of all account balances and the total
// of all recorded amounts. The two must be equal: every balance change is
// accompanied by a record with the same signed amount.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COALESCE(SUM(balance), 0) FROM accounts),
			(SELECT COALESCE(SUM(amount), 0) FROM records)`)

	var totalBalance, totalRecorded pgtype.Numeric
	if err := row.Scan(&totalBalance, &totalRecorded); err != nil {
		return decimal.Zero, decimal.Zero, storeErr(err)
	}

	return numericToDecimal(totalBalance), numericToDecimal(totalRecorded), nil
}
