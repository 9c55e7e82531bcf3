package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordKind classifies a ledger record.
type RecordKind string

const (
	KindDeposit     RecordKind = "deposit"
	KindWithdrawal  RecordKind = "withdrawal"
	KindTransferOut RecordKind = "transfer_out"
	KindTransferIn  RecordKind = "transfer_in"
)

// IsCredit reports whether records of this kind carry a positive amount.
func (k RecordKind) IsCredit() bool {
	return k == KindDeposit || k == KindTransferIn
}

// Record is a single immutable entry in an account's transaction log.
// Amount is signed: positive for credits, negative for debits.
// The two legs of a transfer share a TransferID and name each other
// through CounterpartyID.
type Record struct {
	CreatedAt       time.Time
	ID              string
	AccountID       string
	TransferID      string
	CounterpartyID  string
	Kind            RecordKind
	Amount          decimal.Decimal
	PreviousBalance decimal.Decimal
	CurrentBalance  decimal.Decimal
	Description     string
}

// TransferResult carries the outcome of a committed transfer:
// the debit leg on the sender and the credit leg on the recipient.
type TransferResult struct {
	TransferID string
	Out        *Record
	In         *Record
}
