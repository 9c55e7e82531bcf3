package domain

import "time"

// Event types
const (
	EventTypeDepositRecorded    = "deposit.recorded"
	EventTypeWithdrawalRecorded = "withdrawal.recorded"
	EventTypeTransferRecorded   = "transfer.recorded"
	EventTypeAccountOpened      = "account.opened"
)

// Aggregate types
const (
	AggregateTypeAccount  = "account"
	AggregateTypeTransfer = "transfer"
)

// OutboxEvent represents an event staged in the same transaction as the
// ledger mutation it describes, published asynchronously afterwards.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	// Payload is one of the typed event payloads below when staged;
	// events read back from storage carry the decoded JSON instead.
	Payload any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// DepositRecordedEvent payload
type DepositRecordedEvent struct {
	RecordID  string `json:"record_id"`
	AccountID string `json:"account_id"`
	Amount    string `json:"amount"`
}

// WithdrawalRecordedEvent payload
type WithdrawalRecordedEvent struct {
	RecordID  string `json:"record_id"`
	AccountID string `json:"account_id"`
	Amount    string `json:"amount"`
}

// TransferRecordedEvent payload
type TransferRecordedEvent struct {
	TransferID    string `json:"transfer_id"`
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
}

// AccountOpenedEvent payload
type AccountOpenedEvent struct {
	AccountID      string `json:"account_id"`
	Name           string `json:"name"`
	OpeningBalance string `json:"opening_balance"`
}
