package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Balance:   a.Balance,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// BalanceResponse represents an account balance.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// RecordResponse represents a ledger record in API responses.
type RecordResponse struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	TransferID      string          `json:"transfer_id,omitempty"`
	CounterpartyID  string          `json:"counterparty_id,omitempty"`
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RecordFromDomain converts a domain record to a response.
func RecordFromDomain(rec *domain.Record) *RecordResponse {
	return &RecordResponse{
		ID:              rec.ID,
		AccountID:       rec.AccountID,
		TransferID:      rec.TransferID,
		CounterpartyID:  rec.CounterpartyID,
		Kind:            string(rec.Kind),
		Amount:          rec.Amount,
		PreviousBalance: rec.PreviousBalance,
		CurrentBalance:  rec.CurrentBalance,
		Description:     rec.Description,
		CreatedAt:       rec.CreatedAt,
	}
}

// RecordsFromDomain converts domain records to responses.
func RecordsFromDomain(records []*domain.Record) []*RecordResponse {
	result := make([]*RecordResponse, len(records))
	for i, rec := range records {
		result[i] = RecordFromDomain(rec)
	}
	return result
}

// ListRecordsResponse wraps a page of records.
type ListRecordsResponse struct {
	Records []*RecordResponse `json:"records"`
	Total   int64             `json:"total"`
}

// TransferResponse represents a completed transfer: both legs plus the
// shared transfer ID.
type TransferResponse struct {
	TransferID string          `json:"transfer_id"`
	Out        *RecordResponse `json:"out"`
	In         *RecordResponse `json:"in"`
}

// TransferFromDomain converts a domain transfer result to a response.
func TransferFromDomain(t *domain.TransferResult) *TransferResponse {
	return &TransferResponse{
		TransferID: t.TransferID,
		Out:        RecordFromDomain(t.Out),
		In:         RecordFromDomain(t.In),
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
