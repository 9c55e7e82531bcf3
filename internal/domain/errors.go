package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrRecipientNotFound = errors.New("recipient account not found")

	// Operation errors
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSelfTransfer      = errors.New("cannot transfer to same account")
	ErrRecordNotFound    = errors.New("record not found")

	// ErrStoreUnavailable is returned when the underlying store fails.
	// It is surfaced as-is: the engine never retries business operations.
	ErrStoreUnavailable = errors.New("ledger store unavailable")
)
