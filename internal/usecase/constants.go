package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a store transaction.
	// This prevents long-running transactions from blocking accounts.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultBalanceCacheTTL is how long display-only balance reads are cached.
	DefaultBalanceCacheTTL = 5 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)
