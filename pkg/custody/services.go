package custody

import (
	"context"
	"time"
)

type WebhookMessager interface {
	Notify(ctx context.Context, message string) error
	NotifyWarning(ctx context.Context, errorMessage error) error
	NotifyError(ctx context.Context, errorMessage error) error
}

// Guard marks a token as having a transfer in progress.
type Guard interface {
	// Acquire returns false if the key is already held.
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// ReplayStore remembers confirmed receipts by idempotency key.
type ReplayStore interface {
	Get(ctx context.Context, key string) (*Receipt, bool, error)
	Put(ctx context.Context, key string, r *Receipt, ttl time.Duration) error
}

// Journal keeps an audit trail of confirmed transfers.
type Journal interface {
	AddReceipt(ctx context.Context, r *Receipt) error
	GetReceipts(ctx context.Context, tokenID string) ([]*JournalEntry, error)
}

// Publisher announces confirmed transfers to downstream consumers.
type Publisher interface {
	PublishTransfer(ctx context.Context, r *Receipt) error
	Close()
}
