package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
)

// TxFunc runs inside a Firestore transaction. Reads must happen before writes.
type TxFunc func(ctx context.Context, tx *firestore.Transaction) error

// TxOption customises transaction behaviour.
type TxOption func(*txSettings)

type txSettings struct {
	attempts int
	timeout  time.Duration
}

// WithTxAttempts caps the commit retry attempts.
func WithTxAttempts(attempts int) TxOption {
	return func(s *txSettings) {
		if attempts > 0 {
			s.attempts = attempts
		}
	}
}

// WithTxTimeout bounds the transaction context. A tighter deadline already on
// the context wins.
func WithTxTimeout(timeout time.Duration) TxOption {
	return func(s *txSettings) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// RunTransaction executes fn within a transaction on the provided client,
// retrying contended commits up to the configured attempt count.
func RunTransaction(ctx context.Context, client *firestore.Client, fn TxFunc, opts ...TxOption) error {
	if fn == nil {
		return WrapError("transaction", errors.New("firestore: transaction function is nil"))
	}
	if client == nil {
		return WrapError("transaction", errors.New("firestore: client is nil"))
	}

	settings := txSettings{attempts: 5, timeout: 15 * time.Second}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	txnCtx := ctx
	if settings.timeout > 0 {
		if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) > settings.timeout {
			var cancel context.CancelFunc
			txnCtx, cancel = context.WithTimeout(ctx, settings.timeout)
			defer cancel()
		}
	}

	err := client.RunTransaction(txnCtx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, tx)
	}, firestore.MaxAttempts(settings.attempts))

	return WrapError("transaction", err)
}
