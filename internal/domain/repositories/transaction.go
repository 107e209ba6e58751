package repositories

import "context"

// TxFn runs with a transaction stored in ctx; repositories pick it up via
// GetTx so the function body needs no tx parameter
type TxFn func(ctx context.Context) error

// TransactionManager runs step-store work atomically
type TransactionManager interface {
	// ExecTx runs fn in a read-write transaction. The seed tool swaps the
	// whole hierarchy this way so readers never see a half-written tree.
	ExecTx(ctx context.Context, fn TxFn) error

	// ExecSnapshot runs fn in a read-only repeatable-read transaction:
	// every query inside fn sees the same committed hierarchy.
	ExecSnapshot(ctx context.Context, fn TxFn) error
}
