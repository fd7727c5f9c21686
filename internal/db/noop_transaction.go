package db

import "context"

// NoOpTransactionManager runs the function without any transaction. Used in
// dev/test environments where the MongoDB deployment is a standalone node
// without replica-set transactions.
type NoOpTransactionManager struct{}

// NewNoOpTransactionManager creates a new NoOpTransactionManager.
func NewNoOpTransactionManager() TransactionManager {
	return &NoOpTransactionManager{}
}

// WithTransaction executes fn directly with the original context.
func (n *NoOpTransactionManager) WithTransaction(ctx context.Context, fn func(sessCtx context.Context) (interface{}, error)) (interface{}, error) {
	return fn(ctx)
}
