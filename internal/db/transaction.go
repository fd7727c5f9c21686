package db

import "context"

// TransactionManager runs a function inside one atomic unit of work. The
// context handed to fn carries the transaction session; every snapshot read
// and ledger write of a repair pass must go through it so the pass commits
// everything or rolls back everything.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(sessCtx context.Context) (interface{}, error)) (interface{}, error)
}
