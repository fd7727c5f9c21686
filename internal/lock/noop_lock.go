package lock

import "context"

// NoOpGuard is a repair guard that always grants the scope. It is used in
// development mode and in tests, where no concurrent operator exists.
type NoOpGuard struct{}

// NewNoOpGuard creates a new NoOpGuard.
func NewNoOpGuard() *NoOpGuard {
	return &NoOpGuard{}
}

func (g *NoOpGuard) Acquire(ctx context.Context, scope string) error { return nil }

func (g *NoOpGuard) Release(ctx context.Context, scope string) error { return nil }
