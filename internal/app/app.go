package app

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chanreadmin/billingbackend/internal/worker"
)

// App manages the engine's background workers and their lifecycle.
type App struct {
	workers []worker.Worker
	logger  *zap.Logger
}

// NewApp creates and configures a new application.
func NewApp(logger *zap.Logger, workers []worker.Worker) (*App, func(), error) {
	a := &App{
		workers: workers,
		logger:  logger.Named("App"),
	}
	cleanup := func() {
		a.logger.Info("Application stopped")
	}
	return a, cleanup, nil
}

// Run starts every worker and blocks until an interrupt or termination signal
// arrives, then waits for the workers to drain.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for _, w := range a.workers {
		wg.Add(1)
		go func(w worker.Worker) {
			defer wg.Done()
			w.Start(ctx)
		}(w)
	}
	a.logger.Info("Application started", zap.Int("workers", len(a.workers)))

	<-ctx.Done()
	a.logger.Info("Shutdown signal received, waiting for workers")
	wg.Wait()
	return nil
}
