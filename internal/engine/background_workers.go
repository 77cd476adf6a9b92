package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rafflechain/settler/internal/raffle"
)

// ExpiryWorker periodically closes raffles whose end time has passed.
type ExpiryWorker struct {
	engine    *Engine
	logger    *slog.Logger
	interval  time.Duration
	batchSize int

	workersWg sync.WaitGroup
	ctx       context.Context
	cancelAll func()
}

func NewExpiryWorker(engine *Engine, interval time.Duration, batchSize int) *ExpiryWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &ExpiryWorker{
		engine:    engine,
		logger:    engine.logger.With(slog.String("module", "expiry worker")),
		interval:  interval,
		batchSize: batchSize,

		ctx:       ctx,
		cancelAll: cancel,
	}
}

func (w *ExpiryWorker) Start() {
	ticker := time.NewTicker(w.interval)

	w.workersWg.Add(1)
	go func() {
		defer w.workersWg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				closed, err := w.engine.CloseExpired(w.ctx, w.batchSize)
				if err != nil {
					w.logger.Error("Failed to close expired raffles", slog.String("err", err.Error()))
					continue
				}
				if closed > 0 {
					w.logger.Info("Closed expired raffles", slog.Int("count", closed))
				}

			case <-w.ctx.Done():
				return
			}
		}
	}()
}

func (w *ExpiryWorker) GracefulStop() {
	w.logger.Info("Shutting down")

	w.cancelAll()
	w.workersWg.Wait()

	w.logger.Info("Shutdown complete")
}

// CloseExpired closes or voids up to limit active raffles past their end time and returns how many it ended.
// Failures of single raffles are logged and do not stop the batch.
func (e *Engine) CloseExpired(ctx context.Context, limit int) (int, error) {
	expired, err := e.store.ListExpired(ctx, e.now(), limit)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, r := range expired {
		if ctx.Err() != nil {
			return closed, ctx.Err()
		}

		updated, err := e.CloseIfEligible(ctx, r.ID)
		if err != nil {
			e.logger.ErrorContext(ctx, "Failed to close expired raffle", slog.String("id", r.ID), slog.String("err", err.Error()))
			continue
		}
		if updated.Status != raffle.StatusActive {
			closed++
		}
	}

	e.stats.expired(closed)
	return closed, nil
}
