package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/config"
)

const autoReleaseLockKey = "auto-release"

type EscrowReleaser interface {
	AutoRelease(ctx context.Context, limit int) (int, error)
}

// AutoReleaseWorker periodically releases held escrows whose hold period has passed.
// Only one instance sweeps at a time.
type AutoReleaseWorker struct {
	releaser  EscrowReleaser
	locker    application.Locker
	interval  time.Duration
	batchSize int
	lockTTL   time.Duration
	logger    *slog.Logger
}

func NewAutoReleaseWorker(
	releaser EscrowReleaser,
	locker application.Locker,
	escrowCfg config.EscrowConfig,
	workerCfg config.WorkerConfig,
	logger *slog.Logger,
) *AutoReleaseWorker {
	return &AutoReleaseWorker{
		releaser:  releaser,
		locker:    locker,
		interval:  escrowCfg.SweepInterval,
		batchSize: escrowCfg.BatchSize,
		lockTTL:   workerCfg.LockTTL,
		logger:    logger,
	}
}

func (w *AutoReleaseWorker) Start(ctx context.Context) {
	runEvery(ctx, "auto-release worker", w.interval, w.logger, func(ctx context.Context) error {
		_, err := w.RunOnce(ctx)
		return err
	})
}

// RunOnce performs a single sweep and returns how many escrows were released.
func (w *AutoReleaseWorker) RunOnce(ctx context.Context) (int, error) {
	released, skipped, err := withLock(ctx, w.locker, autoReleaseLockKey, w.lockTTL, w.logger, func(ctx context.Context) (int, error) {
		return w.releaser.AutoRelease(ctx, w.batchSize)
	})
	if err != nil || skipped {
		return 0, err
	}
	return released, nil
}
