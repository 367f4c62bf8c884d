package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
)

// runEvery calls fn once immediately and then on every tick until ctx is done.
func runEvery(ctx context.Context, name string, interval time.Duration, logger *slog.Logger, fn func(ctx context.Context) error) {
	logger.Info(name+" started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			logger.Error(name+" run failed", "error", err)
		}

		select {
		case <-ctx.Done():
			logger.Info(name + " stopping")
			return
		case <-ticker.C:
		}
	}
}

// withLock runs fn only when the named lock is acquired. skipped is true when
// another instance holds the lock.
func withLock(
	ctx context.Context,
	locker application.Locker,
	key string,
	ttl time.Duration,
	logger *slog.Logger,
	fn func(ctx context.Context) (int, error),
) (n int, skipped bool, err error) {
	unlock, acquired, err := locker.TryLock(ctx, key, ttl)
	if err != nil {
		return 0, false, err
	}
	if !acquired {
		logger.Debug("lock held elsewhere, skipping run", "lock", key)
		return 0, true, nil
	}
	defer func() {
		if unlockErr := unlock(context.WithoutCancel(ctx)); unlockErr != nil {
			logger.Warn("failed to release lock", "lock", key, "error", unlockErr)
		}
	}()

	n, err = fn(ctx)
	return n, false, err
}
