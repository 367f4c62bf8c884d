package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/config"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

const expirationLockKey = "payment-expiry"

type PaymentExpirer interface {
	ExpirePayment(ctx context.Context, paymentID string) (*domain.Payment, error)
}

// ExpirationWorker settles pending payments that passed their expiry without a callback.
type ExpirationWorker struct {
	payments  application.PaymentRepository
	expirer   PaymentExpirer
	locker    application.Locker
	clock     application.Clock
	interval  time.Duration
	batchSize int
	lockTTL   time.Duration
	logger    *slog.Logger
}

func NewExpirationWorker(
	payments application.PaymentRepository,
	expirer PaymentExpirer,
	locker application.Locker,
	clock application.Clock,
	cfg config.WorkerConfig,
	logger *slog.Logger,
) *ExpirationWorker {
	return &ExpirationWorker{
		payments:  payments,
		expirer:   expirer,
		locker:    locker,
		clock:     clock,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		lockTTL:   cfg.LockTTL,
		logger:    logger,
	}
}

func (w *ExpirationWorker) Start(ctx context.Context) {
	runEvery(ctx, "expiration worker", w.interval, w.logger, func(ctx context.Context) error {
		_, err := w.RunOnce(ctx)
		return err
	})
}

// RunOnce expires one batch and returns how many payments ended up expired.
func (w *ExpirationWorker) RunOnce(ctx context.Context) (int, error) {
	expired, _, err := withLock(ctx, w.locker, expirationLockKey, w.lockTTL, w.logger, w.processExpirations)
	return expired, err
}

func (w *ExpirationWorker) processExpirations(ctx context.Context) (int, error) {
	due, err := w.payments.FindExpiredPending(ctx, w.clock.Now(), w.batchSize)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	var expired int
	for _, payment := range due {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}

		updated, err := w.expirer.ExpirePayment(ctx, payment.ID)
		if err != nil {
			w.logger.Error("failed to expire payment",
				"payment_id", payment.ID,
				"error", err)
			continue
		}
		if updated.Status == domain.PaymentExpired {
			expired++
		}
	}

	w.logger.Info("processed expiration check",
		"processed", len(due),
		"marked_expired", expired)

	return expired, nil
}
