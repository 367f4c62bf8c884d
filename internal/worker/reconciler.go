package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/config"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

const reconcileLockKey = "reconcile"

type PaymentReconciler interface {
	CheckStatus(ctx context.Context, paymentID string) (*domain.Payment, error)
}

// Reconciler asks the gateway about pending payments that have not received a
// callback for a while. It recovers charges whose webhook was lost.
type Reconciler struct {
	payments   application.PaymentRepository
	reconciler PaymentReconciler
	locker     application.Locker
	clock      application.Clock
	interval   time.Duration
	staleAfter time.Duration
	batchSize  int
	lockTTL    time.Duration
	logger     *slog.Logger
}

func NewReconciler(
	payments application.PaymentRepository,
	reconciler PaymentReconciler,
	locker application.Locker,
	clock application.Clock,
	cfg config.WorkerConfig,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		payments:   payments,
		reconciler: reconciler,
		locker:     locker,
		clock:      clock,
		interval:   cfg.Interval,
		staleAfter: cfg.ReconcileAfter,
		batchSize:  cfg.BatchSize,
		lockTTL:    cfg.LockTTL,
		logger:     logger,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	runEvery(ctx, "reconciler", r.interval, r.logger, func(ctx context.Context) error {
		_, err := r.RunOnce(ctx)
		return err
	})
}

// RunOnce executes a single reconciliation cycle and returns how many payments changed status.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	changed, _, err := withLock(ctx, r.locker, reconcileLockKey, r.lockTTL, r.logger, r.reconcileStalePayments)
	return changed, err
}

func (r *Reconciler) reconcileStalePayments(ctx context.Context) (int, error) {
	now := r.clock.Now()
	stale, err := r.payments.FindStalePending(ctx, now.Add(-r.staleAfter), now, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	r.logger.Info("reconciling stale payments", "count", len(stale))

	var changed int
	for _, p := range stale {
		if ctx.Err() != nil {
			return changed, ctx.Err()
		}

		updated, err := r.reconciler.CheckStatus(ctx, p.ID)
		if err != nil {
			r.logger.Error("reconciliation failed for payment",
				"payment_id", p.ID,
				"category", application.CategorizeError(err),
				"error", err)
			continue
		}
		if updated.Status != p.Status {
			changed++
			r.logger.Info("reconciled payment", "payment_id", p.ID, "new_status", updated.Status)
		}
	}
	return changed, nil
}
