package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/config"
)

// OutboxRelay publishes committed outbox events. Rows are claimed with SKIP LOCKED
// so several relays can run side by side. Delivery is at least once.
type OutboxRelay struct {
	store     application.Store
	publisher application.EventPublisher
	clock     application.Clock
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewOutboxRelay(
	store application.Store,
	publisher application.EventPublisher,
	clock application.Clock,
	cfg config.WorkerConfig,
	logger *slog.Logger,
) *OutboxRelay {
	return &OutboxRelay{
		store:     store,
		publisher: publisher,
		clock:     clock,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		logger:    logger,
	}
}

func (r *OutboxRelay) Start(ctx context.Context) {
	runEvery(ctx, "outbox relay", r.interval, r.logger, func(ctx context.Context) error {
		_, err := r.RunOnce(ctx)
		return err
	})
}

// RunOnce publishes one batch and returns the number of events delivered. A failed
// event is recorded and retried on a later run; it does not block the rest of the batch.
func (r *OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	var published int
	err := r.store.WithTx(ctx, func(tx application.Store) error {
		batch, err := tx.Outbox().FetchUnpublished(ctx, r.batchSize)
		if err != nil {
			return err
		}

		for _, event := range batch {
			if err := r.publisher.Publish(ctx, event); err != nil {
				r.logger.Warn("failed to publish event",
					"event_id", event.ID,
					"type", event.Type,
					"attempts", event.Attempts+1,
					"error", err)
				if markErr := tx.Outbox().MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
					return markErr
				}
				continue
			}

			if err := tx.Outbox().MarkPublished(ctx, event.ID, r.clock.Now()); err != nil {
				return err
			}
			published++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if published > 0 {
		r.logger.Info("outbox events published", "count", published)
	}
	return published, nil
}
