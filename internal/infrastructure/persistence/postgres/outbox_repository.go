package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/jackc/pgx/v5"
)

type OutboxRepository struct {
	q Executor
}

func NewOutboxRepository(db *DB) *OutboxRepository {
	return &OutboxRepository{q: db.Pool}
}

// Append stores an event. Call it with the transactional store so the event commits with the state change.
func (r *OutboxRepository) Append(ctx context.Context, event *domain.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, event_type, aggregate_id, order_ref, payload, attempts, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, '', $6)
	`

	_, err := r.q.Exec(ctx, query,
		event.ID, string(event.Type), event.AggregateID, event.OrderRef, []byte(event.Payload), event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append outbox event: %w", err)
	}
	return nil
}

// FetchUnpublished locks a batch of pending events. Rows locked by another relay are skipped.
func (r *OutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	query := `
		SELECT id, event_type, aggregate_id, order_ref, payload, attempts, last_error, created_at, published_at
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unpublished events: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.OutboxEvent, error) {
		var m OutboxModel
		err := row.Scan(
			&m.ID, &m.EventType, &m.AggregateID, &m.OrderRef, &m.Payload,
			&m.Attempts, &m.LastError, &m.CreatedAt, &m.PublishedAt,
		)
		return toDomainOutboxEvent(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan unpublished events: %w", err)
	}
	return results, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE outbox_events
		SET published_at = $1, attempts = attempts + 1, last_error = ''
		WHERE id = $2
	`
	if _, err := r.q.Exec(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to mark event %s published: %w", id, err)
	}
	return nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	query := `
		UPDATE outbox_events
		SET attempts = attempts + 1, last_error = $1
		WHERE id = $2
	`
	if _, err := r.q.Exec(ctx, query, reason, id); err != nil {
		return fmt.Errorf("failed to mark event %s failed: %w", id, err)
	}
	return nil
}
