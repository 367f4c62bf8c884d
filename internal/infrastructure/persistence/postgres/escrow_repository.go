package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/jackc/pgx/v5"
)

const escrowColumns = `
	id, payment_id, order_ref, amount, platform_fee, released_amount, refunded_amount,
	status, held_at, auto_release_at, released_at, refunded_at, completed_at,
	actor_ref, reason, created_at, updated_at`

type EscrowRepository struct {
	q Executor
}

func NewEscrowRepository(db *DB) *EscrowRepository {
	return &EscrowRepository{q: db.Pool}
}

// Create inserts the escrow. The unique constraint on payment_id turns a second insert into a duplicate error.
func (r *EscrowRepository) Create(ctx context.Context, e *domain.Escrow) error {
	query := `
		INSERT INTO escrows (` + escrowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.q.Exec(ctx, query,
		e.ID, e.PaymentID, e.OrderRef, e.Amount, e.PlatformFee, e.ReleasedAmount, e.RefundedAmount,
		string(e.Status), e.HeldAt, e.AutoReleaseAt, e.ReleasedAt, e.RefundedAt, e.CompletedAt,
		e.ActorRef, e.Reason, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if violatedConstraint(err) == "escrows_payment_id_key" {
			return domain.NewDuplicateEscrowError(e.PaymentID)
		}
		return fmt.Errorf("failed to create escrow: %w", err)
	}
	return nil
}

func (r *EscrowRepository) FindByID(ctx context.Context, id string) (*domain.Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE id = $1`
	return scanEscrow(r.q.QueryRow(ctx, query, id), id)
}

func (r *EscrowRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE id = $1 FOR UPDATE`
	return scanEscrow(r.q.QueryRow(ctx, query, id), id)
}

func (r *EscrowRepository) FindByPaymentID(ctx context.Context, paymentID string) (*domain.Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE payment_id = $1`
	return scanEscrow(r.q.QueryRow(ctx, query, paymentID), paymentID)
}

// FindDueForRelease returns held escrows whose auto-release time has passed. Disputed escrows are never returned.
func (r *EscrowRepository) FindDueForRelease(ctx context.Context, now time.Time, limit int) ([]*domain.Escrow, error) {
	query := `
		SELECT ` + escrowColumns + ` FROM escrows
		WHERE status = 'held' AND auto_release_at <= $1
		ORDER BY auto_release_at ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query escrows due for release: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Escrow, error) {
		return scanEscrowRow(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan escrows due for release: %w", err)
	}
	return results, nil
}

func (r *EscrowRepository) Update(ctx context.Context, e *domain.Escrow, expected domain.EscrowStatus) error {
	query := `
		UPDATE escrows
		SET status = $1, released_amount = $2, refunded_amount = $3,
			released_at = $4, refunded_at = $5, completed_at = $6,
			actor_ref = $7, reason = $8, updated_at = $9
		WHERE id = $10 AND status = $11
	`

	tag, err := r.q.Exec(ctx, query,
		string(e.Status), e.ReleasedAmount, e.RefundedAmount,
		e.ReleasedAt, e.RefundedAt, e.CompletedAt,
		e.ActorRef, e.Reason, e.UpdatedAt,
		e.ID, string(expected),
	)
	if err != nil {
		return fmt.Errorf("failed to update escrow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewConcurrentModificationError("escrow", e.ID)
	}
	return nil
}

func scanEscrowRow(row pgx.Row) (*domain.Escrow, error) {
	var (
		e      domain.Escrow
		status string
	)
	err := row.Scan(
		&e.ID, &e.PaymentID, &e.OrderRef, &e.Amount, &e.PlatformFee, &e.ReleasedAmount, &e.RefundedAmount,
		&status, &e.HeldAt, &e.AutoReleaseAt, &e.ReleasedAt, &e.RefundedAt, &e.CompletedAt,
		&e.ActorRef, &e.Reason, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Status = domain.EscrowStatus(status)
	return &e, nil
}

func scanEscrow(row pgx.Row, key string) (*domain.Escrow, error) {
	e, err := scanEscrowRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("escrow", key)
		}
		return nil, fmt.Errorf("failed to scan escrow: %w", err)
	}
	return e, nil
}
