package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/jackc/pgx/v5"
)

const refundColumns = `
	id, payment_id, escrow_id, requester, reason, amount, status, admin_note,
	requested_at, processed_at, updated_at`

type RefundRepository struct {
	q Executor
}

func NewRefundRepository(db *DB) *RefundRepository {
	return &RefundRepository{q: db.Pool}
}

func (r *RefundRepository) Create(ctx context.Context, refund *domain.Refund) error {
	query := `
		INSERT INTO refunds (` + refundColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.q.Exec(ctx, query,
		refund.ID, refund.PaymentID, refund.EscrowID, refund.Requester, refund.Reason, refund.Amount,
		string(refund.Status), refund.AdminNote, refund.RequestedAt, refund.ProcessedAt, refund.UpdatedAt,
	)
	if err != nil {
		if violatedConstraint(err) == "refunds_active_payment_idx" {
			return domain.NewActiveRefundExistsError(refund.PaymentID)
		}
		return fmt.Errorf("failed to create refund: %w", err)
	}
	return nil
}

func (r *RefundRepository) FindByID(ctx context.Context, id string) (*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE id = $1`
	return scanRefund(r.q.QueryRow(ctx, query, id), id)
}

func (r *RefundRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE id = $1 FOR UPDATE`
	return scanRefund(r.q.QueryRow(ctx, query, id), id)
}

func (r *RefundRepository) FindActiveByPaymentID(ctx context.Context, paymentID string) (*domain.Refund, error) {
	query := `
		SELECT ` + refundColumns + ` FROM refunds
		WHERE payment_id = $1 AND status IN ('pending', 'processing')
	`
	return scanRefund(r.q.QueryRow(ctx, query, paymentID), paymentID)
}

func (r *RefundRepository) Update(ctx context.Context, refund *domain.Refund, expected domain.RefundStatus) error {
	query := `
		UPDATE refunds
		SET status = $1, admin_note = $2, processed_at = $3, updated_at = $4
		WHERE id = $5 AND status = $6
	`

	tag, err := r.q.Exec(ctx, query,
		string(refund.Status), refund.AdminNote, refund.ProcessedAt, refund.UpdatedAt,
		refund.ID, string(expected),
	)
	if err != nil {
		return fmt.Errorf("failed to update refund: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewConcurrentModificationError("refund", refund.ID)
	}
	return nil
}

func scanRefund(row pgx.Row, key string) (*domain.Refund, error) {
	var (
		refund domain.Refund
		status string
	)
	err := row.Scan(
		&refund.ID, &refund.PaymentID, &refund.EscrowID, &refund.Requester, &refund.Reason, &refund.Amount,
		&status, &refund.AdminNote, &refund.RequestedAt, &refund.ProcessedAt, &refund.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("refund", key)
		}
		return nil, fmt.Errorf("failed to scan refund: %w", err)
	}
	refund.Status = domain.RefundStatus(status)
	return &refund, nil
}
