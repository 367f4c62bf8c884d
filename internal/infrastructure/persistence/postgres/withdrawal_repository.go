package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/jackc/pgx/v5"
)

const withdrawalColumns = `
	id, escrow_id, payee_ref, payout_method, destination_account,
	gross_amount, platform_fee, net_amount, status, proof_ref, notes, failure_reason,
	processed_by, processing_at, completed_at, failed_at, created_at, updated_at`

type WithdrawalRepository struct {
	q Executor
}

func NewWithdrawalRepository(db *DB) *WithdrawalRepository {
	return &WithdrawalRepository{q: db.Pool}
}

func (r *WithdrawalRepository) Create(ctx context.Context, w *domain.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (` + withdrawalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.q.Exec(ctx, query,
		w.ID, w.EscrowID, w.PayeeRef, string(w.PayoutMethod), w.DestinationAccount,
		w.GrossAmount, w.PlatformFee, w.NetAmount, string(w.Status), w.ProofRef, w.Notes, w.FailureReason,
		w.ProcessedBy, w.ProcessingAt, w.CompletedAt, w.FailedAt, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		if violatedConstraint(err) == "withdrawals_active_escrow_idx" {
			return domain.NewActiveWithdrawalExistsError(w.EscrowID)
		}
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}
	return nil
}

func (r *WithdrawalRepository) FindByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`
	return scanWithdrawal(r.q.QueryRow(ctx, query, id), id)
}

func (r *WithdrawalRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1 FOR UPDATE`
	return scanWithdrawal(r.q.QueryRow(ctx, query, id), id)
}

func (r *WithdrawalRepository) FindActiveByEscrowID(ctx context.Context, escrowID string) (*domain.Withdrawal, error) {
	query := `
		SELECT ` + withdrawalColumns + ` FROM withdrawals
		WHERE escrow_id = $1 AND status IN ('pending', 'processing')
	`
	return scanWithdrawal(r.q.QueryRow(ctx, query, escrowID), escrowID)
}

func (r *WithdrawalRepository) Update(ctx context.Context, w *domain.Withdrawal, expected domain.WithdrawalStatus) error {
	query := `
		UPDATE withdrawals
		SET status = $1, proof_ref = $2, notes = $3, failure_reason = $4, processed_by = $5,
			processing_at = $6, completed_at = $7, failed_at = $8, updated_at = $9
		WHERE id = $10 AND status = $11
	`

	tag, err := r.q.Exec(ctx, query,
		string(w.Status), w.ProofRef, w.Notes, w.FailureReason, w.ProcessedBy,
		w.ProcessingAt, w.CompletedAt, w.FailedAt, w.UpdatedAt,
		w.ID, string(expected),
	)
	if err != nil {
		return fmt.Errorf("failed to update withdrawal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewConcurrentModificationError("withdrawal", w.ID)
	}
	return nil
}

func scanWithdrawal(row pgx.Row, key string) (*domain.Withdrawal, error) {
	var (
		w              domain.Withdrawal
		method, status string
	)
	err := row.Scan(
		&w.ID, &w.EscrowID, &w.PayeeRef, &method, &w.DestinationAccount,
		&w.GrossAmount, &w.PlatformFee, &w.NetAmount, &status, &w.ProofRef, &w.Notes, &w.FailureReason,
		&w.ProcessedBy, &w.ProcessingAt, &w.CompletedAt, &w.FailedAt, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("withdrawal", key)
		}
		return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
	}
	w.PayoutMethod = domain.PayoutMethod(method)
	w.Status = domain.WithdrawalStatus(status)
	return &w, nil
}
