package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `
	id, order_ref, payer_ref, gross_amount, platform_fee, gateway_fee, total_charged,
	method, channel, gateway, transaction_ref, external_ref, initiation_url, instructions,
	status, retry_count, previous_payment_id, superseded_by, invoice_number,
	expires_at, paid_at, last_callback, created_at, updated_at`

type PaymentRepository struct {
	q Executor
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{q: db.Pool}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`

	p, err := toPaymentModel(payment)
	if err != nil {
		return err
	}

	_, err = r.q.Exec(ctx, query,
		p.ID, p.OrderRef, p.PayerRef, p.GrossAmount, p.PlatformFee, p.GatewayFee, p.TotalCharged,
		p.Method, p.Channel, p.Gateway, p.TransactionRef, p.ExternalRef, p.InitiationURL, p.Instructions,
		p.Status, p.RetryCount, p.PreviousPaymentID, p.SupersededBy, p.InvoiceNumber,
		p.ExpiresAt, p.PaidAt, p.LastCallback, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		switch violatedConstraint(err) {
		case "payments_active_order_idx":
			return domain.NewActivePaymentExistsError(payment.OrderRef)
		case "payments_transaction_ref_key":
			return domain.NewValidationError("transaction reference %s already used", payment.TransactionRef)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// FindByID retrieves a payment
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.q.QueryRow(ctx, query, id), id)
}

// FindByIDForUpdate retrieves a payment with a row-level lock. Only meaningful inside a transaction.
func (r *PaymentRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`
	return scanPayment(r.q.QueryRow(ctx, query, id), id)
}

func (r *PaymentRepository) FindByTransactionRef(ctx context.Context, ref string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_ref = $1`
	return scanPayment(r.q.QueryRow(ctx, query, ref), ref)
}

func (r *PaymentRepository) FindByExternalRef(ctx context.Context, ref string) (*domain.Payment, error) {
	if ref == "" {
		return nil, domain.NewNotFoundError("payment", ref)
	}
	query := `
		SELECT ` + paymentColumns + ` FROM payments
		WHERE external_ref = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanPayment(r.q.QueryRow(ctx, query, ref), ref)
}

// FindActiveByOrderRef returns the pending or paid payment of an order, if any.
func (r *PaymentRepository) FindActiveByOrderRef(ctx context.Context, orderRef string) (*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + ` FROM payments
		WHERE order_ref = $1 AND status IN ('pending', 'paid')
	`
	return scanPayment(r.q.QueryRow(ctx, query, orderRef), orderRef)
}

// FindExpiredPending finds pending payments whose expiry has passed
func (r *PaymentRepository) FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + ` FROM payments
		WHERE status = 'pending' AND expires_at <= $1
		ORDER BY expires_at ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query expired pending payments: %w", err)
	}
	return collectPayments(rows)
}

// FindStalePending finds pending, unexpired payments untouched since before updatedBefore.
func (r *PaymentRepository) FindStalePending(ctx context.Context, updatedBefore, now time.Time, limit int) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + ` FROM payments
		WHERE status = 'pending' AND updated_at <= $1 AND expires_at > $2
		ORDER BY updated_at ASC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, updatedBefore, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale pending payments: %w", err)
	}
	return collectPayments(rows)
}

func collectPayments(rows pgx.Rows) ([]*domain.Payment, error) {
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Payment, error) {
		m, err := scanPaymentModel(row)
		if err != nil {
			return nil, err
		}
		return toDomainPayment(m)
	})
	if err != nil {
		return nil, fmt.Errorf("scan payments: %w", err)
	}
	return results, nil
}

// UpdateStatus persists the mutable fields of a payment if its stored status is still expected.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, payment *domain.Payment, expected domain.PaymentStatus) error {
	query := `
		UPDATE payments
		SET status = $1,
			external_ref = $2, initiation_url = $3, instructions = $4,
			superseded_by = $5, paid_at = $6, last_callback = $7, updated_at = $8
		WHERE id = $9 AND status = $10
	`

	p, err := toPaymentModel(payment)
	if err != nil {
		return err
	}

	tag, err := r.q.Exec(ctx, query,
		p.Status,
		p.ExternalRef, p.InitiationURL, p.Instructions,
		p.SupersededBy, p.PaidAt, p.LastCallback, p.UpdatedAt,
		p.ID, string(expected),
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewConcurrentModificationError("payment", payment.ID)
	}

	return nil
}

func scanPaymentModel(row pgx.Row) (PaymentModel, error) {
	var m PaymentModel
	err := row.Scan(
		&m.ID, &m.OrderRef, &m.PayerRef, &m.GrossAmount, &m.PlatformFee, &m.GatewayFee, &m.TotalCharged,
		&m.Method, &m.Channel, &m.Gateway, &m.TransactionRef, &m.ExternalRef, &m.InitiationURL, &m.Instructions,
		&m.Status, &m.RetryCount, &m.PreviousPaymentID, &m.SupersededBy, &m.InvoiceNumber,
		&m.ExpiresAt, &m.PaidAt, &m.LastCallback, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

func scanPayment(row pgx.Row, key string) (*domain.Payment, error) {
	m, err := scanPaymentModel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("payment", key)
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return toDomainPayment(m)
}
