package application

import (
	"context"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

// Gateway is the port for an external (or simulated) payment processor.
type Gateway interface {
	Name() domain.GatewayName
	CreateCharge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error)
	// QueryStatus returns the processor's own status string for the transaction.
	QueryStatus(ctx context.Context, transactionRef string) (string, error)
	Cancel(ctx context.Context, transactionRef string) error
	// VerifyWebhookSignature checks the callback against the transaction reference of
	// the payment it was matched to.
	VerifyWebhookSignature(payload domain.WebhookPayload, transactionRef string) bool
}

// PaymentRepository is the port for payment persistence. UpdateStatus only
// succeeds while the stored status still equals expected.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	FindByID(ctx context.Context, id string) (*domain.Payment, error)
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Payment, error)
	FindByTransactionRef(ctx context.Context, ref string) (*domain.Payment, error)
	FindByExternalRef(ctx context.Context, ref string) (*domain.Payment, error)
	FindActiveByOrderRef(ctx context.Context, orderRef string) (*domain.Payment, error)
	FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*domain.Payment, error)
	FindStalePending(ctx context.Context, updatedBefore, now time.Time, limit int) ([]*domain.Payment, error)
	UpdateStatus(ctx context.Context, payment *domain.Payment, expected domain.PaymentStatus) error
}

type EscrowRepository interface {
	Create(ctx context.Context, escrow *domain.Escrow) error
	FindByID(ctx context.Context, id string) (*domain.Escrow, error)
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Escrow, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*domain.Escrow, error)
	FindDueForRelease(ctx context.Context, now time.Time, limit int) ([]*domain.Escrow, error)
	Update(ctx context.Context, escrow *domain.Escrow, expected domain.EscrowStatus) error
}

type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *domain.Withdrawal) error
	FindByID(ctx context.Context, id string) (*domain.Withdrawal, error)
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Withdrawal, error)
	FindActiveByEscrowID(ctx context.Context, escrowID string) (*domain.Withdrawal, error)
	Update(ctx context.Context, withdrawal *domain.Withdrawal, expected domain.WithdrawalStatus) error
}

type RefundRepository interface {
	Create(ctx context.Context, refund *domain.Refund) error
	FindByID(ctx context.Context, id string) (*domain.Refund, error)
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Refund, error)
	FindActiveByPaymentID(ctx context.Context, paymentID string) (*domain.Refund, error)
	Update(ctx context.Context, refund *domain.Refund, expected domain.RefundStatus) error
}

type OutboxRepository interface {
	Append(ctx context.Context, event *domain.OutboxEvent) error
	FetchUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

// Store groups the repositories. Repositories obtained inside WithTx share the transaction.
type Store interface {
	Payments() PaymentRepository
	Escrows() EscrowRepository
	Withdrawals() WithdrawalRepository
	Refunds() RefundRepository
	Outbox() OutboxRepository
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// EventPublisher delivers outbox events to the order subsystem.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Locker provides a best-effort lock shared between service instances.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, acquired bool, err error)
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
