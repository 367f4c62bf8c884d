package testhelpers

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application/services"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/google/uuid"
)

// FixedClock is a settable application.Clock for tests.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now.UTC()}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// DiscardLogger drops everything below error level.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// DefaultCreatePaymentCommand returns a valid QRIS payment of 100,000 for a fresh order.
func DefaultCreatePaymentCommand() services.CreatePaymentCommand {
	return services.CreatePaymentCommand{
		OrderRef:    "order-" + uuid.New().String(),
		PayerRef:    "buyer-" + uuid.New().String(),
		GrossAmount: 100000,
		Method:      domain.MethodQRIS,
		Customer: domain.CustomerInfo{
			Name:  "Budi Santoso",
			Email: "budi@example.com",
		},
	}
}

// ChargeResultFor mimics a simulator charge for the request.
func ChargeResultFor(req domain.ChargeRequest) *domain.ChargeResult {
	return &domain.ChargeResult{
		ExternalRef: "SIM-" + uuid.New().String(),
		Instructions: domain.PaymentInstructions{
			QRPayload: "SIMQR|" + req.TransactionRef,
		},
	}
}

// WebhookBody builds a simulator-style callback body.
func WebhookBody(transactionRef, status, grossAmount string) []byte {
	return []byte(`{"transaction_id":"` + transactionRef +
		`","transaction_status":"` + status +
		`","gross_amount":"` + grossAmount +
		`","signature":"test-signature"}`)
}

func DefaultWithdrawalCommand(escrowID string) services.CreateWithdrawalCommand {
	return services.CreateWithdrawalCommand{
		EscrowID:           escrowID,
		PayeeRef:           "seller-" + uuid.New().String(),
		PayoutMethod:       domain.PayoutBankTransfer,
		DestinationAccount: "bca:1234567890",
	}
}
