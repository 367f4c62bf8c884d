package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/application/services"
	"github.com/DanielPopoola/ficmart-escrow/internal/application/services/testhelpers"
	"github.com/DanielPopoola/ficmart-escrow/internal/config"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/DanielPopoola/ficmart-escrow/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/ficmart-escrow/internal/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

// harness wires every service against one database and one mocked gateway.
type harness struct {
	store   *postgres.Store
	gateway *mocks.MockGateway
	clock   *testhelpers.FixedClock

	payments    *services.PaymentService
	escrows     *services.EscrowService
	withdrawals *services.WithdrawalService
	refunds     *services.RefundService
	retries     *services.RetryService
}

func newHarness(t *testing.T, testDB *testhelpers.TestDatabase) *harness {
	t.Helper()

	gw := mocks.NewMockGateway(t)
	gw.EXPECT().Name().Return(domain.GatewaySimulator).Maybe()

	registry, err := application.NewGatewayRegistry(domain.GatewaySimulator, gw)
	require.NoError(t, err)

	clock := testhelpers.NewFixedClock(baseTime)
	logger := testhelpers.DiscardLogger()
	store := testDB.Store
	paymentCfg := config.PaymentConfig{Expiry: 24 * time.Hour, MaxRetries: 3}

	escrows := services.NewEscrowService(store, config.EscrowConfig{AutoReleaseAfter: 7 * 24 * time.Hour}, clock, logger)

	return &harness{
		store:       store,
		gateway:     gw,
		clock:       clock,
		payments:    services.NewPaymentService(store, registry, escrows, paymentCfg, clock, logger),
		escrows:     escrows,
		withdrawals: services.NewWithdrawalService(store, clock, logger),
		refunds:     services.NewRefundService(store, clock, logger),
		retries:     services.NewRetryService(store, registry, paymentCfg, clock, logger),
	}
}

func (h *harness) expectCharge() {
	h.gateway.EXPECT().
		CreateCharge(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
			return testhelpers.ChargeResultFor(req), nil
		}).
		Once()
}

func (h *harness) createPayment(t *testing.T, ctx context.Context) *domain.Payment {
	t.Helper()
	h.expectCharge()

	payment, err := h.payments.CreatePayment(ctx, testhelpers.DefaultCreatePaymentCommand())
	require.NoError(t, err)
	return payment
}

// settle delivers a signed settlement callback for the payment.
func (h *harness) settle(t *testing.T, ctx context.Context, payment *domain.Payment) {
	t.Helper()
	h.gateway.EXPECT().VerifyWebhookSignature(mock.Anything, mock.Anything).Return(true).Once()

	result, err := h.payments.HandleWebhook(ctx, testhelpers.WebhookBody(payment.TransactionRef, "settlement", "106000.00"))
	require.NoError(t, err)
	require.Equal(t, services.WebhookProcessed, result.Status)
}

// heldEscrow returns the escrow of a freshly paid 100,000 payment.
func (h *harness) heldEscrow(t *testing.T, ctx context.Context) (*domain.Payment, *domain.Escrow) {
	t.Helper()
	payment := h.createPayment(t, ctx)
	h.settle(t, ctx, payment)

	escrow, err := h.store.Escrows().FindByPaymentID(ctx, payment.ID)
	require.NoError(t, err)
	require.Equal(t, domain.EscrowHeld, escrow.Status)
	return payment, escrow
}

func (h *harness) releasedEscrow(t *testing.T, ctx context.Context) *domain.Escrow {
	t.Helper()
	_, escrow := h.heldEscrow(t, ctx)

	released, err := h.escrows.Release(ctx, services.EscrowActionCommand{
		EscrowID: escrow.ID,
		ActorRef: "buyer-confirmation",
	})
	require.NoError(t, err)
	return released
}

func (h *harness) outboxTypes(t *testing.T, ctx context.Context) []domain.EventType {
	t.Helper()
	var types []domain.EventType
	err := h.store.WithTx(ctx, func(tx application.Store) error {
		events, err := tx.Outbox().FetchUnpublished(ctx, 100)
		if err != nil {
			return err
		}
		for _, e := range events {
			types = append(types, e.Type)
		}
		return nil
	})
	require.NoError(t, err)
	return types
}
