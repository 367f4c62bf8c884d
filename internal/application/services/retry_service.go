package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/config"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

// RetryService replaces a failed or expired payment with a new attempt for the same order.
type RetryService struct {
	store      application.Store
	gateways   *application.GatewayRegistry
	clock      application.Clock
	maxRetries int
	expiry     time.Duration
	logger     *slog.Logger
}

func NewRetryService(
	store application.Store,
	gateways *application.GatewayRegistry,
	cfg config.PaymentConfig,
	clock application.Clock,
	logger *slog.Logger,
) *RetryService {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = domain.MaxPaymentRetry
	}
	return &RetryService{
		store:      store,
		gateways:   gateways,
		clock:      clock,
		maxRetries: maxRetries,
		expiry:     cfg.Expiry,
		logger:     logger,
	}
}

// RetryPayment charges the gateway for a new attempt, then supersedes the old payment
// and stores the new one in a single transaction.
func (s *RetryService) RetryPayment(ctx context.Context, cmd RetryPaymentCommand) (*domain.Payment, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	old, err := s.store.Payments().FindByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, storeError(err)
	}
	if err := old.CheckRetryable(s.maxRetries); err != nil {
		s.logger.Warn("payment cannot be retried", "payment_id", old.ID, "status", old.Status, "retry_count", old.RetryCount)
		return nil, err
	}

	gw, err := s.gateways.Get(old.Gateway)
	if err != nil {
		return nil, err
	}

	method, channel := old.Method, old.Channel
	if cmd.Method != "" {
		method, channel = cmd.Method, cmd.Channel
	}

	newPaymentID := newID()
	next, err := domain.NewPayment(domain.NewPaymentParams{
		ID:             newPaymentID,
		OrderRef:       old.OrderRef,
		PayerRef:       old.PayerRef,
		GrossAmount:    old.GrossAmount,
		Method:         method,
		Channel:        channel,
		Gateway:        old.Gateway,
		TransactionRef: transactionRefFor(newPaymentID),
		InvoiceNumber:  old.InvoiceNumber,
		Expiry:         s.expiry,
		Now:            s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	next.RetryCount = old.RetryCount + 1
	previousID := old.ID
	next.PreviousPaymentID = &previousID

	result, err := gw.CreateCharge(ctx, domain.ChargeRequest{
		TransactionRef: next.TransactionRef,
		GrossAmount:    next.TotalCharged,
		Customer:       cmd.Customer,
		Method:         next.Method,
		Channel:        next.Channel,
		LineItems:      cmd.LineItems,
	})
	if err != nil {
		s.logger.Error("gateway charge failed for retry", "payment_id", old.ID, "error", err)
		return nil, gatewayFailure(gw, err)
	}
	next.AttachCharge(result)

	err = s.store.WithTx(ctx, func(tx application.Store) error {
		locked, err := tx.Payments().FindByIDForUpdate(ctx, old.ID)
		if err != nil {
			return err
		}
		if err := locked.CheckRetryable(s.maxRetries); err != nil {
			return err
		}
		expected := locked.Status
		if err := locked.Supersede(next.ID, s.clock.Now()); err != nil {
			return err
		}
		if err := tx.Payments().UpdateStatus(ctx, locked, expected); err != nil {
			return err
		}
		return tx.Payments().Create(ctx, next)
	})
	if err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), gatewayCleanupTimeout)
		defer cancel()
		if cancelErr := gw.Cancel(ctx, next.TransactionRef); cancelErr != nil {
			s.logger.Error("failed to cancel charge of abandoned retry", "transaction_ref", next.TransactionRef, "error", cancelErr)
		}
		return nil, storeError(err)
	}

	s.logger.Info("payment retried",
		"payment_id", next.ID,
		"previous_payment_id", old.ID,
		"retry_count", next.RetryCount,
	)
	return next, nil
}
