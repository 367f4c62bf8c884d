package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/config"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

// EscrowCreator opens the escrow for a paid payment.
type EscrowCreator interface {
	CreateEscrow(ctx context.Context, paymentID string) (*domain.Escrow, error)
}

const (
	WebhookProcessed = "processed"
	WebhookIgnored   = "ignored"
)

// WebhookResult is the acknowledgement returned to the gateway.
type WebhookResult struct {
	Status    string `json:"status"`
	PaymentID string `json:"payment_id,omitempty"`
}

type PaymentService struct {
	store    application.Store
	gateways *application.GatewayRegistry
	escrows  EscrowCreator
	expiry   time.Duration
	clock    application.Clock
	logger   *slog.Logger
}

func NewPaymentService(
	store application.Store,
	gateways *application.GatewayRegistry,
	escrows EscrowCreator,
	cfg config.PaymentConfig,
	clock application.Clock,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		store:    store,
		gateways: gateways,
		escrows:  escrows,
		expiry:   cfg.Expiry,
		clock:    clock,
		logger:   logger,
	}
}

// CreatePayment computes fees, obtains a gateway charge and stores a pending payment.
// Nothing is stored when the gateway call fails.
func (s *PaymentService) CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (*domain.Payment, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	gw := s.gateways.Default()
	if cmd.Gateway != "" {
		var err error
		if gw, err = s.gateways.Get(cmd.Gateway); err != nil {
			return nil, err
		}
	}

	paymentID := newID()
	payment, err := domain.NewPayment(domain.NewPaymentParams{
		ID:             paymentID,
		OrderRef:       cmd.OrderRef,
		PayerRef:       cmd.PayerRef,
		GrossAmount:    cmd.GrossAmount,
		Method:         cmd.Method,
		Channel:        cmd.Channel,
		Gateway:        gw.Name(),
		TransactionRef: transactionRefFor(paymentID),
		Expiry:         s.expiry,
		Now:            s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	if existing, err := s.store.Payments().FindActiveByOrderRef(ctx, cmd.OrderRef); err == nil {
		s.logger.Warn("order already has an active payment", "order_ref", cmd.OrderRef, "payment_id", existing.ID)
		return nil, domain.NewActivePaymentExistsError(cmd.OrderRef)
	} else if !isNotFound(err) {
		return nil, storeError(err)
	}

	if err := s.charge(ctx, gw, payment, cmd.Customer, cmd.LineItems); err != nil {
		return nil, err
	}

	if err := s.store.Payments().Create(ctx, payment); err != nil {
		s.cancelCharge(gw, payment)
		return nil, storeError(err)
	}

	s.logger.Info("payment created",
		"payment_id", payment.ID,
		"order_ref", payment.OrderRef,
		"gateway", payment.Gateway,
		"total_charged", payment.TotalCharged,
	)
	return payment, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	payment, err := s.store.Payments().FindByID(ctx, paymentID)
	return payment, storeError(err)
}

// HandleWebhook verifies and applies a gateway callback. Unknown references and
// unparseable bodies are acknowledged as ignored; only a bad signature is an error.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte) (*WebhookResult, error) {
	payload, err := domain.ParseWebhookPayload(body)
	if err != nil {
		s.logger.Warn("ignoring malformed webhook", "error", err)
		return &WebhookResult{Status: WebhookIgnored}, nil
	}

	payment, err := s.findByReferences(ctx, payload.References())
	if err != nil {
		if isNotFound(err) {
			s.logger.Info("ignoring webhook for unknown transaction", "references", payload.References())
			return &WebhookResult{Status: WebhookIgnored}, nil
		}
		return nil, storeError(err)
	}

	gw, err := s.gateways.Get(payment.Gateway)
	if err != nil {
		s.logger.Error("payment references an unregistered gateway", "payment_id", payment.ID, "gateway", payment.Gateway)
		return &WebhookResult{Status: WebhookIgnored, PaymentID: payment.ID}, nil
	}

	// A body whose references name different payments is forged even if one of them is signed.
	for _, ref := range payload.References() {
		if !payment.OwnsReference(ref) {
			s.logger.Warn("webhook references disagree",
				"payment_id", payment.ID,
				"transaction_ref", payment.TransactionRef,
				"reference", ref,
			)
			return nil, domain.NewSignatureError(payment.TransactionRef)
		}
	}

	if !gw.VerifyWebhookSignature(payload, payment.TransactionRef) {
		s.logger.Warn("webhook signature verification failed",
			"payment_id", payment.ID,
			"transaction_ref", payment.TransactionRef,
			"gateway", gw.Name(),
		)
		return nil, domain.NewSignatureError(payment.TransactionRef)
	}

	if err := checkWebhookAmount(payload, payment); err != nil {
		s.logger.Error("ignoring webhook with wrong amount",
			"payment_id", payment.ID,
			"received", payload.GrossAmount,
			"error", err,
		)
		return &WebhookResult{Status: WebhookIgnored, PaymentID: payment.ID}, nil
	}

	target := domain.MapGatewayStatus(payload.TransactionStatus, payload.FraudStatus)
	updated, err := s.applyStatus(ctx, payment.ID, target, payload.Raw)
	if err != nil {
		return nil, err
	}

	return &WebhookResult{Status: WebhookProcessed, PaymentID: updated.ID}, nil
}

// CheckStatus asks the gateway for the current status and applies it like a webhook.
func (s *PaymentService) CheckStatus(ctx context.Context, paymentID string) (*domain.Payment, error) {
	payment, err := s.store.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return nil, storeError(err)
	}

	gw, err := s.gateways.Get(payment.Gateway)
	if err != nil {
		return nil, err
	}

	external, err := gw.QueryStatus(ctx, payment.TransactionRef)
	if err != nil {
		return nil, gatewayFailure(gw, err)
	}

	target := domain.MapGatewayStatus(external, "")
	s.logger.Info("reconciling payment status",
		"payment_id", payment.ID,
		"gateway_status", external,
		"mapped_status", target,
	)
	return s.applyStatus(ctx, payment.ID, target, nil)
}

// CancelPayment cancels a pending charge at the gateway, then locally.
func (s *PaymentService) CancelPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	payment, err := s.store.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return nil, storeError(err)
	}
	if payment.Status != domain.PaymentPending {
		return nil, domain.NewInvalidStateError("payment", string(payment.Status), string(domain.PaymentPending))
	}

	gw, err := s.gateways.Get(payment.Gateway)
	if err != nil {
		return nil, err
	}
	if err := gw.Cancel(ctx, payment.TransactionRef); err != nil {
		if gwErr, ok := application.IsGatewayError(err); !ok || gwErr.IsRetryable() {
			return nil, gatewayFailure(gw, err)
		}
		s.logger.Warn("gateway rejected cancellation, cancelling locally", "payment_id", payment.ID, "error", err)
	}

	err = s.store.WithTx(ctx, func(tx application.Store) error {
		p, err := tx.Payments().FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		expected := p.Status
		if err := p.Cancel(s.clock.Now()); err != nil {
			return err
		}
		payment = p
		return tx.Payments().UpdateStatus(ctx, p, expected)
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.logger.Info("payment cancelled", "payment_id", payment.ID)
	return payment, nil
}

// ExpirePayment settles a pending payment past its expiry. The gateway is asked
// first so a charge paid at the last moment is not lost.
func (s *PaymentService) ExpirePayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	payment, err := s.store.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return nil, storeError(err)
	}
	if !payment.IsExpiredAt(s.clock.Now()) {
		return payment, nil
	}

	gw, err := s.gateways.Get(payment.Gateway)
	if err != nil {
		return nil, err
	}

	if external, err := gw.QueryStatus(ctx, payment.TransactionRef); err == nil {
		if target := domain.MapGatewayStatus(external, ""); target == domain.PaymentPaid {
			return s.applyStatus(ctx, payment.ID, target, nil)
		}
	} else {
		s.logger.Warn("could not query gateway before expiring payment", "payment_id", payment.ID, "error", err)
	}

	updated, err := s.applyStatus(ctx, payment.ID, domain.PaymentExpired, nil)
	if err != nil {
		return nil, err
	}

	if updated.Status == domain.PaymentExpired {
		if err := gw.Cancel(ctx, payment.TransactionRef); err != nil {
			s.logger.Warn("failed to cancel expired charge at gateway", "payment_id", payment.ID, "error", err)
		}
	}
	return updated, nil
}

// applyStatus moves the payment to target under a row lock. Replays and transitions
// that are no longer legal leave the payment untouched. A paid payment always ends
// with an escrow.
func (s *PaymentService) applyStatus(ctx context.Context, paymentID string, target domain.PaymentStatus, raw json.RawMessage) (*domain.Payment, error) {
	var payment *domain.Payment
	err := s.store.WithTx(ctx, func(tx application.Store) error {
		p, err := tx.Payments().FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		payment = p
		expected := p.Status
		now := s.clock.Now()

		changed, err := p.ApplyGatewayStatus(target, raw, now)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidStateTransition) {
				s.logger.Warn("ignoring status change not allowed from current state",
					"payment_id", p.ID,
					"current", expected,
					"target", target,
				)
				return nil
			}
			return err
		}
		if !changed {
			if len(raw) == 0 {
				return nil
			}
			return tx.Payments().UpdateStatus(ctx, p, expected)
		}

		if err := tx.Payments().UpdateStatus(ctx, p, expected); err != nil {
			return err
		}
		s.logger.Info("payment status changed", "payment_id", p.ID, "from", expected, "to", p.Status)

		switch p.Status {
		case domain.PaymentPaid:
			return appendEvent(ctx, tx, func(id string) (*domain.OutboxEvent, error) {
				return domain.NewPaymentSucceededEvent(id, p, now)
			})
		case domain.PaymentRefunded:
			return s.settleGatewayRefund(ctx, tx, p, now)
		}
		return nil
	})
	if errors.Is(err, domain.ErrConcurrentModification) {
		payment, err = s.store.Payments().FindByID(ctx, paymentID)
	}
	if err != nil {
		return nil, storeError(err)
	}

	if payment.Status == domain.PaymentPaid {
		s.openEscrow(ctx, payment)
	}
	return payment, nil
}

// settleGatewayRefund closes the escrow of a payment the gateway refunded, so the
// sweep can no longer pay the same funds out to the payee. An open refund request
// for the payment is completed with it.
func (s *PaymentService) settleGatewayRefund(ctx context.Context, tx application.Store, p *domain.Payment, now time.Time) error {
	found, err := tx.Escrows().FindByPaymentID(ctx, p.ID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	escrow, err := tx.Escrows().FindByIDForUpdate(ctx, found.ID)
	if err != nil {
		return err
	}

	expected := escrow.Status
	if err := escrow.RefundAtGateway(now); err != nil {
		if errors.Is(err, domain.ErrInvalidStateTransition) {
			s.logger.Error("gateway refunded a payment whose escrow is already settled, reconcile manually",
				"payment_id", p.ID,
				"escrow_id", escrow.ID,
				"escrow_status", escrow.Status,
			)
			return nil
		}
		return err
	}
	if err := tx.Escrows().Update(ctx, escrow, expected); err != nil {
		return err
	}

	if err := s.closeOpenRefund(ctx, tx, p.ID, escrow.OrderRef, now); err != nil {
		return err
	}

	s.logger.Info("escrow refunded at gateway", "escrow_id", escrow.ID, "payment_id", p.ID)
	return appendEvent(ctx, tx, func(id string) (*domain.OutboxEvent, error) {
		return domain.NewEscrowRefundedEvent(id, escrow, now)
	})
}

func (s *PaymentService) closeOpenRefund(ctx context.Context, tx application.Store, paymentID, orderRef string, now time.Time) error {
	refund, err := tx.Refunds().FindActiveByPaymentID(ctx, paymentID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	refund, err = tx.Refunds().FindByIDForUpdate(ctx, refund.ID)
	if err != nil {
		return err
	}

	expected := refund.Status
	const note = "settled by gateway refund"
	if refund.Status == domain.RefundPending {
		if err := refund.Approve(note, now); err != nil {
			return err
		}
	}
	if err := refund.Complete(note, now); err != nil {
		return err
	}
	if err := tx.Refunds().Update(ctx, refund, expected); err != nil {
		return err
	}
	return appendEvent(ctx, tx, func(id string) (*domain.OutboxEvent, error) {
		return domain.NewRefundCompletedEvent(id, refund, orderRef, now)
	})
}

func checkWebhookAmount(payload domain.WebhookPayload, payment *domain.Payment) error {
	amount, err := payload.Amount()
	if err != nil {
		return err
	}
	if amount != payment.TotalCharged {
		return domain.NewAmountMismatchError(payment.TotalCharged, amount)
	}
	return nil
}

// openEscrow runs after the paid status is committed. Failures are logged and never
// undo the payment.
func (s *PaymentService) openEscrow(ctx context.Context, payment *domain.Payment) {
	_, err := s.escrows.CreateEscrow(ctx, payment.ID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrDuplicateEscrow):
		s.logger.Debug("escrow already exists", "payment_id", payment.ID)
	default:
		s.logger.Error("failed to create escrow for paid payment", "payment_id", payment.ID, "error", err)
	}
}

func (s *PaymentService) findByReferences(ctx context.Context, refs []string) (*domain.Payment, error) {
	repo := s.store.Payments()
	for _, ref := range refs {
		payment, err := repo.FindByTransactionRef(ctx, ref)
		if err == nil {
			return payment, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
		payment, err = repo.FindByExternalRef(ctx, ref)
		if err == nil {
			return payment, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	return nil, domain.NewNotFoundError("payment", "webhook reference")
}

func (s *PaymentService) charge(
	ctx context.Context,
	gw application.Gateway,
	payment *domain.Payment,
	customer domain.CustomerInfo,
	items []domain.LineItem,
) error {
	result, err := gw.CreateCharge(ctx, domain.ChargeRequest{
		TransactionRef: payment.TransactionRef,
		GrossAmount:    payment.TotalCharged,
		Customer:       customer,
		Method:         payment.Method,
		Channel:        payment.Channel,
		LineItems:      items,
	})
	if err != nil {
		s.logger.Error("gateway charge failed",
			"payment_id", payment.ID,
			"gateway", gw.Name(),
			"category", application.CategorizeError(err),
			"error", err,
		)
		return gatewayFailure(gw, err)
	}
	payment.AttachCharge(result)
	return nil
}

// cancelCharge voids a charge whose payment could not be stored.
func (s *PaymentService) cancelCharge(gw application.Gateway, payment *domain.Payment) {
	ctx, cancel := context.WithTimeout(context.Background(), gatewayCleanupTimeout)
	defer cancel()
	if err := gw.Cancel(ctx, payment.TransactionRef); err != nil {
		s.logger.Error("failed to cancel orphaned charge",
			"transaction_ref", payment.TransactionRef,
			"error", err,
		)
	}
}
