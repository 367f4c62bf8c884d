package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/application/services"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/go-playground/validator"
)

type PaymentService interface {
	CreatePayment(ctx context.Context, cmd services.CreatePaymentCommand) (*domain.Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	CheckStatus(ctx context.Context, paymentID string) (*domain.Payment, error)
	CancelPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	HandleWebhook(ctx context.Context, body []byte) (*services.WebhookResult, error)
}

type RetryService interface {
	RetryPayment(ctx context.Context, cmd services.RetryPaymentCommand) (*domain.Payment, error)
}

type EscrowService interface {
	GetEscrow(ctx context.Context, escrowID string) (*domain.Escrow, error)
	Release(ctx context.Context, cmd services.EscrowActionCommand) (*domain.Escrow, error)
	Refund(ctx context.Context, cmd services.EscrowActionCommand) (*domain.Escrow, error)
	MarkDisputed(ctx context.Context, cmd services.EscrowActionCommand) (*domain.Escrow, error)
	ResolveDispute(ctx context.Context, cmd services.EscrowActionCommand) (*domain.Escrow, error)
	PartialRelease(ctx context.Context, cmd services.PartialReleaseCommand) (*domain.Escrow, error)
}

type WithdrawalService interface {
	CreateWithdrawal(ctx context.Context, cmd services.CreateWithdrawalCommand) (*domain.Withdrawal, error)
	GetWithdrawal(ctx context.Context, withdrawalID string) (*domain.Withdrawal, error)
	StartProcessing(ctx context.Context, withdrawalID, actorRef string) (*domain.Withdrawal, error)
	Complete(ctx context.Context, withdrawalID, proofRef string) (*domain.Withdrawal, error)
	Fail(ctx context.Context, withdrawalID, reason string) (*domain.Withdrawal, error)
	ProcessInstant(ctx context.Context, withdrawalID, actorRef string) (*domain.Withdrawal, error)
}

type RefundService interface {
	RequestRefund(ctx context.Context, cmd services.RequestRefundCommand) (*domain.Refund, error)
	GetRefund(ctx context.Context, refundID string) (*domain.Refund, error)
	ApproveRefund(ctx context.Context, refundID, note string) (*domain.Refund, error)
	CompleteRefund(ctx context.Context, refundID, note string) (*domain.Refund, error)
	RejectRefund(ctx context.Context, refundID, note string) (*domain.Refund, error)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	payments    PaymentService
	retries     RetryService
	escrows     EscrowService
	withdrawals WithdrawalService
	refunds     RefundService
	health      HealthChecker
	validate    *validator.Validate
	logger      *slog.Logger
}

func NewHandlers(
	payments PaymentService,
	retries RetryService,
	escrows EscrowService,
	withdrawals WithdrawalService,
	refunds RefundService,
	health HealthChecker,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		payments:    payments,
		retries:     retries,
		escrows:     escrows,
		withdrawals: withdrawals,
		refunds:     refunds,
		health:      health,
		validate:    validator.New(),
		logger:      logger,
	}
}

func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HandleHealth)

	mux.HandleFunc("POST /payments", h.HandleCreatePayment)
	mux.HandleFunc("GET /payments/{paymentID}", h.HandleGetPayment)
	mux.HandleFunc("POST /payments/{paymentID}/retry", h.HandleRetryPayment)
	mux.HandleFunc("POST /payments/{paymentID}/check-status", h.HandleCheckStatus)
	mux.HandleFunc("POST /payments/{paymentID}/cancel", h.HandleCancelPayment)

	mux.HandleFunc("POST /webhooks/payments", h.HandlePaymentWebhook)

	mux.HandleFunc("GET /escrows/{escrowID}", h.HandleGetEscrow)
	mux.HandleFunc("POST /escrows/{escrowID}/release", h.HandleReleaseEscrow)
	mux.HandleFunc("POST /escrows/{escrowID}/refund", h.HandleRefundEscrow)
	mux.HandleFunc("POST /escrows/{escrowID}/dispute", h.HandleDisputeEscrow)
	mux.HandleFunc("POST /escrows/{escrowID}/resolve", h.HandleResolveDispute)
	mux.HandleFunc("POST /escrows/{escrowID}/partial-release", h.HandlePartialRelease)

	mux.HandleFunc("POST /withdrawals", h.HandleCreateWithdrawal)
	mux.HandleFunc("GET /withdrawals/{withdrawalID}", h.HandleGetWithdrawal)
	mux.HandleFunc("POST /withdrawals/{withdrawalID}/process", h.HandleProcessWithdrawal)
	mux.HandleFunc("POST /withdrawals/{withdrawalID}/complete", h.HandleCompleteWithdrawal)
	mux.HandleFunc("POST /withdrawals/{withdrawalID}/fail", h.HandleFailWithdrawal)
	mux.HandleFunc("POST /withdrawals/{withdrawalID}/instant", h.HandleInstantWithdrawal)

	mux.HandleFunc("POST /refunds", h.HandleRequestRefund)
	mux.HandleFunc("GET /refunds/{refundID}", h.HandleGetRefund)
	mux.HandleFunc("POST /refunds/{refundID}/approve", h.HandleApproveRefund)
	mux.HandleFunc("POST /refunds/{refundID}/complete", h.HandleCompleteRefund)
	mux.HandleFunc("POST /refunds/{refundID}/reject", h.HandleRejectRefund)
}

func (h *Handlers) validateRequest(req any) error {
	if err := h.validate.Struct(req); err != nil {
		return application.NewInvalidInputError(err)
	}
	return nil
}
