package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/config"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/google/uuid"
)

// CallbackSink receives webhook bodies produced by the simulator.
type CallbackSink func(ctx context.Context, body []byte) error

type simCharge struct {
	externalRef string
	status      string
	amount      string
}

// Simulator is an in-process gateway with deterministic instructions and HMAC-signed callbacks.
type Simulator struct {
	secret      string
	baseURL     string
	autoSuccess bool
	delay       time.Duration
	scheduler   TaskScheduler
	logger      *slog.Logger

	mu      sync.Mutex
	charges map[string]*simCharge
	sink    CallbackSink
}

func NewSimulator(cfg config.SimulatorConfig, scheduler TaskScheduler, logger *slog.Logger) *Simulator {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://simulator.local"
	}
	return &Simulator{
		secret:      cfg.Secret,
		baseURL:     baseURL,
		autoSuccess: cfg.AutoSuccess,
		delay:       cfg.AutoSuccessDelay,
		scheduler:   scheduler,
		logger:      logger,
		charges:     make(map[string]*simCharge),
	}
}

// SetCallbackSink wires the webhook consumer. Auto-success callbacks are skipped until it is set.
func (s *Simulator) SetCallbackSink(sink CallbackSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

func (s *Simulator) Name() domain.GatewayName {
	return domain.GatewaySimulator
}

func (s *Simulator) CreateCharge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.TransactionRef == "" {
		return nil, &application.GatewayError{Code: "invalid_request", Message: "transaction reference is required", StatusCode: http.StatusBadRequest}
	}

	result := &domain.ChargeResult{
		ExternalRef:  "SIM-" + uuid.NewString(),
		Instructions: s.instructions(req),
	}
	if req.Method == domain.MethodCreditCard {
		result.InitiationURL = fmt.Sprintf("%s/3ds/%s", s.baseURL, req.TransactionRef)
	}
	if req.Method == domain.MethodEWallet {
		result.InitiationURL = result.Instructions.Deeplink
	}

	s.mu.Lock()
	s.charges[req.TransactionRef] = &simCharge{
		externalRef: result.ExternalRef,
		status:      "pending",
		amount:      formatAmount(req.GrossAmount),
	}
	autoSuccess := s.autoSuccess && s.sink != nil
	s.mu.Unlock()

	if autoSuccess {
		ref := req.TransactionRef
		s.scheduler.Schedule(ref, s.delay, func() {
			if err := s.TriggerCallback(context.Background(), ref, "settlement"); err != nil {
				s.logger.Error("simulated callback failed", "transaction_ref", ref, "error", err)
			}
		})
	}

	return result, nil
}

func (s *Simulator) QueryStatus(ctx context.Context, transactionRef string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	charge, ok := s.charges[transactionRef]
	if !ok {
		return "", notFound(transactionRef)
	}
	return charge.status, nil
}

// Cancel marks a pending charge cancelled and drops its scheduled callback.
func (s *Simulator) Cancel(ctx context.Context, transactionRef string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	charge, ok := s.charges[transactionRef]
	if !ok {
		s.mu.Unlock()
		return notFound(transactionRef)
	}
	if charge.status != "pending" {
		status := charge.status
		s.mu.Unlock()
		return &application.GatewayError{
			Code:       "invalid_state",
			Message:    fmt.Sprintf("transaction %s is %s", transactionRef, status),
			StatusCode: http.StatusPreconditionFailed,
		}
	}
	charge.status = "cancel"
	s.mu.Unlock()

	s.scheduler.Cancel(transactionRef)
	return nil
}

// VerifyWebhookSignature recomputes the HMAC over transactionRef, so a body signed
// for one charge never verifies for another. Every reference in the body must name
// that charge.
func (s *Simulator) VerifyWebhookSignature(payload domain.WebhookPayload, transactionRef string) bool {
	if transactionRef == "" || payload.Signature == "" {
		return false
	}
	for _, ref := range payload.References() {
		if ref != transactionRef {
			return false
		}
	}
	expected := s.Sign(transactionRef, payload.TransactionStatus, payload.GrossAmount)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(payload.Signature)))
}

// Sign computes the hex HMAC-SHA256 of "ref|status|amount".
func (s *Simulator) Sign(transactionRef, status, amount string) string {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(transactionRef + "|" + status + "|" + amount))
	return hex.EncodeToString(mac.Sum(nil))
}

// TriggerCallback moves the charge to status and delivers a signed webhook to the sink.
func (s *Simulator) TriggerCallback(ctx context.Context, transactionRef, status string) error {
	body, err := s.settle(transactionRef, status)
	if err != nil {
		return err
	}

	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink == nil {
		return fmt.Errorf("no callback sink configured")
	}

	s.logger.Info("delivering simulated callback", "transaction_ref", transactionRef, "status", status)
	return sink(ctx, body)
}

// BuildCallback returns a signed webhook body for the charge without changing its state.
func (s *Simulator) BuildCallback(transactionRef, status string) ([]byte, error) {
	s.mu.Lock()
	charge, ok := s.charges[transactionRef]
	s.mu.Unlock()
	if !ok {
		return nil, notFound(transactionRef)
	}
	return s.callbackBody(transactionRef, status, charge.amount)
}

func (s *Simulator) settle(transactionRef, status string) ([]byte, error) {
	s.mu.Lock()
	charge, ok := s.charges[transactionRef]
	if !ok {
		s.mu.Unlock()
		return nil, notFound(transactionRef)
	}
	charge.status = status
	amount := charge.amount
	s.mu.Unlock()

	return s.callbackBody(transactionRef, status, amount)
}

func (s *Simulator) callbackBody(transactionRef, status, amount string) ([]byte, error) {
	return json.Marshal(map[string]string{
		"transaction_id":     transactionRef,
		"transaction_status": status,
		"gross_amount":       amount,
		"signature":          s.Sign(transactionRef, status, amount),
	})
}

func (s *Simulator) instructions(req domain.ChargeRequest) domain.PaymentInstructions {
	switch req.Method {
	case domain.MethodBankTransfer, domain.MethodVirtualAccount:
		bank := req.Channel
		if bank == "" {
			bank = "bca"
		}
		return domain.PaymentInstructions{
			Bank:     bank,
			VANumber: virtualAccountNumber(req.TransactionRef),
		}
	case domain.MethodQRIS:
		return domain.PaymentInstructions{
			QRPayload: fmt.Sprintf("SIMQR|%s|%d", req.TransactionRef, req.GrossAmount),
		}
	case domain.MethodEWallet:
		return domain.PaymentInstructions{
			Deeplink: fmt.Sprintf("%s/deeplink/%s", s.baseURL, req.TransactionRef),
		}
	}
	return domain.PaymentInstructions{}
}

// virtualAccountNumber derives a stable 16-digit number from the reference.
func virtualAccountNumber(ref string) string {
	sum := sha256.Sum256([]byte(ref))
	n := binary.BigEndian.Uint64(sum[:8]) % 1_000_000_000_000
	return fmt.Sprintf("8808%012d", n)
}

func formatAmount(amount int64) string {
	return fmt.Sprintf("%d.00", amount)
}

func notFound(transactionRef string) *application.GatewayError {
	return &application.GatewayError{
		Code:       "not_found",
		Message:    fmt.Sprintf("transaction %s not found", transactionRef),
		StatusCode: http.StatusNotFound,
	}
}
