// Package domain holds the payment, escrow, withdrawal and refund entities and their state machines.
package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// PaymentStatus represents the current state of a payment in its lifecycle
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
	PaymentExpired    PaymentStatus = "expired"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRefunded   PaymentStatus = "refunded"
	PaymentSuperseded PaymentStatus = "superseded"
)

const (
	PaymentExpiry   = 24 * time.Hour
	MaxPaymentRetry = 3
)

type PaymentMethod string

const (
	MethodBankTransfer   PaymentMethod = "bank_transfer"
	MethodEWallet        PaymentMethod = "e_wallet"
	MethodCreditCard     PaymentMethod = "credit_card"
	MethodQRIS           PaymentMethod = "qris"
	MethodVirtualAccount PaymentMethod = "virtual_account"
)

var paymentMethods = []PaymentMethod{
	MethodBankTransfer,
	MethodEWallet,
	MethodCreditCard,
	MethodQRIS,
	MethodVirtualAccount,
}

func (m PaymentMethod) IsValid() bool {
	return slices.Contains(paymentMethods, m)
}

type Payment struct {
	ID       string
	OrderRef string
	PayerRef string

	GrossAmount  int64
	PlatformFee  int64
	GatewayFee   int64
	TotalCharged int64

	Method  PaymentMethod
	Channel string
	Gateway GatewayName

	TransactionRef string
	ExternalRef    string
	InitiationURL  string
	Instructions   PaymentInstructions

	Status            PaymentStatus
	RetryCount        int
	PreviousPaymentID *string
	SupersededBy      *string
	InvoiceNumber     string

	ExpiresAt    time.Time
	PaidAt       *time.Time
	LastCallback json.RawMessage

	CreatedAt time.Time
	UpdatedAt time.Time
}

type NewPaymentParams struct {
	ID             string
	OrderRef       string
	PayerRef       string
	GrossAmount    int64
	Method         PaymentMethod
	Channel        string
	Gateway        GatewayName
	TransactionRef string
	InvoiceNumber  string
	// Expiry defaults to PaymentExpiry when zero.
	Expiry time.Duration
	Now    time.Time
}

// NewPayment validates the input, computes the payer-side fees once and returns a pending payment.
func NewPayment(p NewPaymentParams) (*Payment, error) {
	if p.ID == "" {
		return nil, NewMissingRequiredFieldError("payment ID")
	}
	if strings.TrimSpace(p.OrderRef) == "" {
		return nil, NewMissingRequiredFieldError("order reference")
	}
	if strings.TrimSpace(p.PayerRef) == "" {
		return nil, NewMissingRequiredFieldError("payer reference")
	}
	if p.GrossAmount <= 0 {
		return nil, NewValidationError("gross amount must be positive, got %d", p.GrossAmount)
	}
	if !p.Method.IsValid() {
		return nil, NewValidationError("unsupported payment method %q", p.Method)
	}
	if p.Gateway == "" {
		return nil, NewMissingRequiredFieldError("gateway")
	}
	if p.TransactionRef == "" {
		return nil, NewMissingRequiredFieldError("transaction reference")
	}

	fees, err := CalculateFees(p.GrossAmount, FeeRolePayer)
	if err != nil {
		return nil, err
	}

	now := p.Now.UTC()
	expiry := p.Expiry
	if expiry <= 0 {
		expiry = PaymentExpiry
	}
	invoice := p.InvoiceNumber
	if invoice == "" {
		invoice = NewInvoiceNumber(p.ID, now)
	}

	return &Payment{
		ID:             p.ID,
		OrderRef:       p.OrderRef,
		PayerRef:       p.PayerRef,
		GrossAmount:    fees.Gross,
		PlatformFee:    fees.PlatformFee,
		GatewayFee:     fees.GatewayFee,
		TotalCharged:   fees.Total,
		Method:         p.Method,
		Channel:        p.Channel,
		Gateway:        p.Gateway,
		TransactionRef: p.TransactionRef,
		Status:         PaymentPending,
		InvoiceNumber:  invoice,
		ExpiresAt:      now.Add(expiry),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// NewInvoiceNumber formats INV/YYYYMMDD/XXXXXXXX from the payment ID.
func NewInvoiceNumber(paymentID string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(paymentID, "-", ""))
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("INV/%s/%s", now.Format("20060102"), suffix)
}

// AttachCharge records what the gateway returned for the charge.
func (p *Payment) AttachCharge(result *ChargeResult) {
	if result == nil {
		return
	}
	p.ExternalRef = result.ExternalRef
	p.InitiationURL = result.InitiationURL
	p.Instructions = result.Instructions
}

// ApplyGatewayStatus moves the payment to the mapped status and records the raw
// callback. It reports false when the status is unchanged, which makes replayed
// callbacks a no-op for the state machine.
func (p *Payment) ApplyGatewayStatus(target PaymentStatus, payload json.RawMessage, now time.Time) (bool, error) {
	if target == p.Status || target == PaymentPending {
		p.RecordCallback(payload, now)
		return false, nil
	}
	if err := p.transition(target); err != nil {
		return false, err
	}
	if target == PaymentPaid {
		paidAt := now.UTC()
		p.PaidAt = &paidAt
	}
	p.RecordCallback(payload, now)
	p.UpdatedAt = now.UTC()
	return true, nil
}

// RecordCallback keeps the latest raw gateway payload. It reports whether anything was stored.
func (p *Payment) RecordCallback(payload json.RawMessage, now time.Time) bool {
	if len(payload) == 0 {
		return false
	}
	p.LastCallback = payload
	p.UpdatedAt = now.UTC()
	return true
}

// OwnsReference reports whether ref is the payment's transaction reference or the
// identifier the gateway assigned to its charge.
func (p *Payment) OwnsReference(ref string) bool {
	return ref != "" && (ref == p.TransactionRef || ref == p.ExternalRef)
}

func (p *Payment) MarkExpired(now time.Time) error {
	return p.transitionAt(PaymentExpired, now)
}

func (p *Payment) Cancel(now time.Time) error {
	return p.transitionAt(PaymentCancelled, now)
}

func (p *Payment) MarkRefunded(now time.Time) error {
	return p.transitionAt(PaymentRefunded, now)
}

// Supersede links a failed or expired payment to the attempt that replaces it.
func (p *Payment) Supersede(newPaymentID string, now time.Time) error {
	if err := p.transitionAt(PaymentSuperseded, now); err != nil {
		return err
	}
	p.SupersededBy = &newPaymentID
	return nil
}

// CheckRetryable returns an error unless a new attempt may replace this payment.
func (p *Payment) CheckRetryable(maxRetries int) error {
	if p.Status != PaymentFailed && p.Status != PaymentExpired {
		return NewInvalidStateError("payment", string(p.Status), string(PaymentFailed), string(PaymentExpired))
	}
	if p.RetryCount >= maxRetries {
		return NewRetryLimitExceededError(p.ID, maxRetries)
	}
	return nil
}

// IsActive reports whether the payment blocks a new payment for the same order.
func (p *Payment) IsActive() bool {
	return p.Status == PaymentPending || p.Status == PaymentPaid
}

func (p *Payment) IsTerminal() bool {
	return p.Status != PaymentPending
}

func (p *Payment) IsExpiredAt(now time.Time) bool {
	return p.Status == PaymentPending && !now.Before(p.ExpiresAt)
}

func (p *Payment) transitionAt(target PaymentStatus, now time.Time) error {
	if err := p.transition(target); err != nil {
		return err
	}
	p.UpdatedAt = now.UTC()
	return nil
}

func (p *Payment) transition(target PaymentStatus) error {
	if err := p.canTransitionTo(target); err != nil {
		return err
	}
	p.Status = target
	return nil
}

func (p *Payment) canTransitionTo(target PaymentStatus) error {
	switch p.Status {
	case PaymentPending:
		return p.allow(target, PaymentPaid, PaymentFailed, PaymentExpired, PaymentCancelled, PaymentRefunded)
	case PaymentPaid:
		return p.allow(target, PaymentRefunded)
	case PaymentFailed, PaymentExpired:
		return p.allow(target, PaymentSuperseded)
	}
	return NewInvalidStateTransitionError("payment", string(p.Status), string(target))
}

func (p *Payment) allow(target PaymentStatus, allowed ...PaymentStatus) error {
	if slices.Contains(allowed, target) {
		return nil
	}
	return NewInvalidStateTransitionError("payment", string(p.Status), string(target))
}
