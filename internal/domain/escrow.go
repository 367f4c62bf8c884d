package domain

import (
	"slices"
	"time"
)

type EscrowStatus string

const (
	EscrowHeld          EscrowStatus = "held"
	EscrowReleased      EscrowStatus = "released"
	EscrowRefunded      EscrowStatus = "refunded"
	EscrowDisputed      EscrowStatus = "disputed"
	EscrowRefundPending EscrowStatus = "refund_pending"
	EscrowCompleted     EscrowStatus = "completed"
)

// GatewayRefundActor is recorded as the actor when a gateway refund settles an escrow.
const GatewayRefundActor = "gateway"

// DefaultAutoReleaseAfter is how long funds stay held before the sweep releases them.
const DefaultAutoReleaseAfter = 7 * 24 * time.Hour

type Escrow struct {
	ID        string
	PaymentID string
	OrderRef  string

	// Amount is fixed at creation. Partial outcomes are tracked in
	// ReleasedAmount and RefundedAmount.
	Amount         int64
	PlatformFee    int64
	ReleasedAmount int64
	RefundedAmount int64

	Status        EscrowStatus
	HeldAt        time.Time
	AutoReleaseAt time.Time
	ReleasedAt    *time.Time
	RefundedAt    *time.Time
	CompletedAt   *time.Time
	ActorRef      string
	Reason        string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewEscrow(id string, payment *Payment, now time.Time, autoReleaseAfter time.Duration) (*Escrow, error) {
	if id == "" {
		return nil, NewMissingRequiredFieldError("escrow ID")
	}
	if payment == nil {
		return nil, NewMissingRequiredFieldError("payment")
	}
	if payment.Status != PaymentPaid {
		return nil, NewInvalidStateError("payment", string(payment.Status), string(PaymentPaid))
	}
	if payment.GrossAmount <= 0 {
		return nil, NewValidationError("escrow amount must be positive, got %d", payment.GrossAmount)
	}
	if autoReleaseAfter <= 0 {
		autoReleaseAfter = DefaultAutoReleaseAfter
	}

	now = now.UTC()
	return &Escrow{
		ID:            id,
		PaymentID:     payment.ID,
		OrderRef:      payment.OrderRef,
		Amount:        payment.GrossAmount,
		PlatformFee:   payment.PlatformFee,
		Status:        EscrowHeld,
		HeldAt:        now,
		AutoReleaseAt: now.Add(autoReleaseAfter),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (e *Escrow) Release(actorRef, reason string, now time.Time) error {
	if e.Status != EscrowHeld {
		return NewInvalidStateTransitionError("escrow", string(e.Status), string(EscrowReleased))
	}
	if err := e.transition(EscrowReleased, now); err != nil {
		return err
	}
	e.ReleasedAmount = e.Amount
	e.markReleased(actorRef, reason, now)
	return nil
}

func (e *Escrow) Refund(actorRef, reason string, now time.Time) error {
	if e.Status != EscrowHeld && e.Status != EscrowDisputed {
		return NewInvalidStateTransitionError("escrow", string(e.Status), string(EscrowRefunded))
	}
	if err := e.transition(EscrowRefunded, now); err != nil {
		return err
	}
	e.RefundedAmount = e.Amount
	e.markRefunded(actorRef, reason, now)
	return nil
}

// RefundAtGateway settles an escrow whose charge the gateway already returned to the
// payer. Released and completed escrows cannot be taken back.
func (e *Escrow) RefundAtGateway(now time.Time) error {
	switch e.Status {
	case EscrowHeld, EscrowDisputed, EscrowRefundPending:
	default:
		return NewInvalidStateTransitionError("escrow", string(e.Status), string(EscrowRefunded))
	}
	if err := e.transition(EscrowRefunded, now); err != nil {
		return err
	}
	e.RefundedAmount = e.Amount
	e.ReleasedAmount = 0
	e.markRefunded(GatewayRefundActor, "refunded at gateway", now)
	return nil
}

func (e *Escrow) MarkDisputed(actorRef, reason string, now time.Time) error {
	if err := e.transition(EscrowDisputed, now); err != nil {
		return err
	}
	e.ActorRef = actorRef
	e.Reason = reason
	return nil
}

func (e *Escrow) ResolveDispute(actorRef, note string, now time.Time) error {
	if e.Status != EscrowDisputed {
		return NewInvalidStateTransitionError("escrow", string(e.Status), string(EscrowHeld))
	}
	if err := e.transition(EscrowHeld, now); err != nil {
		return err
	}
	e.ActorRef = actorRef
	e.Reason = note
	return nil
}

// PartialRelease releases amount to the payee and returns the remainder to the payer.
func (e *Escrow) PartialRelease(amount int64, actorRef, reason string, now time.Time) error {
	if e.Status != EscrowHeld && e.Status != EscrowDisputed {
		return NewInvalidStateError("escrow", string(e.Status), string(EscrowHeld), string(EscrowDisputed))
	}
	if amount <= 0 || amount >= e.Amount {
		return NewValidationError("partial release amount must be between 0 and %d exclusive, got %d", e.Amount, amount)
	}
	if err := e.transition(EscrowReleased, now); err != nil {
		return err
	}
	e.ReleasedAmount = amount
	e.RefundedAmount = e.Amount - amount
	e.markReleased(actorRef, reason, now)
	return nil
}

func (e *Escrow) MarkRefundPending(now time.Time) error {
	return e.transition(EscrowRefundPending, now)
}

func (e *Escrow) CancelRefundPending(now time.Time) error {
	if e.Status != EscrowRefundPending {
		return NewInvalidStateTransitionError("escrow", string(e.Status), string(EscrowHeld))
	}
	return e.transition(EscrowHeld, now)
}

// SettleRefund closes an outstanding refund. A full refund moves the escrow to
// refunded; a partial one releases the rest to the payee.
func (e *Escrow) SettleRefund(refundAmount int64, actorRef, reason string, now time.Time) error {
	if e.Status != EscrowRefundPending {
		return NewInvalidStateError("escrow", string(e.Status), string(EscrowRefundPending))
	}
	if refundAmount <= 0 || refundAmount > e.Amount {
		return NewValidationError("refund amount must be between 1 and %d, got %d", e.Amount, refundAmount)
	}
	if refundAmount == e.Amount {
		if err := e.transition(EscrowRefunded, now); err != nil {
			return err
		}
		e.RefundedAmount = refundAmount
		e.markRefunded(actorRef, reason, now)
		return nil
	}
	if err := e.transition(EscrowReleased, now); err != nil {
		return err
	}
	e.RefundedAmount = refundAmount
	e.ReleasedAmount = e.Amount - refundAmount
	e.markReleased(actorRef, reason, now)
	return nil
}

// Complete closes the escrow once its withdrawal is paid out.
func (e *Escrow) Complete(now time.Time) error {
	if err := e.transition(EscrowCompleted, now); err != nil {
		return err
	}
	completedAt := now.UTC()
	e.CompletedAt = &completedAt
	return nil
}

// PayoutAmount is the portion of the held amount that goes to the payee.
func (e *Escrow) PayoutAmount() int64 {
	switch e.Status {
	case EscrowReleased, EscrowCompleted:
		return e.ReleasedAmount
	default:
		return 0
	}
}

// NetPayout is derived on demand and never stored.
func (e *Escrow) NetPayout() int64 {
	fees, err := CalculateFees(e.PayoutAmount(), FeeRolePayee)
	if err != nil {
		return 0
	}
	return fees.Net
}

func (e *Escrow) IsDueForAutoRelease(now time.Time) bool {
	return e.Status == EscrowHeld && !now.Before(e.AutoReleaseAt)
}

func (e *Escrow) markReleased(actorRef, reason string, now time.Time) {
	releasedAt := now.UTC()
	e.ReleasedAt = &releasedAt
	e.ActorRef = actorRef
	if reason != "" {
		e.Reason = reason
	}
}

func (e *Escrow) markRefunded(actorRef, reason string, now time.Time) {
	refundedAt := now.UTC()
	e.RefundedAt = &refundedAt
	e.ActorRef = actorRef
	if reason != "" {
		e.Reason = reason
	}
}

func (e *Escrow) transition(target EscrowStatus, now time.Time) error {
	if err := e.canTransitionTo(target); err != nil {
		return err
	}
	e.Status = target
	e.UpdatedAt = now.UTC()
	return nil
}

func (e *Escrow) canTransitionTo(target EscrowStatus) error {
	switch e.Status {
	case EscrowHeld:
		return e.allow(target, EscrowReleased, EscrowRefunded, EscrowDisputed, EscrowRefundPending)
	case EscrowDisputed:
		return e.allow(target, EscrowHeld, EscrowRefunded, EscrowReleased)
	case EscrowRefundPending:
		return e.allow(target, EscrowHeld, EscrowRefunded, EscrowReleased)
	case EscrowReleased:
		return e.allow(target, EscrowCompleted)
	}
	return NewInvalidStateTransitionError("escrow", string(e.Status), string(target))
}

func (e *Escrow) allow(target EscrowStatus, allowed ...EscrowStatus) error {
	if slices.Contains(allowed, target) {
		return nil
	}
	return NewInvalidStateTransitionError("escrow", string(e.Status), string(target))
}
