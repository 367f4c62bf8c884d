package domain

import (
	"slices"
	"strings"
	"time"
)

type RefundStatus string

const (
	RefundPending    RefundStatus = "pending"
	RefundProcessing RefundStatus = "processing"
	RefundFailed     RefundStatus = "failed"
	RefundCompleted  RefundStatus = "completed"
)

type Refund struct {
	ID        string
	PaymentID string
	EscrowID  string
	Requester string
	Reason    string
	Amount    int64
	Status    RefundStatus
	AdminNote string

	RequestedAt time.Time
	ProcessedAt *time.Time
	UpdatedAt   time.Time
}

func NewRefund(id string, payment *Payment, escrowID, requester, reason string, amount int64, now time.Time) (*Refund, error) {
	if id == "" {
		return nil, NewMissingRequiredFieldError("refund ID")
	}
	if payment == nil {
		return nil, NewMissingRequiredFieldError("payment")
	}
	if strings.TrimSpace(requester) == "" {
		return nil, NewMissingRequiredFieldError("requester")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, NewMissingRequiredFieldError("reason")
	}
	if amount <= 0 {
		return nil, NewValidationError("refund amount must be positive, got %d", amount)
	}
	if amount > payment.GrossAmount {
		return nil, NewValidationError("refund amount %d exceeds payment gross amount %d", amount, payment.GrossAmount)
	}

	now = now.UTC()
	return &Refund{
		ID:          id,
		PaymentID:   payment.ID,
		EscrowID:    escrowID,
		Requester:   requester,
		Reason:      reason,
		Amount:      amount,
		Status:      RefundPending,
		RequestedAt: now,
		UpdatedAt:   now,
	}, nil
}

func (r *Refund) Approve(note string, now time.Time) error {
	if err := r.transition(RefundProcessing, now); err != nil {
		return err
	}
	r.AdminNote = note
	return nil
}

func (r *Refund) Complete(note string, now time.Time) error {
	if err := r.transition(RefundCompleted, now); err != nil {
		return err
	}
	at := now.UTC()
	r.ProcessedAt = &at
	if note != "" {
		r.AdminNote = note
	}
	return nil
}

func (r *Refund) Reject(note string, now time.Time) error {
	if err := r.transition(RefundFailed, now); err != nil {
		return err
	}
	at := now.UTC()
	r.ProcessedAt = &at
	r.AdminNote = note
	return nil
}

func (r *Refund) IsActive() bool {
	return r.Status == RefundPending || r.Status == RefundProcessing
}

// IsFull reports whether the refund returns the whole gross amount of the payment.
func (r *Refund) IsFull(payment *Payment) bool {
	return payment != nil && r.Amount == payment.GrossAmount
}

func (r *Refund) transition(target RefundStatus, now time.Time) error {
	var allowed []RefundStatus
	switch r.Status {
	case RefundPending:
		allowed = []RefundStatus{RefundProcessing, RefundFailed}
	case RefundProcessing:
		allowed = []RefundStatus{RefundCompleted, RefundFailed}
	}
	if !slices.Contains(allowed, target) {
		return NewInvalidStateTransitionError("refund", string(r.Status), string(target))
	}
	r.Status = target
	r.UpdatedAt = now.UTC()
	return nil
}
