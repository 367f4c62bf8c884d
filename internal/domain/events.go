package domain

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventPaymentSucceeded    EventType = "payment.succeeded"
	EventEscrowReleased      EventType = "escrow.released"
	EventEscrowRefunded      EventType = "escrow.refunded"
	EventWithdrawalCompleted EventType = "withdrawal.completed"
	EventRefundCompleted     EventType = "refund.completed"
)

// Order statuses carried by events for the order subsystem.
const (
	OrderStatusPaid      = "paid"
	OrderStatusCompleted = "completed"
	OrderStatusRefunded  = "refunded"
)

// OutboxEvent is written in the same transaction as the state change it
// describes and published later by the relay.
type OutboxEvent struct {
	ID          string
	Type        EventType
	AggregateID string
	OrderRef    string
	Payload     json.RawMessage
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// EventPayload is the JSON body of every outbox event.
type EventPayload struct {
	EventID      string    `json:"event_id"`
	Type         EventType `json:"type"`
	OrderRef     string    `json:"order_ref"`
	OrderStatus  string    `json:"order_status,omitempty"`
	PaymentID    string    `json:"payment_id,omitempty"`
	EscrowID     string    `json:"escrow_id,omitempty"`
	WithdrawalID string    `json:"withdrawal_id,omitempty"`
	RefundID     string    `json:"refund_id,omitempty"`
	Amount       int64     `json:"amount"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func newOutboxEvent(id, aggregateID string, payload EventPayload, now time.Time) (*OutboxEvent, error) {
	payload.EventID = id
	payload.OccurredAt = now.UTC()
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		ID:          id,
		Type:        payload.Type,
		AggregateID: aggregateID,
		OrderRef:    payload.OrderRef,
		Payload:     body,
		CreatedAt:   now.UTC(),
	}, nil
}

func NewPaymentSucceededEvent(id string, p *Payment, now time.Time) (*OutboxEvent, error) {
	return newOutboxEvent(id, p.ID, EventPayload{
		Type:        EventPaymentSucceeded,
		OrderRef:    p.OrderRef,
		OrderStatus: OrderStatusPaid,
		PaymentID:   p.ID,
		Amount:      p.GrossAmount,
	}, now)
}

func NewEscrowReleasedEvent(id string, e *Escrow, now time.Time) (*OutboxEvent, error) {
	return newOutboxEvent(id, e.ID, EventPayload{
		Type:        EventEscrowReleased,
		OrderRef:    e.OrderRef,
		OrderStatus: OrderStatusCompleted,
		PaymentID:   e.PaymentID,
		EscrowID:    e.ID,
		Amount:      e.ReleasedAmount,
	}, now)
}

func NewEscrowRefundedEvent(id string, e *Escrow, now time.Time) (*OutboxEvent, error) {
	return newOutboxEvent(id, e.ID, EventPayload{
		Type:        EventEscrowRefunded,
		OrderRef:    e.OrderRef,
		OrderStatus: OrderStatusRefunded,
		PaymentID:   e.PaymentID,
		EscrowID:    e.ID,
		Amount:      e.RefundedAmount,
	}, now)
}

func NewWithdrawalCompletedEvent(id string, w *Withdrawal, orderRef string, now time.Time) (*OutboxEvent, error) {
	return newOutboxEvent(id, w.ID, EventPayload{
		Type:         EventWithdrawalCompleted,
		OrderRef:     orderRef,
		EscrowID:     w.EscrowID,
		WithdrawalID: w.ID,
		Amount:       w.NetAmount,
	}, now)
}

func NewRefundCompletedEvent(id string, r *Refund, orderRef string, now time.Time) (*OutboxEvent, error) {
	return newOutboxEvent(id, r.ID, EventPayload{
		Type:      EventRefundCompleted,
		OrderRef:  orderRef,
		PaymentID: r.PaymentID,
		EscrowID:  r.EscrowID,
		RefundID:  r.ID,
		Amount:    r.Amount,
	}, now)
}
