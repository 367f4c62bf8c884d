package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

// toDomainPayment maps a db row to the domain entity
func toDomainPayment(m PaymentModel) (*domain.Payment, error) {
	var instructions domain.PaymentInstructions
	if len(m.Instructions) > 0 {
		if err := json.Unmarshal(m.Instructions, &instructions); err != nil {
			return nil, fmt.Errorf("decode instructions of payment %s: %w", m.ID, err)
		}
	}

	return &domain.Payment{
		ID:                m.ID,
		OrderRef:          m.OrderRef,
		PayerRef:          m.PayerRef,
		GrossAmount:       m.GrossAmount,
		PlatformFee:       m.PlatformFee,
		GatewayFee:        m.GatewayFee,
		TotalCharged:      m.TotalCharged,
		Method:            domain.PaymentMethod(m.Method),
		Channel:           m.Channel,
		Gateway:           domain.GatewayName(m.Gateway),
		TransactionRef:    m.TransactionRef,
		ExternalRef:       m.ExternalRef,
		InitiationURL:     m.InitiationURL,
		Instructions:      instructions,
		Status:            domain.PaymentStatus(m.Status),
		RetryCount:        m.RetryCount,
		PreviousPaymentID: m.PreviousPaymentID,
		SupersededBy:      m.SupersededBy,
		InvoiceNumber:     m.InvoiceNumber,
		ExpiresAt:         m.ExpiresAt,
		PaidAt:            m.PaidAt,
		LastCallback:      json.RawMessage(m.LastCallback),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

// toPaymentModel maps the domain entity to a db row
func toPaymentModel(p *domain.Payment) (*PaymentModel, error) {
	instructions, err := json.Marshal(p.Instructions)
	if err != nil {
		return nil, fmt.Errorf("encode instructions of payment %s: %w", p.ID, err)
	}

	var lastCallback []byte
	if len(p.LastCallback) > 0 {
		lastCallback = p.LastCallback
	}

	return &PaymentModel{
		ID:                p.ID,
		OrderRef:          p.OrderRef,
		PayerRef:          p.PayerRef,
		GrossAmount:       p.GrossAmount,
		PlatformFee:       p.PlatformFee,
		GatewayFee:        p.GatewayFee,
		TotalCharged:      p.TotalCharged,
		Method:            string(p.Method),
		Channel:           p.Channel,
		Gateway:           string(p.Gateway),
		TransactionRef:    p.TransactionRef,
		ExternalRef:       p.ExternalRef,
		InitiationURL:     p.InitiationURL,
		Instructions:      instructions,
		Status:            string(p.Status),
		RetryCount:        p.RetryCount,
		PreviousPaymentID: p.PreviousPaymentID,
		SupersededBy:      p.SupersededBy,
		InvoiceNumber:     p.InvoiceNumber,
		ExpiresAt:         p.ExpiresAt,
		PaidAt:            p.PaidAt,
		LastCallback:      lastCallback,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}, nil
}

func toDomainOutboxEvent(m OutboxModel) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:          m.ID,
		Type:        domain.EventType(m.EventType),
		AggregateID: m.AggregateID,
		OrderRef:    m.OrderRef,
		Payload:     json.RawMessage(m.Payload),
		Attempts:    m.Attempts,
		LastError:   m.LastError,
		CreatedAt:   m.CreatedAt,
		PublishedAt: m.PublishedAt,
	}
}
