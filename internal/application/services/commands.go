package services

import (
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

type CreatePaymentCommand struct {
	OrderRef    string               `validate:"required"`
	PayerRef    string               `validate:"required"`
	GrossAmount int64                `validate:"gt=0"`
	Method      domain.PaymentMethod `validate:"required"`
	Channel     string
	// Gateway overrides the configured default adapter.
	Gateway   domain.GatewayName
	Customer  domain.CustomerInfo
	LineItems []domain.LineItem
}

type RetryPaymentCommand struct {
	PaymentID string `validate:"required,uuid"`
	Method    domain.PaymentMethod
	Channel   string
	Customer  domain.CustomerInfo
	LineItems []domain.LineItem
}

type EscrowActionCommand struct {
	EscrowID string `validate:"required,uuid"`
	ActorRef string `validate:"required"`
	Reason   string
}

type PartialReleaseCommand struct {
	EscrowID string `validate:"required,uuid"`
	Amount   int64  `validate:"gt=0"`
	ActorRef string `validate:"required"`
	Reason   string
}

type CreateWithdrawalCommand struct {
	EscrowID           string              `validate:"required,uuid"`
	PayeeRef           string              `validate:"required"`
	PayoutMethod       domain.PayoutMethod `validate:"required"`
	DestinationAccount string              `validate:"required"`
}

type RequestRefundCommand struct {
	PaymentID string `validate:"required,uuid"`
	Requester string `validate:"required"`
	Reason    string `validate:"required"`
	Amount    int64  `validate:"gt=0"`
}
