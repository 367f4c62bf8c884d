package rest

import (
	"encoding/json"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

type PaymentResponse struct {
	ID                string                     `json:"id"`
	OrderRef          string                     `json:"order_ref"`
	PayerRef          string                     `json:"payer_ref"`
	GrossAmount       int64                      `json:"gross_amount"`
	PlatformFee       int64                      `json:"platform_fee"`
	GatewayFee        int64                      `json:"gateway_fee"`
	TotalCharged      int64                      `json:"total_charged"`
	Method            domain.PaymentMethod       `json:"method"`
	Channel           string                     `json:"channel,omitempty"`
	Gateway           domain.GatewayName         `json:"gateway"`
	TransactionRef    string                     `json:"transaction_ref"`
	ExternalRef       string                     `json:"external_ref,omitempty"`
	InitiationURL     string                     `json:"initiation_url,omitempty"`
	Instructions      domain.PaymentInstructions `json:"instructions"`
	Status            domain.PaymentStatus       `json:"status"`
	RetryCount        int                        `json:"retry_count"`
	PreviousPaymentID *string                    `json:"previous_payment_id,omitempty"`
	SupersededBy      *string                    `json:"superseded_by,omitempty"`
	InvoiceNumber     string                     `json:"invoice_number"`
	ExpiresAt         time.Time                  `json:"expires_at"`
	PaidAt            *time.Time                 `json:"paid_at,omitempty"`
	LastCallback      json.RawMessage            `json:"last_callback,omitempty"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
}

func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                p.ID,
		OrderRef:          p.OrderRef,
		PayerRef:          p.PayerRef,
		GrossAmount:       p.GrossAmount,
		PlatformFee:       p.PlatformFee,
		GatewayFee:        p.GatewayFee,
		TotalCharged:      p.TotalCharged,
		Method:            p.Method,
		Channel:           p.Channel,
		Gateway:           p.Gateway,
		TransactionRef:    p.TransactionRef,
		ExternalRef:       p.ExternalRef,
		InitiationURL:     p.InitiationURL,
		Instructions:      p.Instructions,
		Status:            p.Status,
		RetryCount:        p.RetryCount,
		PreviousPaymentID: p.PreviousPaymentID,
		SupersededBy:      p.SupersededBy,
		InvoiceNumber:     p.InvoiceNumber,
		ExpiresAt:         p.ExpiresAt,
		PaidAt:            p.PaidAt,
		LastCallback:      p.LastCallback,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

type EscrowResponse struct {
	ID             string              `json:"id"`
	PaymentID      string              `json:"payment_id"`
	OrderRef       string              `json:"order_ref"`
	Amount         int64               `json:"amount"`
	PlatformFee    int64               `json:"platform_fee"`
	ReleasedAmount int64               `json:"released_amount"`
	RefundedAmount int64               `json:"refunded_amount"`
	NetPayout      int64               `json:"net_payout"`
	Status         domain.EscrowStatus `json:"status"`
	HeldAt         time.Time           `json:"held_at"`
	AutoReleaseAt  time.Time           `json:"auto_release_at"`
	ReleasedAt     *time.Time          `json:"released_at,omitempty"`
	RefundedAt     *time.Time          `json:"refunded_at,omitempty"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
	ActorRef       string              `json:"actor_ref,omitempty"`
	Reason         string              `json:"reason,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func ToEscrowResponse(e *domain.Escrow) EscrowResponse {
	return EscrowResponse{
		ID:             e.ID,
		PaymentID:      e.PaymentID,
		OrderRef:       e.OrderRef,
		Amount:         e.Amount,
		PlatformFee:    e.PlatformFee,
		ReleasedAmount: e.ReleasedAmount,
		RefundedAmount: e.RefundedAmount,
		NetPayout:      e.NetPayout(),
		Status:         e.Status,
		HeldAt:         e.HeldAt,
		AutoReleaseAt:  e.AutoReleaseAt,
		ReleasedAt:     e.ReleasedAt,
		RefundedAt:     e.RefundedAt,
		CompletedAt:    e.CompletedAt,
		ActorRef:       e.ActorRef,
		Reason:         e.Reason,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

type WithdrawalResponse struct {
	ID                 string                  `json:"id"`
	EscrowID           string                  `json:"escrow_id"`
	PayeeRef           string                  `json:"payee_ref"`
	PayoutMethod       domain.PayoutMethod     `json:"payout_method"`
	DestinationAccount string                  `json:"destination_account"`
	GrossAmount        int64                   `json:"gross_amount"`
	PlatformFee        int64                   `json:"platform_fee"`
	NetAmount          int64                   `json:"net_amount"`
	Status             domain.WithdrawalStatus `json:"status"`
	ProofRef           string                  `json:"proof_ref,omitempty"`
	Notes              string                  `json:"notes,omitempty"`
	FailureReason      string                  `json:"failure_reason,omitempty"`
	ProcessedBy        string                  `json:"processed_by,omitempty"`
	ProcessingAt       *time.Time              `json:"processing_at,omitempty"`
	CompletedAt        *time.Time              `json:"completed_at,omitempty"`
	FailedAt           *time.Time              `json:"failed_at,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

func ToWithdrawalResponse(w *domain.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		ID:                 w.ID,
		EscrowID:           w.EscrowID,
		PayeeRef:           w.PayeeRef,
		PayoutMethod:       w.PayoutMethod,
		DestinationAccount: w.DestinationAccount,
		GrossAmount:        w.GrossAmount,
		PlatformFee:        w.PlatformFee,
		NetAmount:          w.NetAmount,
		Status:             w.Status,
		ProofRef:           w.ProofRef,
		Notes:              w.Notes,
		FailureReason:      w.FailureReason,
		ProcessedBy:        w.ProcessedBy,
		ProcessingAt:       w.ProcessingAt,
		CompletedAt:        w.CompletedAt,
		FailedAt:           w.FailedAt,
		CreatedAt:          w.CreatedAt,
		UpdatedAt:          w.UpdatedAt,
	}
}

type RefundResponse struct {
	ID          string              `json:"id"`
	PaymentID   string              `json:"payment_id"`
	EscrowID    string              `json:"escrow_id"`
	Requester   string              `json:"requester"`
	Reason      string              `json:"reason"`
	Amount      int64               `json:"amount"`
	Status      domain.RefundStatus `json:"status"`
	AdminNote   string              `json:"admin_note,omitempty"`
	RequestedAt time.Time           `json:"requested_at"`
	ProcessedAt *time.Time          `json:"processed_at,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func ToRefundResponse(r *domain.Refund) RefundResponse {
	return RefundResponse{
		ID:          r.ID,
		PaymentID:   r.PaymentID,
		EscrowID:    r.EscrowID,
		Requester:   r.Requester,
		Reason:      r.Reason,
		Amount:      r.Amount,
		Status:      r.Status,
		AdminNote:   r.AdminNote,
		RequestedAt: r.RequestedAt,
		ProcessedAt: r.ProcessedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
