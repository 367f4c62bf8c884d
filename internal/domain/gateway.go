package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// GatewayName identifies the adapter that produced a payment.
type GatewayName string

const (
	GatewaySimulator GatewayName = "simulator"
	GatewayMidtrans  GatewayName = "midtrans"
)

// CustomerInfo is forwarded to the gateway when creating a charge.
type CustomerInfo struct {
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CardToken string `json:"card_token,omitempty"`
}

type LineItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// PaymentInstructions tells the payer how to complete a payment.
type PaymentInstructions struct {
	Bank       string `json:"bank,omitempty"`
	VANumber   string `json:"va_number,omitempty"`
	BillerCode string `json:"biller_code,omitempty"`
	BillKey    string `json:"bill_key,omitempty"`
	QRPayload  string `json:"qr_payload,omitempty"`
	Deeplink   string `json:"deeplink,omitempty"`
}

type ChargeRequest struct {
	TransactionRef string
	GrossAmount    int64
	Customer       CustomerInfo
	Method         PaymentMethod
	Channel        string
	LineItems      []LineItem
}

type ChargeResult struct {
	ExternalRef   string
	Instructions  PaymentInstructions
	InitiationURL string
}

// WebhookPayload is the union of the callback fields sent by the supported gateways.
// The simulator sends transaction_id and signature, Midtrans sends order_id,
// status_code and signature_key.
type WebhookPayload struct {
	TransactionID     string `json:"transaction_id"`
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	Signature         string `json:"signature"`
	SignatureKey      string `json:"signature_key"`
	FraudStatus       string `json:"fraud_status"`

	Raw json.RawMessage `json:"-"`
}

func ParseWebhookPayload(raw []byte) (WebhookPayload, error) {
	var p WebhookPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return WebhookPayload{}, NewValidationError("malformed webhook payload: %v", err)
	}
	p.Raw = json.RawMessage(raw)
	return p, nil
}

// References returns the candidate transaction references in lookup order.
func (p WebhookPayload) References() []string {
	refs := make([]string, 0, 2)
	for _, ref := range []string{p.OrderID, p.TransactionID} {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if len(refs) > 0 && refs[0] == ref {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// Amount parses gross_amount, which gateways send as a decimal string ("106000.00").
func (p WebhookPayload) Amount() (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(p.GrossAmount))
	if err != nil {
		return 0, NewValidationError("invalid gross_amount %q", p.GrossAmount)
	}
	return d.Round(0).IntPart(), nil
}

var gatewayStatusTable = map[string]PaymentStatus{
	"capture":        PaymentPaid,
	"settlement":     PaymentPaid,
	"paid":           PaymentPaid,
	"success":        PaymentPaid,
	"pending":        PaymentPending,
	"unpaid":         PaymentPending,
	"authorize":      PaymentPending,
	"deny":           PaymentFailed,
	"failed":         PaymentFailed,
	"failure":        PaymentFailed,
	"expire":         PaymentExpired,
	"expired":        PaymentExpired,
	"cancel":         PaymentCancelled,
	"cancelled":      PaymentCancelled,
	"refund":         PaymentRefunded,
	"partial_refund": PaymentRefunded,
}

// MapGatewayStatus translates a gateway status into the internal vocabulary.
// Unknown codes map to pending. A card capture flagged for fraud review stays pending.
func MapGatewayStatus(external, fraudStatus string) PaymentStatus {
	external = strings.ToLower(strings.TrimSpace(external))
	if external == "capture" && strings.EqualFold(fraudStatus, "challenge") {
		return PaymentPending
	}
	if status, ok := gatewayStatusTable[external]; ok {
		return status
	}
	return PaymentPending
}
