package postgres

import (
	"time"
)

// PaymentModel mirrors a row of the payments table. JSONB columns are kept as raw bytes.
type PaymentModel struct {
	ID                string
	OrderRef          string
	PayerRef          string
	GrossAmount       int64
	PlatformFee       int64
	GatewayFee        int64
	TotalCharged      int64
	Method            string
	Channel           string
	Gateway           string
	TransactionRef    string
	ExternalRef       string
	InitiationURL     string
	Instructions      []byte
	Status            string
	RetryCount        int
	PreviousPaymentID *string
	SupersededBy      *string
	InvoiceNumber     string
	ExpiresAt         time.Time
	PaidAt            *time.Time
	LastCallback      []byte
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type OutboxModel struct {
	ID          string
	EventType   string
	AggregateID string
	OrderRef    string
	Payload     []byte
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	PublishedAt *time.Time
}
