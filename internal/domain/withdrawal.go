package domain

import (
	"slices"
	"strings"
	"time"
)

type WithdrawalStatus string

const (
	WithdrawalPending    WithdrawalStatus = "pending"
	WithdrawalProcessing WithdrawalStatus = "processing"
	WithdrawalCompleted  WithdrawalStatus = "completed"
	WithdrawalFailed     WithdrawalStatus = "failed"
)

type PayoutMethod string

const (
	PayoutBankTransfer PayoutMethod = "bank_transfer"
	PayoutEWallet      PayoutMethod = "e_wallet"
)

func (m PayoutMethod) IsValid() bool {
	return m == PayoutBankTransfer || m == PayoutEWallet
}

type Withdrawal struct {
	ID       string
	EscrowID string
	PayeeRef string

	PayoutMethod       PayoutMethod
	DestinationAccount string

	GrossAmount int64
	PlatformFee int64
	NetAmount   int64

	Status        WithdrawalStatus
	ProofRef      string
	Notes         string
	FailureReason string
	ProcessedBy   string

	ProcessingAt *time.Time
	CompletedAt  *time.Time
	FailedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewWithdrawal computes gross, fee and net from the escrow's payout amount.
// The escrow must be released.
func NewWithdrawal(id string, escrow *Escrow, payeeRef string, method PayoutMethod, destination string, now time.Time) (*Withdrawal, error) {
	if id == "" {
		return nil, NewMissingRequiredFieldError("withdrawal ID")
	}
	if escrow == nil {
		return nil, NewMissingRequiredFieldError("escrow")
	}
	if strings.TrimSpace(payeeRef) == "" {
		return nil, NewMissingRequiredFieldError("payee reference")
	}
	if !method.IsValid() {
		return nil, NewValidationError("unsupported payout method %q", method)
	}
	if strings.TrimSpace(destination) == "" {
		return nil, NewMissingRequiredFieldError("destination account")
	}
	if escrow.Status != EscrowReleased {
		return nil, NewEscrowNotReleasedError(escrow.ID, escrow.Status)
	}

	fees, err := CalculateFees(escrow.PayoutAmount(), FeeRolePayee)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Withdrawal{
		ID:                 id,
		EscrowID:           escrow.ID,
		PayeeRef:           payeeRef,
		PayoutMethod:       method,
		DestinationAccount: destination,
		GrossAmount:        fees.Gross,
		PlatformFee:        fees.PlatformFee,
		NetAmount:          fees.Net,
		Status:             WithdrawalPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

func (w *Withdrawal) StartProcessing(actorRef string, now time.Time) error {
	if err := w.transition(WithdrawalProcessing, now); err != nil {
		return err
	}
	at := now.UTC()
	w.ProcessingAt = &at
	w.ProcessedBy = actorRef
	return nil
}

func (w *Withdrawal) Complete(proofRef string, now time.Time) error {
	if strings.TrimSpace(proofRef) == "" {
		return NewMissingRequiredFieldError("proof of transfer reference")
	}
	if err := w.transition(WithdrawalCompleted, now); err != nil {
		return err
	}
	at := now.UTC()
	w.CompletedAt = &at
	w.ProofRef = proofRef
	return nil
}

func (w *Withdrawal) Fail(reason string, now time.Time) error {
	if err := w.transition(WithdrawalFailed, now); err != nil {
		return err
	}
	at := now.UTC()
	w.FailedAt = &at
	w.FailureReason = reason
	return nil
}

// IsActive reports whether the withdrawal blocks another one for the same escrow.
func (w *Withdrawal) IsActive() bool {
	return w.Status == WithdrawalPending || w.Status == WithdrawalProcessing
}

func (w *Withdrawal) transition(target WithdrawalStatus, now time.Time) error {
	var allowed []WithdrawalStatus
	switch w.Status {
	case WithdrawalPending:
		allowed = []WithdrawalStatus{WithdrawalProcessing, WithdrawalFailed}
	case WithdrawalProcessing:
		allowed = []WithdrawalStatus{WithdrawalCompleted, WithdrawalFailed}
	}
	if !slices.Contains(allowed, target) {
		return NewInvalidStateTransitionError("withdrawal", string(w.Status), string(target))
	}
	w.Status = target
	w.UpdatedAt = now.UTC()
	return nil
}
