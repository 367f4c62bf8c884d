package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so the sentinels below
// work with errors.Is regardless of message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	ErrCodeDuplicateEscrow        = "DUPLICATE_ESCROW"
	ErrCodeEscrowNotReleased      = "ESCROW_NOT_RELEASED"
	ErrCodeSignatureInvalid       = "SIGNATURE_INVALID"
	ErrCodeRetryLimitExceeded     = "RETRY_LIMIT_EXCEEDED"
	ErrCodeGatewayCommunication   = "GATEWAY_COMMUNICATION_ERROR"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeActivePaymentExists    = "ACTIVE_PAYMENT_EXISTS"
	ErrCodeActiveWithdrawalExists = "ACTIVE_WITHDRAWAL_EXISTS"
	ErrCodeActiveRefundExists     = "ACTIVE_REFUND_EXISTS"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	ErrCodeAmountMismatch         = "AMOUNT_MISMATCH"
	ErrCodeUnsupportedGateway     = "UNSUPPORTED_GATEWAY"
)

// Sentinels for errors.Is checks.
var (
	ErrValidation             = &DomainError{Code: ErrCodeValidation, Message: "validation failed"}
	ErrInvalidStateTransition = &DomainError{Code: ErrCodeInvalidStateTransition, Message: "invalid state transition"}
	ErrDuplicateEscrow        = &DomainError{Code: ErrCodeDuplicateEscrow, Message: "escrow already exists"}
	ErrEscrowNotReleased      = &DomainError{Code: ErrCodeEscrowNotReleased, Message: "escrow not released"}
	ErrSignatureInvalid       = &DomainError{Code: ErrCodeSignatureInvalid, Message: "invalid webhook signature"}
	ErrRetryLimitExceeded     = &DomainError{Code: ErrCodeRetryLimitExceeded, Message: "retry limit exceeded"}
	ErrGatewayCommunication   = &DomainError{Code: ErrCodeGatewayCommunication, Message: "gateway communication failed"}
	ErrNotFound               = &DomainError{Code: ErrCodeNotFound, Message: "not found"}
	ErrActivePaymentExists    = &DomainError{Code: ErrCodeActivePaymentExists, Message: "active payment exists"}
	ErrActiveWithdrawalExists = &DomainError{Code: ErrCodeActiveWithdrawalExists, Message: "active withdrawal exists"}
	ErrActiveRefundExists     = &DomainError{Code: ErrCodeActiveRefundExists, Message: "active refund exists"}
	ErrConcurrentModification = &DomainError{Code: ErrCodeConcurrentModification, Message: "record modified concurrently"}
	ErrAmountMismatch         = &DomainError{Code: ErrCodeAmountMismatch, Message: "amount mismatch"}
	ErrUnsupportedGateway     = &DomainError{Code: ErrCodeUnsupportedGateway, Message: "unsupported gateway"}
)

func NewValidationError(format string, args ...any) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewMissingRequiredFieldError(field string) *DomainError {
	return NewValidationError("%s is required", field)
}

// NewInvalidStateTransitionError names the entity, its actual state and the state that was attempted.
func NewInvalidStateTransitionError(entity, current, target string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidStateTransition,
		Message: fmt.Sprintf("cannot transition %s from %s to %s", entity, current, target),
	}
}

// NewInvalidStateError is used when an operation requires one of several states.
func NewInvalidStateError(entity, current string, required ...string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidStateTransition,
		Message: fmt.Sprintf("invalid state: %s is %s, required %v", entity, current, required),
	}
}

func NewDuplicateEscrowError(paymentID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDuplicateEscrow,
		Message: fmt.Sprintf("escrow already exists for payment %s", paymentID),
	}
}

func NewEscrowNotReleasedError(escrowID string, current EscrowStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeEscrowNotReleased,
		Message: fmt.Sprintf("escrow %s is %s, required %s", escrowID, current, EscrowReleased),
	}
}

func NewSignatureError(transactionRef string) *DomainError {
	return &DomainError{
		Code:    ErrCodeSignatureInvalid,
		Message: fmt.Sprintf("invalid webhook signature for transaction %s", transactionRef),
	}
}

func NewRetryLimitExceededError(paymentID string, limit int) *DomainError {
	return &DomainError{
		Code:    ErrCodeRetryLimitExceeded,
		Message: fmt.Sprintf("payment %s reached the maximum of %d retries, create a new payment instead", paymentID, limit),
	}
}

func NewGatewayCommunicationError(gateway GatewayName, err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeGatewayCommunication,
		Message: fmt.Sprintf("gateway %s request failed", gateway),
		Err:     err,
	}
}

func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s with ID %s not found", entity, id),
	}
}

func NewActivePaymentExistsError(orderRef string) *DomainError {
	return &DomainError{
		Code:    ErrCodeActivePaymentExists,
		Message: fmt.Sprintf("order %s already has an active payment", orderRef),
	}
}

func NewActiveWithdrawalExistsError(escrowID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeActiveWithdrawalExists,
		Message: fmt.Sprintf("escrow %s already has an active withdrawal", escrowID),
	}
}

func NewActiveRefundExistsError(paymentID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeActiveRefundExists,
		Message: fmt.Sprintf("payment %s already has an active refund", paymentID),
	}
}

func NewConcurrentModificationError(entity, id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeConcurrentModification,
		Message: fmt.Sprintf("%s %s was modified concurrently", entity, id),
	}
}

func NewAmountMismatchError(expected, actual int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeAmountMismatch,
		Message: fmt.Sprintf("amount mismatch: expected %d, got %d", expected, actual),
	}
}

func NewUnsupportedGatewayError(name GatewayName) *DomainError {
	return &DomainError{
		Code:    ErrCodeUnsupportedGateway,
		Message: fmt.Sprintf("gateway %q is not registered", name),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
