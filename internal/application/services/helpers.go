package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
)

var validate = validator.New()

func validateCommand(cmd any) error {
	if err := validate.Struct(cmd); err != nil {
		return application.NewInvalidInputError(err)
	}
	return nil
}

func newID() string {
	return uuid.New().String()
}

// transactionRefFor derives the reference sent to the gateway as its order id.
func transactionRefFor(paymentID string) string {
	return "TRX-" + strings.ToUpper(strings.ReplaceAll(paymentID, "-", ""))
}

// storeError keeps domain and service errors as they are and hides everything else behind an internal error.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if _, ok := application.IsServiceError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return application.NewInternalError(err)
}

// gatewayFailure wraps adapter failures so callers see a GatewayCommunicationError.
func gatewayFailure(gw application.Gateway, err error) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return domain.NewGatewayCommunicationError(gw.Name(), err)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func isStateConflict(err error) bool {
	return errors.Is(err, domain.ErrInvalidStateTransition) || errors.Is(err, domain.ErrConcurrentModification)
}

const gatewayCleanupTimeout = 10 * time.Second
