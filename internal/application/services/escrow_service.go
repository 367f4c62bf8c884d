package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/config"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

const autoReleaseActor = "system:auto-release"

type EscrowService struct {
	store            application.Store
	clock            application.Clock
	autoReleaseAfter time.Duration
	logger           *slog.Logger
}

func NewEscrowService(
	store application.Store,
	cfg config.EscrowConfig,
	clock application.Clock,
	logger *slog.Logger,
) *EscrowService {
	return &EscrowService{
		store:            store,
		clock:            clock,
		autoReleaseAfter: cfg.AutoReleaseAfter,
		logger:           logger,
	}
}

// CreateEscrow holds the gross amount of a paid payment. A second call for the same
// payment fails with DuplicateEscrowError, also when two calls race.
func (s *EscrowService) CreateEscrow(ctx context.Context, paymentID string) (*domain.Escrow, error) {
	if _, err := s.store.Escrows().FindByPaymentID(ctx, paymentID); err == nil {
		return nil, domain.NewDuplicateEscrowError(paymentID)
	} else if !isNotFound(err) {
		return nil, storeError(err)
	}

	var escrow *domain.Escrow
	err := s.store.WithTx(ctx, func(tx application.Store) error {
		payment, err := tx.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}

		escrow, err = domain.NewEscrow(newID(), payment, s.clock.Now(), s.autoReleaseAfter)
		if err != nil {
			return err
		}
		return tx.Escrows().Create(ctx, escrow)
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.logger.Info("escrow created",
		"escrow_id", escrow.ID,
		"payment_id", paymentID,
		"amount", escrow.Amount,
		"auto_release_at", escrow.AutoReleaseAt,
	)
	return escrow, nil
}

func (s *EscrowService) GetEscrow(ctx context.Context, escrowID string) (*domain.Escrow, error) {
	escrow, err := s.store.Escrows().FindByID(ctx, escrowID)
	return escrow, storeError(err)
}

// Release hands the full held amount to the payee.
func (s *EscrowService) Release(ctx context.Context, cmd EscrowActionCommand) (*domain.Escrow, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	escrow, err := s.mutate(ctx, cmd.EscrowID, func(tx application.Store, e *domain.Escrow, now time.Time) error {
		if err := e.Release(cmd.ActorRef, cmd.Reason, now); err != nil {
			return err
		}
		return appendEvent(ctx, tx, func(id string) (*domain.OutboxEvent, error) {
			return domain.NewEscrowReleasedEvent(id, e, now)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("escrow released", "escrow_id", escrow.ID, "actor", cmd.ActorRef)
	return escrow, nil
}

// Refund returns the held amount to the payer and marks the payment refunded.
func (s *EscrowService) Refund(ctx context.Context, cmd EscrowActionCommand) (*domain.Escrow, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	escrow, err := s.mutate(ctx, cmd.EscrowID, func(tx application.Store, e *domain.Escrow, now time.Time) error {
		if err := e.Refund(cmd.ActorRef, cmd.Reason, now); err != nil {
			return err
		}
		if err := markPaymentRefunded(ctx, tx, e.PaymentID, now); err != nil {
			return err
		}
		return appendEvent(ctx, tx, func(id string) (*domain.OutboxEvent, error) {
			return domain.NewEscrowRefundedEvent(id, e, now)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("escrow refunded", "escrow_id", escrow.ID, "actor", cmd.ActorRef)
	return escrow, nil
}

func (s *EscrowService) MarkDisputed(ctx context.Context, cmd EscrowActionCommand) (*domain.Escrow, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	escrow, err := s.mutate(ctx, cmd.EscrowID, func(_ application.Store, e *domain.Escrow, now time.Time) error {
		return e.MarkDisputed(cmd.ActorRef, cmd.Reason, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("escrow disputed", "escrow_id", escrow.ID, "actor", cmd.ActorRef, "reason", cmd.Reason)
	return escrow, nil
}

// ResolveDispute puts a disputed escrow back on hold.
func (s *EscrowService) ResolveDispute(ctx context.Context, cmd EscrowActionCommand) (*domain.Escrow, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	escrow, err := s.mutate(ctx, cmd.EscrowID, func(_ application.Store, e *domain.Escrow, now time.Time) error {
		return e.ResolveDispute(cmd.ActorRef, cmd.Reason, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("escrow dispute resolved", "escrow_id", escrow.ID, "actor", cmd.ActorRef)
	return escrow, nil
}

// PartialRelease pays amount to the payee. The remainder goes back to the payer
// through a refund opened in processing state.
func (s *EscrowService) PartialRelease(ctx context.Context, cmd PartialReleaseCommand) (*domain.Escrow, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	escrow, err := s.mutate(ctx, cmd.EscrowID, func(tx application.Store, e *domain.Escrow, now time.Time) error {
		if err := e.PartialRelease(cmd.Amount, cmd.ActorRef, cmd.Reason, now); err != nil {
			return err
		}

		payment, err := tx.Payments().FindByID(ctx, e.PaymentID)
		if err != nil {
			return err
		}

		reason := cmd.Reason
		if reason == "" {
			reason = "remainder of partial release"
		}
		refund, err := domain.NewRefund(newID(), payment, e.ID, cmd.ActorRef, reason, e.RefundedAmount, now)
		if err != nil {
			return err
		}
		if err := refund.Approve("opened by partial release", now); err != nil {
			return err
		}
		if err := tx.Refunds().Create(ctx, refund); err != nil {
			return err
		}

		return appendEvent(ctx, tx, func(id string) (*domain.OutboxEvent, error) {
			return domain.NewEscrowReleasedEvent(id, e, now)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("escrow partially released",
		"escrow_id", escrow.ID,
		"released_amount", escrow.ReleasedAmount,
		"refunded_amount", escrow.RefundedAmount,
	)
	return escrow, nil
}

// AutoRelease releases held escrows whose hold period has passed. An escrow changed
// by a concurrent operation is skipped.
func (s *EscrowService) AutoRelease(ctx context.Context, limit int) (int, error) {
	due, err := s.store.Escrows().FindDueForRelease(ctx, s.clock.Now(), limit)
	if err != nil {
		return 0, storeError(err)
	}

	released := 0
	for _, candidate := range due {
		if ctx.Err() != nil {
			return released, ctx.Err()
		}

		_, err := s.mutate(ctx, candidate.ID, func(tx application.Store, e *domain.Escrow, now time.Time) error {
			if !e.IsDueForAutoRelease(now) {
				return domain.NewInvalidStateError("escrow", string(e.Status), string(domain.EscrowHeld))
			}
			if err := e.Release(autoReleaseActor, "hold period elapsed", now); err != nil {
				return err
			}
			return appendEvent(ctx, tx, func(id string) (*domain.OutboxEvent, error) {
				return domain.NewEscrowReleasedEvent(id, e, now)
			})
		})
		if err != nil {
			if isStateConflict(err) {
				s.logger.Debug("escrow changed before auto-release, skipping", "escrow_id", candidate.ID)
				continue
			}
			s.logger.Error("failed to auto-release escrow", "escrow_id", candidate.ID, "error", err)
			continue
		}
		released++
	}

	if len(due) > 0 {
		s.logger.Info("auto-release sweep finished", "candidates", len(due), "released", released)
	}
	return released, nil
}

// mutate locks the escrow, applies fn and persists the result with a status guard.
func (s *EscrowService) mutate(
	ctx context.Context,
	escrowID string,
	fn func(tx application.Store, e *domain.Escrow, now time.Time) error,
) (*domain.Escrow, error) {
	var escrow *domain.Escrow
	err := s.store.WithTx(ctx, func(tx application.Store) error {
		e, err := tx.Escrows().FindByIDForUpdate(ctx, escrowID)
		if err != nil {
			return err
		}
		expected := e.Status

		if err := fn(tx, e, s.clock.Now()); err != nil {
			return err
		}
		if err := tx.Escrows().Update(ctx, e, expected); err != nil {
			return err
		}
		escrow = e
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	return escrow, nil
}

// markPaymentRefunded is a no-op for a payment the gateway already reported as refunded.
func markPaymentRefunded(ctx context.Context, tx application.Store, paymentID string, now time.Time) error {
	payment, err := tx.Payments().FindByIDForUpdate(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.Status == domain.PaymentRefunded {
		return nil
	}
	expected := payment.Status
	if err := payment.MarkRefunded(now); err != nil {
		return err
	}
	return tx.Payments().UpdateStatus(ctx, payment, expected)
}

func appendEvent(ctx context.Context, tx application.Store, build func(id string) (*domain.OutboxEvent, error)) error {
	event, err := build(newID())
	if err != nil {
		return err
	}
	return tx.Outbox().Append(ctx, event)
}
