package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

// RefundService runs the request, approve, complete and reject flow for refunds
// against a held escrow.
type RefundService struct {
	store  application.Store
	clock  application.Clock
	logger *slog.Logger
}

func NewRefundService(store application.Store, clock application.Clock, logger *slog.Logger) *RefundService {
	return &RefundService{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// RequestRefund opens a refund for a paid payment and moves its escrow to refund_pending.
func (s *RefundService) RequestRefund(ctx context.Context, cmd RequestRefundCommand) (*domain.Refund, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	var refund *domain.Refund
	err := s.store.WithTx(ctx, func(tx application.Store) error {
		payment, err := tx.Payments().FindByID(ctx, cmd.PaymentID)
		if err != nil {
			return err
		}
		if payment.Status != domain.PaymentPaid {
			return domain.NewInvalidStateError("payment", string(payment.Status), string(domain.PaymentPaid))
		}

		escrow, err := tx.Escrows().FindByPaymentID(ctx, payment.ID)
		if err != nil {
			return err
		}
		escrow, err = tx.Escrows().FindByIDForUpdate(ctx, escrow.ID)
		if err != nil {
			return err
		}

		if _, err := tx.Refunds().FindActiveByPaymentID(ctx, payment.ID); err == nil {
			return domain.NewActiveRefundExistsError(payment.ID)
		} else if !isNotFound(err) {
			return err
		}

		now := s.clock.Now()
		refund, err = domain.NewRefund(newID(), payment, escrow.ID, cmd.Requester, cmd.Reason, cmd.Amount, now)
		if err != nil {
			return err
		}

		expected := escrow.Status
		if err := escrow.MarkRefundPending(now); err != nil {
			return err
		}
		if err := tx.Escrows().Update(ctx, escrow, expected); err != nil {
			return err
		}
		return tx.Refunds().Create(ctx, refund)
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.logger.Info("refund requested",
		"refund_id", refund.ID,
		"payment_id", refund.PaymentID,
		"amount", refund.Amount,
		"requester", refund.Requester,
	)
	return refund, nil
}

func (s *RefundService) GetRefund(ctx context.Context, refundID string) (*domain.Refund, error) {
	refund, err := s.store.Refunds().FindByID(ctx, refundID)
	return refund, storeError(err)
}

func (s *RefundService) ApproveRefund(ctx context.Context, refundID, note string) (*domain.Refund, error) {
	refund, err := s.mutate(ctx, refundID, func(_ application.Store, r *domain.Refund, now time.Time) error {
		return r.Approve(note, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("refund approved", "refund_id", refund.ID)
	return refund, nil
}

// CompleteRefund settles the escrow. A full refund marks the payment refunded;
// a partial one releases the remainder to the payee.
func (s *RefundService) CompleteRefund(ctx context.Context, refundID, note string) (*domain.Refund, error) {
	refund, err := s.mutate(ctx, refundID, func(tx application.Store, r *domain.Refund, now time.Time) error {
		if err := r.Complete(note, now); err != nil {
			return err
		}

		escrow, err := tx.Escrows().FindByIDForUpdate(ctx, r.EscrowID)
		if err != nil {
			return err
		}

		if escrow.Status == domain.EscrowRefundPending {
			if err := s.settleEscrow(ctx, tx, escrow, r, now); err != nil {
				return err
			}
		} else if escrow.Status != domain.EscrowReleased && escrow.Status != domain.EscrowCompleted {
			return domain.NewInvalidStateError("escrow", string(escrow.Status), string(domain.EscrowRefundPending))
		}

		return appendEvent(ctx, tx, func(id string) (*domain.OutboxEvent, error) {
			return domain.NewRefundCompletedEvent(id, r, escrow.OrderRef, now)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("refund completed", "refund_id", refund.ID, "amount", refund.Amount)
	return refund, nil
}

// RejectRefund fails the refund and puts the escrow back on hold.
func (s *RefundService) RejectRefund(ctx context.Context, refundID, note string) (*domain.Refund, error) {
	refund, err := s.mutate(ctx, refundID, func(tx application.Store, r *domain.Refund, now time.Time) error {
		if err := r.Reject(note, now); err != nil {
			return err
		}

		escrow, err := tx.Escrows().FindByIDForUpdate(ctx, r.EscrowID)
		if err != nil {
			return err
		}
		if escrow.Status != domain.EscrowRefundPending {
			return nil
		}
		expected := escrow.Status
		if err := escrow.CancelRefundPending(now); err != nil {
			return err
		}
		return tx.Escrows().Update(ctx, escrow, expected)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("refund rejected", "refund_id", refund.ID, "note", note)
	return refund, nil
}

func (s *RefundService) settleEscrow(ctx context.Context, tx application.Store, escrow *domain.Escrow, r *domain.Refund, now time.Time) error {
	expected := escrow.Status
	if err := escrow.SettleRefund(r.Amount, "refund:"+r.ID, r.Reason, now); err != nil {
		return err
	}
	if err := tx.Escrows().Update(ctx, escrow, expected); err != nil {
		return err
	}

	if escrow.Status == domain.EscrowRefunded {
		if err := markPaymentRefunded(ctx, tx, escrow.PaymentID, now); err != nil {
			return err
		}
		return appendEvent(ctx, tx, func(id string) (*domain.OutboxEvent, error) {
			return domain.NewEscrowRefundedEvent(id, escrow, now)
		})
	}
	return appendEvent(ctx, tx, func(id string) (*domain.OutboxEvent, error) {
		return domain.NewEscrowReleasedEvent(id, escrow, now)
	})
}

func (s *RefundService) mutate(
	ctx context.Context,
	refundID string,
	fn func(tx application.Store, r *domain.Refund, now time.Time) error,
) (*domain.Refund, error) {
	var refund *domain.Refund
	err := s.store.WithTx(ctx, func(tx application.Store) error {
		r, err := tx.Refunds().FindByIDForUpdate(ctx, refundID)
		if err != nil {
			return err
		}
		expected := r.Status

		if err := fn(tx, r, s.clock.Now()); err != nil {
			return err
		}
		if err := tx.Refunds().Update(ctx, r, expected); err != nil {
			return err
		}
		refund = r
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	return refund, nil
}
