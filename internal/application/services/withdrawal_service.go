package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

type WithdrawalService struct {
	store  application.Store
	clock  application.Clock
	logger *slog.Logger
}

func NewWithdrawalService(store application.Store, clock application.Clock, logger *slog.Logger) *WithdrawalService {
	return &WithdrawalService{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// CreateWithdrawal requests a payout of a released escrow. Only one pending or
// processing withdrawal may exist per escrow.
func (s *WithdrawalService) CreateWithdrawal(ctx context.Context, cmd CreateWithdrawalCommand) (*domain.Withdrawal, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	var withdrawal *domain.Withdrawal
	err := s.store.WithTx(ctx, func(tx application.Store) error {
		escrow, err := tx.Escrows().FindByIDForUpdate(ctx, cmd.EscrowID)
		if err != nil {
			return err
		}

		if _, err := tx.Withdrawals().FindActiveByEscrowID(ctx, escrow.ID); err == nil {
			return domain.NewActiveWithdrawalExistsError(escrow.ID)
		} else if !isNotFound(err) {
			return err
		}

		withdrawal, err = domain.NewWithdrawal(newID(), escrow, cmd.PayeeRef, cmd.PayoutMethod, cmd.DestinationAccount, s.clock.Now())
		if err != nil {
			return err
		}
		return tx.Withdrawals().Create(ctx, withdrawal)
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.logger.Info("withdrawal requested",
		"withdrawal_id", withdrawal.ID,
		"escrow_id", withdrawal.EscrowID,
		"gross_amount", withdrawal.GrossAmount,
		"net_amount", withdrawal.NetAmount,
	)
	return withdrawal, nil
}

func (s *WithdrawalService) GetWithdrawal(ctx context.Context, withdrawalID string) (*domain.Withdrawal, error) {
	withdrawal, err := s.store.Withdrawals().FindByID(ctx, withdrawalID)
	return withdrawal, storeError(err)
}

func (s *WithdrawalService) StartProcessing(ctx context.Context, withdrawalID, actorRef string) (*domain.Withdrawal, error) {
	withdrawal, err := s.mutate(ctx, withdrawalID, func(_ application.Store, w *domain.Withdrawal, now time.Time) error {
		return w.StartProcessing(actorRef, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal processing", "withdrawal_id", withdrawal.ID, "actor", actorRef)
	return withdrawal, nil
}

// Complete records the proof of transfer and closes the escrow.
func (s *WithdrawalService) Complete(ctx context.Context, withdrawalID, proofRef string) (*domain.Withdrawal, error) {
	withdrawal, err := s.mutate(ctx, withdrawalID, func(tx application.Store, w *domain.Withdrawal, now time.Time) error {
		return s.complete(ctx, tx, w, proofRef, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal completed", "withdrawal_id", withdrawal.ID, "proof_ref", proofRef)
	return withdrawal, nil
}

// Fail marks the payout as failed. The escrow stays released so a new withdrawal can be requested.
func (s *WithdrawalService) Fail(ctx context.Context, withdrawalID, reason string) (*domain.Withdrawal, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.NewMissingRequiredFieldError("failure reason")
	}

	withdrawal, err := s.mutate(ctx, withdrawalID, func(_ application.Store, w *domain.Withdrawal, now time.Time) error {
		return w.Fail(reason, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("withdrawal failed", "withdrawal_id", withdrawal.ID, "reason", reason)
	return withdrawal, nil
}

// ProcessInstant moves a pending withdrawal straight to completed with a generated proof reference.
func (s *WithdrawalService) ProcessInstant(ctx context.Context, withdrawalID, actorRef string) (*domain.Withdrawal, error) {
	withdrawal, err := s.mutate(ctx, withdrawalID, func(tx application.Store, w *domain.Withdrawal, now time.Time) error {
		if err := w.StartProcessing(actorRef, now); err != nil {
			return err
		}
		proof := "INSTANT-" + strings.ToUpper(strings.ReplaceAll(w.ID, "-", ""))[:12]
		return s.complete(ctx, tx, w, proof, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal processed instantly", "withdrawal_id", withdrawal.ID, "proof_ref", withdrawal.ProofRef)
	return withdrawal, nil
}

func (s *WithdrawalService) complete(ctx context.Context, tx application.Store, w *domain.Withdrawal, proofRef string, now time.Time) error {
	if err := w.Complete(proofRef, now); err != nil {
		return err
	}

	escrow, err := tx.Escrows().FindByIDForUpdate(ctx, w.EscrowID)
	if err != nil {
		return err
	}
	expected := escrow.Status
	if err := escrow.Complete(now); err != nil {
		return err
	}
	if err := tx.Escrows().Update(ctx, escrow, expected); err != nil {
		return err
	}

	return appendEvent(ctx, tx, func(id string) (*domain.OutboxEvent, error) {
		return domain.NewWithdrawalCompletedEvent(id, w, escrow.OrderRef, now)
	})
}

func (s *WithdrawalService) mutate(
	ctx context.Context,
	withdrawalID string,
	fn func(tx application.Store, w *domain.Withdrawal, now time.Time) error,
) (*domain.Withdrawal, error) {
	var withdrawal *domain.Withdrawal
	err := s.store.WithTx(ctx, func(tx application.Store) error {
		w, err := tx.Withdrawals().FindByIDForUpdate(ctx, withdrawalID)
		if err != nil {
			return err
		}
		expected := w.Status

		if err := fn(tx, w, s.clock.Now()); err != nil {
			return err
		}
		if err := tx.Withdrawals().Update(ctx, w, expected); err != nil {
			return err
		}
		withdrawal = w
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	return withdrawal, nil
}
