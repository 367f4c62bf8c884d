package postgres

import (
	"context"
	"fmt"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/jackc/pgx/v5"
)

// Store hands out repositories bound to either the pool or a transaction.
type Store struct {
	db *DB
	q  Executor
}

func NewStore(db *DB) *Store {
	return &Store{db: db, q: db.Pool}
}

func (s *Store) Payments() application.PaymentRepository       { return &PaymentRepository{q: s.q} }
func (s *Store) Escrows() application.EscrowRepository         { return &EscrowRepository{q: s.q} }
func (s *Store) Withdrawals() application.WithdrawalRepository { return &WithdrawalRepository{q: s.q} }
func (s *Store) Refunds() application.RefundRepository         { return &RefundRepository{q: s.q} }
func (s *Store) Outbox() application.OutboxRepository          { return &OutboxRepository{q: s.q} }

// WithTx executes fn within a database transaction. Nested calls reuse the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx application.Store) error) error {
	if _, nested := s.q.(pgx.Tx); nested {
		return fn(s)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
