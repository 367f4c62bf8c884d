package domain_test

import (
	"testing"

	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createReleasedEscrow(t *testing.T) *domain.Escrow {
	t.Helper()
	escrow := createHeldEscrow(t)
	require.NoError(t, escrow.Release("buyer-789", "", testNow))
	return escrow
}

func createPendingWithdrawal(t *testing.T) *domain.Withdrawal {
	t.Helper()
	w, err := domain.NewWithdrawal("wd-1", createReleasedEscrow(t), "seller-1", domain.PayoutBankTransfer, "BCA 1234567890", testNow)
	require.NoError(t, err)
	return w
}

func TestNewWithdrawal(t *testing.T) {
	t.Run("computes gross fee and net", func(t *testing.T) {
		w := createPendingWithdrawal(t)

		assert.Equal(t, domain.WithdrawalPending, w.Status)
		assert.Equal(t, int64(100000), w.GrossAmount)
		assert.Equal(t, int64(5000), w.PlatformFee)
		assert.Equal(t, int64(95000), w.NetAmount)
	})

	t.Run("uses released amount after partial release", func(t *testing.T) {
		escrow := createHeldEscrow(t)
		require.NoError(t, escrow.PartialRelease(40000, "admin-1", "split", testNow))

		w, err := domain.NewWithdrawal("wd-2", escrow, "seller-1", domain.PayoutEWallet, "gopay 0812", testNow)

		require.NoError(t, err)
		assert.Equal(t, int64(40000), w.GrossAmount)
		assert.Equal(t, int64(2000), w.PlatformFee)
		assert.Equal(t, int64(38000), w.NetAmount)
	})

	t.Run("requires released escrow", func(t *testing.T) {
		for _, status := range []domain.EscrowStatus{domain.EscrowHeld, domain.EscrowDisputed, domain.EscrowCompleted, domain.EscrowRefunded} {
			escrow := createEscrowWithStatus(t, status)

			_, err := domain.NewWithdrawal("wd-1", escrow, "seller-1", domain.PayoutBankTransfer, "BCA 1", testNow)

			assert.ErrorIs(t, err, domain.ErrEscrowNotReleased, "status %s", status)
		}
	})

	t.Run("rejects unknown payout method", func(t *testing.T) {
		_, err := domain.NewWithdrawal("wd-1", createReleasedEscrow(t), "seller-1", "cheque", "x", testNow)

		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestWithdrawal_Lifecycle(t *testing.T) {
	t.Run("pending -> processing -> completed", func(t *testing.T) {
		w := createPendingWithdrawal(t)

		require.NoError(t, w.StartProcessing("admin-1", testNow))
		assert.Equal(t, domain.WithdrawalProcessing, w.Status)
		assert.True(t, w.IsActive())

		require.NoError(t, w.Complete("TRF-001", testNow))
		assert.Equal(t, domain.WithdrawalCompleted, w.Status)
		assert.Equal(t, "TRF-001", w.ProofRef)
		assert.NotNil(t, w.CompletedAt)
		assert.False(t, w.IsActive())
	})

	t.Run("pending cannot complete directly", func(t *testing.T) {
		w := createPendingWithdrawal(t)

		assert.ErrorIs(t, w.Complete("TRF-001", testNow), domain.ErrInvalidStateTransition)
	})

	t.Run("complete requires proof", func(t *testing.T) {
		w := createPendingWithdrawal(t)
		require.NoError(t, w.StartProcessing("admin-1", testNow))

		assert.ErrorIs(t, w.Complete("", testNow), domain.ErrValidation)
	})

	t.Run("any non-terminal state can fail", func(t *testing.T) {
		pending := createPendingWithdrawal(t)
		require.NoError(t, pending.Fail("bank rejected", testNow))
		assert.Equal(t, "bank rejected", pending.FailureReason)

		processing := createPendingWithdrawal(t)
		require.NoError(t, processing.StartProcessing("admin-1", testNow))
		require.NoError(t, processing.Fail("timeout", testNow))
		assert.Equal(t, domain.WithdrawalFailed, processing.Status)
	})

	t.Run("terminal states stay terminal", func(t *testing.T) {
		w := createPendingWithdrawal(t)
		require.NoError(t, w.Fail("x", testNow))

		assert.ErrorIs(t, w.StartProcessing("admin-1", testNow), domain.ErrInvalidStateTransition)
		assert.ErrorIs(t, w.Fail("y", testNow), domain.ErrInvalidStateTransition)
	})
}
