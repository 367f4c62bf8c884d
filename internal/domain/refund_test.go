package domain_test

import (
	"testing"

	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefund(t *testing.T) {
	payment := createPaidPayment(t)

	t.Run("creates pending refund", func(t *testing.T) {
		refund, err := domain.NewRefund("rf-1", payment, "esc-1", "buyer-789", "item damaged", 50000, testNow)

		require.NoError(t, err)
		assert.Equal(t, domain.RefundPending, refund.Status)
		assert.True(t, refund.IsActive())
		assert.False(t, refund.IsFull(payment))
	})

	t.Run("amount cannot exceed gross", func(t *testing.T) {
		_, err := domain.NewRefund("rf-1", payment, "esc-1", "buyer-789", "x", payment.GrossAmount+1, testNow)

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("full refund", func(t *testing.T) {
		refund, err := domain.NewRefund("rf-1", payment, "esc-1", "buyer-789", "x", payment.GrossAmount, testNow)

		require.NoError(t, err)
		assert.True(t, refund.IsFull(payment))
	})
}

func TestRefund_Lifecycle(t *testing.T) {
	payment := createPaidPayment(t)
	refund, err := domain.NewRefund("rf-1", payment, "esc-1", "buyer-789", "x", 1000, testNow)
	require.NoError(t, err)

	assert.ErrorIs(t, refund.Complete("", testNow), domain.ErrInvalidStateTransition)

	require.NoError(t, refund.Approve("approved", testNow))
	assert.Equal(t, domain.RefundProcessing, refund.Status)

	require.NoError(t, refund.Complete("transferred", testNow))
	assert.Equal(t, domain.RefundCompleted, refund.Status)
	assert.NotNil(t, refund.ProcessedAt)

	assert.ErrorIs(t, refund.Reject("late", testNow), domain.ErrInvalidStateTransition)
}
