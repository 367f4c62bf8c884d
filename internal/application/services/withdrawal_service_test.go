package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/DanielPopoola/ficmart-escrow/internal/application/services/testhelpers"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type WithdrawalServiceTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDatabase
	h      *harness
}

func TestWithdrawalServiceSuite(t *testing.T) {
	suite.Run(t, new(WithdrawalServiceTestSuite))
}

func (suite *WithdrawalServiceTestSuite) SetupSuite() {
	suite.testDB = testhelpers.SetupTestDatabase(suite.T())
}

func (suite *WithdrawalServiceTestSuite) TearDownSuite() {
	suite.testDB.Cleanup(suite.T())
}

func (suite *WithdrawalServiceTestSuite) SetupTest() {
	suite.testDB.CleanTables(suite.T())
	suite.h = newHarness(suite.T(), suite.testDB)
}

func (suite *WithdrawalServiceTestSuite) Test_FullPayoutLifecycle_CompletesEscrow() {
	ctx := context.Background()
	t := suite.T()
	escrow := suite.h.releasedEscrow(t, ctx)

	withdrawal, err := suite.h.withdrawals.CreateWithdrawal(ctx, testhelpers.DefaultWithdrawalCommand(escrow.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalPending, withdrawal.Status)
	assert.Equal(t, int64(100000), withdrawal.GrossAmount)
	assert.Equal(t, int64(5000), withdrawal.PlatformFee)
	assert.Equal(t, int64(95000), withdrawal.NetAmount)

	processing, err := suite.h.withdrawals.StartProcessing(ctx, withdrawal.ID, "finance-1")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalProcessing, processing.Status)

	got, err := suite.h.escrows.GetEscrow(ctx, escrow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowReleased, got.Status)

	completed, err := suite.h.withdrawals.Complete(ctx, withdrawal.ID, "BCA-TRF-0001")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalCompleted, completed.Status)
	assert.Equal(t, "BCA-TRF-0001", completed.ProofRef)

	got, err = suite.h.escrows.GetEscrow(ctx, escrow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)

	assert.Contains(t, suite.h.outboxTypes(t, ctx), domain.EventWithdrawalCompleted)
}

func (suite *WithdrawalServiceTestSuite) Test_CreateWithdrawal_RequiresReleasedEscrow() {
	ctx := context.Background()
	t := suite.T()
	_, escrow := suite.h.heldEscrow(t, ctx)

	_, err := suite.h.withdrawals.CreateWithdrawal(ctx, testhelpers.DefaultWithdrawalCommand(escrow.ID))
	assert.ErrorIs(t, err, domain.ErrEscrowNotReleased)
}

func (suite *WithdrawalServiceTestSuite) Test_CreateWithdrawal_OneActivePerEscrow() {
	ctx := context.Background()
	t := suite.T()
	escrow := suite.h.releasedEscrow(t, ctx)

	first, err := suite.h.withdrawals.CreateWithdrawal(ctx, testhelpers.DefaultWithdrawalCommand(escrow.ID))
	require.NoError(t, err)

	_, err = suite.h.withdrawals.CreateWithdrawal(ctx, testhelpers.DefaultWithdrawalCommand(escrow.ID))
	assert.ErrorIs(t, err, domain.ErrActiveWithdrawalExists)

	failed, err := suite.h.withdrawals.Fail(ctx, first.ID, "account closed")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalFailed, failed.Status)
	assert.Equal(t, "account closed", failed.FailureReason)

	got, err := suite.h.escrows.GetEscrow(ctx, escrow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowReleased, got.Status)

	_, err = suite.h.withdrawals.CreateWithdrawal(ctx, testhelpers.DefaultWithdrawalCommand(escrow.ID))
	assert.NoError(t, err)
}

func (suite *WithdrawalServiceTestSuite) Test_Complete_RequiresProcessing() {
	ctx := context.Background()
	t := suite.T()
	escrow := suite.h.releasedEscrow(t, ctx)

	withdrawal, err := suite.h.withdrawals.CreateWithdrawal(ctx, testhelpers.DefaultWithdrawalCommand(escrow.ID))
	require.NoError(t, err)

	_, err = suite.h.withdrawals.Complete(ctx, withdrawal.ID, "BCA-TRF-0002")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	got, err := suite.h.escrows.GetEscrow(ctx, escrow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowReleased, got.Status)
}

func (suite *WithdrawalServiceTestSuite) Test_Complete_RequiresProofReference() {
	ctx := context.Background()
	t := suite.T()
	escrow := suite.h.releasedEscrow(t, ctx)

	withdrawal, err := suite.h.withdrawals.CreateWithdrawal(ctx, testhelpers.DefaultWithdrawalCommand(escrow.ID))
	require.NoError(t, err)
	_, err = suite.h.withdrawals.StartProcessing(ctx, withdrawal.ID, "finance-1")
	require.NoError(t, err)

	_, err = suite.h.withdrawals.Complete(ctx, withdrawal.ID, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func (suite *WithdrawalServiceTestSuite) Test_Fail_RequiresReason() {
	_, err := suite.h.withdrawals.Fail(context.Background(), "2c8a7c55-3f4e-4b5e-9a0e-0d6c1f3b9a11", "")
	assert.ErrorIs(suite.T(), err, domain.ErrValidation)
}

func (suite *WithdrawalServiceTestSuite) Test_ProcessInstant() {
	ctx := context.Background()
	t := suite.T()
	escrow := suite.h.releasedEscrow(t, ctx)

	withdrawal, err := suite.h.withdrawals.CreateWithdrawal(ctx, testhelpers.DefaultWithdrawalCommand(escrow.ID))
	require.NoError(t, err)

	completed, err := suite.h.withdrawals.ProcessInstant(ctx, withdrawal.ID, "finance-bot")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalCompleted, completed.Status)
	assert.True(t, strings.HasPrefix(completed.ProofRef, "INSTANT-"))
	assert.Equal(t, "finance-bot", completed.ProcessedBy)

	got, err := suite.h.escrows.GetEscrow(ctx, escrow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowCompleted, got.Status)
}

func (suite *WithdrawalServiceTestSuite) Test_GetWithdrawal_NotFound() {
	_, err := suite.h.withdrawals.GetWithdrawal(context.Background(), "2c8a7c55-3f4e-4b5e-9a0e-0d6c1f3b9a11")
	assert.ErrorIs(suite.T(), err, domain.ErrNotFound)
}
