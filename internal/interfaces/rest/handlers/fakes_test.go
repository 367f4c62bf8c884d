package handlers

import (
	"context"

	"github.com/DanielPopoola/ficmart-escrow/internal/application/services"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

type fakePaymentService struct {
	createFn      func(ctx context.Context, cmd services.CreatePaymentCommand) (*domain.Payment, error)
	getFn         func(ctx context.Context, paymentID string) (*domain.Payment, error)
	checkStatusFn func(ctx context.Context, paymentID string) (*domain.Payment, error)
	cancelFn      func(ctx context.Context, paymentID string) (*domain.Payment, error)
	webhookFn     func(ctx context.Context, body []byte) (*services.WebhookResult, error)
}

func (f *fakePaymentService) CreatePayment(ctx context.Context, cmd services.CreatePaymentCommand) (*domain.Payment, error) {
	return f.createFn(ctx, cmd)
}

func (f *fakePaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return f.getFn(ctx, paymentID)
}

func (f *fakePaymentService) CheckStatus(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return f.checkStatusFn(ctx, paymentID)
}

func (f *fakePaymentService) CancelPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return f.cancelFn(ctx, paymentID)
}

func (f *fakePaymentService) HandleWebhook(ctx context.Context, body []byte) (*services.WebhookResult, error) {
	return f.webhookFn(ctx, body)
}

type fakeRetryService struct {
	retryFn func(ctx context.Context, cmd services.RetryPaymentCommand) (*domain.Payment, error)
}

func (f *fakeRetryService) RetryPayment(ctx context.Context, cmd services.RetryPaymentCommand) (*domain.Payment, error) {
	return f.retryFn(ctx, cmd)
}

type fakeEscrowService struct {
	getFn     func(ctx context.Context, escrowID string) (*domain.Escrow, error)
	actionFn  func(action string, cmd services.EscrowActionCommand) (*domain.Escrow, error)
	partialFn func(ctx context.Context, cmd services.PartialReleaseCommand) (*domain.Escrow, error)
}

func (f *fakeEscrowService) GetEscrow(ctx context.Context, escrowID string) (*domain.Escrow, error) {
	return f.getFn(ctx, escrowID)
}

func (f *fakeEscrowService) Release(_ context.Context, cmd services.EscrowActionCommand) (*domain.Escrow, error) {
	return f.actionFn("release", cmd)
}

func (f *fakeEscrowService) Refund(_ context.Context, cmd services.EscrowActionCommand) (*domain.Escrow, error) {
	return f.actionFn("refund", cmd)
}

func (f *fakeEscrowService) MarkDisputed(_ context.Context, cmd services.EscrowActionCommand) (*domain.Escrow, error) {
	return f.actionFn("dispute", cmd)
}

func (f *fakeEscrowService) ResolveDispute(_ context.Context, cmd services.EscrowActionCommand) (*domain.Escrow, error) {
	return f.actionFn("resolve", cmd)
}

func (f *fakeEscrowService) PartialRelease(ctx context.Context, cmd services.PartialReleaseCommand) (*domain.Escrow, error) {
	return f.partialFn(ctx, cmd)
}

type fakeWithdrawalService struct {
	createFn func(ctx context.Context, cmd services.CreateWithdrawalCommand) (*domain.Withdrawal, error)
	getFn    func(ctx context.Context, withdrawalID string) (*domain.Withdrawal, error)
	actionFn func(action, withdrawalID, arg string) (*domain.Withdrawal, error)
}

func (f *fakeWithdrawalService) CreateWithdrawal(ctx context.Context, cmd services.CreateWithdrawalCommand) (*domain.Withdrawal, error) {
	return f.createFn(ctx, cmd)
}

func (f *fakeWithdrawalService) GetWithdrawal(ctx context.Context, withdrawalID string) (*domain.Withdrawal, error) {
	return f.getFn(ctx, withdrawalID)
}

func (f *fakeWithdrawalService) StartProcessing(_ context.Context, withdrawalID, actorRef string) (*domain.Withdrawal, error) {
	return f.actionFn("process", withdrawalID, actorRef)
}

func (f *fakeWithdrawalService) Complete(_ context.Context, withdrawalID, proofRef string) (*domain.Withdrawal, error) {
	return f.actionFn("complete", withdrawalID, proofRef)
}

func (f *fakeWithdrawalService) Fail(_ context.Context, withdrawalID, reason string) (*domain.Withdrawal, error) {
	return f.actionFn("fail", withdrawalID, reason)
}

func (f *fakeWithdrawalService) ProcessInstant(_ context.Context, withdrawalID, actorRef string) (*domain.Withdrawal, error) {
	return f.actionFn("instant", withdrawalID, actorRef)
}

type fakeRefundService struct {
	requestFn func(ctx context.Context, cmd services.RequestRefundCommand) (*domain.Refund, error)
	getFn     func(ctx context.Context, refundID string) (*domain.Refund, error)
	actionFn  func(action, refundID, note string) (*domain.Refund, error)
}

func (f *fakeRefundService) RequestRefund(ctx context.Context, cmd services.RequestRefundCommand) (*domain.Refund, error) {
	return f.requestFn(ctx, cmd)
}

func (f *fakeRefundService) GetRefund(ctx context.Context, refundID string) (*domain.Refund, error) {
	return f.getFn(ctx, refundID)
}

func (f *fakeRefundService) ApproveRefund(_ context.Context, refundID, note string) (*domain.Refund, error) {
	return f.actionFn("approve", refundID, note)
}

func (f *fakeRefundService) CompleteRefund(_ context.Context, refundID, note string) (*domain.Refund, error) {
	return f.actionFn("complete", refundID, note)
}

func (f *fakeRefundService) RejectRefund(_ context.Context, refundID, note string) (*domain.Refund, error) {
	return f.actionFn("reject", refundID, note)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
