package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/config"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

// RetryGateway retries transient failures of the wrapped gateway with exponential backoff.
type RetryGateway struct {
	inner      application.Gateway
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryGateway(inner application.Gateway, cfg config.RetryConfig) *RetryGateway {
	maxRetries := int(cfg.MaxRetries)
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RetryGateway{
		inner:      inner,
		baseDelay:  cfg.BaseDelay,
		maxRetries: maxRetries,
	}
}

func (r *RetryGateway) Name() domain.GatewayName {
	return r.inner.Name()
}

// CreateCharge with retry logic
func (r *RetryGateway) CreateCharge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	return retry(r, ctx, func(ctx context.Context) (*domain.ChargeResult, error) {
		return r.inner.CreateCharge(ctx, req)
	})
}

func (r *RetryGateway) QueryStatus(ctx context.Context, transactionRef string) (string, error) {
	status, err := retry(r, ctx, func(ctx context.Context) (*string, error) {
		s, err := r.inner.QueryStatus(ctx, transactionRef)
		if err != nil {
			return nil, err
		}
		return &s, nil
	})
	if err != nil {
		return "", err
	}
	return *status, nil
}

func (r *RetryGateway) Cancel(ctx context.Context, transactionRef string) error {
	_, err := retry(r, ctx, func(ctx context.Context) (*struct{}, error) {
		return &struct{}{}, r.inner.Cancel(ctx, transactionRef)
	})
	return err
}

func (r *RetryGateway) VerifyWebhookSignature(payload domain.WebhookPayload, transactionRef string) bool {
	return r.inner.VerifyWebhookSignature(payload, transactionRef)
}

// Generic retry helper
func retry[T any](r *RetryGateway, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !application.IsRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			timer := time.NewTimer(r.backoff(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

// Backoff calculation with exponential delay and jitter
func (r *RetryGateway) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Int63n(int64(r.baseDelay/2) + 1))

	return base + jitter
}
