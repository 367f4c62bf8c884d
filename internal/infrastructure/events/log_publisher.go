package events

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

// LogPublisher is used when Kafka is disabled. Events are marked published once logged.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	p.logger.Info("order event",
		"event_id", event.ID,
		"type", event.Type,
		"order_ref", event.OrderRef,
		"payload", string(event.Payload),
	)
	return nil
}
