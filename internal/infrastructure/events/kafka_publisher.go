// Package events delivers outbox events to the order subsystem.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/config"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/IBM/sarama"
)

// NewSyncProducer connects to the configured brokers. Sends wait for all in-sync replicas.
func NewSyncProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, newSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return producer, nil
}

func newSaramaConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 5
	sc.Producer.Retry.Backoff = 250 * time.Millisecond
	sc.Producer.Timeout = 10 * time.Second
	return sc
}

// KafkaPublisher writes each event to "<prefix>.<event type>", keyed by order
// reference so events of one order stay ordered within a partition.
type KafkaPublisher struct {
	producer    sarama.SyncProducer
	topicPrefix string
	logger      *slog.Logger
}

func NewKafkaPublisher(producer sarama.SyncProducer, topicPrefix string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer:    producer,
		topicPrefix: topicPrefix,
		logger:      logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.Topic(event.Type),
		Key:   sarama.StringEncoder(event.OrderRef),
		Value: sarama.ByteEncoder(event.Payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(event.ID)},
			{Key: []byte("event_type"), Value: []byte(event.Type)},
		},
		Timestamp: event.CreatedAt,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("publish %s event %s: %w", event.Type, event.ID, err)
	}

	p.logger.Debug("event published",
		"event_id", event.ID,
		"topic", msg.Topic,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

func (p *KafkaPublisher) Topic(eventType domain.EventType) string {
	if p.topicPrefix == "" {
		return string(eventType)
	}
	return p.topicPrefix + "." + string(eventType)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
