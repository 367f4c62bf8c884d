package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/DanielPopoola/ficmart-escrow/internal/infrastructure/events"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func paymentSucceeded(t *testing.T) *domain.OutboxEvent {
	t.Helper()
	payment := &domain.Payment{
		ID:          "2c8a7c55-3f4e-4b5e-9a0e-0d6c1f3b9a11",
		OrderRef:    "order-42",
		GrossAmount: 100000,
	}
	event, err := domain.NewPaymentSucceededEvent("evt-1", payment, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return event
}

func newMockProducer(t *testing.T) *mocks.SyncProducer {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	t.Cleanup(func() { _ = producer.Close() })
	return producer
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := newMockProducer(t)
	event := paymentSucceeded(t)

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "escrow.payment.succeeded" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "order-42" {
			return errors.New("unexpected key " + string(key))
		}
		return nil
	})

	publisher := events.NewKafkaPublisher(producer, "escrow", testLogger())
	require.NoError(t, publisher.Publish(context.Background(), event))
}

func TestKafkaPublisher_PayloadIsEventBody(t *testing.T) {
	producer := newMockProducer(t)
	event := paymentSucceeded(t)

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != string(event.Payload) {
			return errors.New("payload mismatch")
		}
		return nil
	})

	publisher := events.NewKafkaPublisher(producer, "escrow", testLogger())
	assert.NoError(t, publisher.Publish(context.Background(), event))
}

func TestKafkaPublisher_BrokerFailure(t *testing.T) {
	producer := newMockProducer(t)
	producer.ExpectSendMessageAndFail(sarama.ErrNotEnoughReplicas)

	publisher := events.NewKafkaPublisher(producer, "escrow", testLogger())
	err := publisher.Publish(context.Background(), paymentSucceeded(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrNotEnoughReplicas)
}

func TestKafkaPublisher_CancelledContext(t *testing.T) {
	producer := newMockProducer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	publisher := events.NewKafkaPublisher(producer, "escrow", testLogger())
	assert.ErrorIs(t, publisher.Publish(ctx, paymentSucceeded(t)), context.Canceled)
}

func TestKafkaPublisher_Topic(t *testing.T) {
	assert.Equal(t, "escrow.escrow.released", events.NewKafkaPublisher(nil, "escrow", testLogger()).Topic(domain.EventEscrowReleased))
	assert.Equal(t, "refund.completed", events.NewKafkaPublisher(nil, "", testLogger()).Topic(domain.EventRefundCompleted))
}

func TestLogPublisher(t *testing.T) {
	publisher := events.NewLogPublisher(testLogger())
	assert.NoError(t, publisher.Publish(context.Background(), paymentSucceeded(t)))
}
