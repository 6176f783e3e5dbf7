package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func consumerMessage(topic string, retryCount []byte) *sarama.ConsumerMessage {
	msg := &sarama.ConsumerMessage{
		Topic: topic,
		Key:   []byte("ORD-PRM-20260830-0001"),
		Value: []byte(`{"id":"msg-1"}`),
	}
	if retryCount != nil {
		msg.Headers = []*sarama.RecordHeader{
			{Key: []byte(HeaderRetryCount), Value: retryCount},
		}
	}
	return msg
}

func TestRetryCountOf(t *testing.T) {
	if got := retryCountOf(consumerMessage(TopicOrderEvents, nil)); got != 0 {
		t.Fatalf("no header: retry count = %d, want 0", got)
	}
	if got := retryCountOf(consumerMessage(TopicOrderEvents, []byte("4"))); got != 4 {
		t.Fatalf("retry count = %d, want 4", got)
	}
	if got := retryCountOf(consumerMessage(TopicOrderEvents, []byte("junk"))); got != 0 {
		t.Fatalf("malformed header: retry count = %d, want 0", got)
	}
}

func TestHandleWithRetry_Success(t *testing.T) {
	var calls int
	c := &Consumer{
		handler: func(context.Context, *sarama.ConsumerMessage) error {
			calls++
			return nil
		},
		logger:     testLogger(),
		maxRetries: 3,
	}

	if err := c.handleWithRetry(context.Background(), consumerMessage(TopicOrderEvents, nil)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
}

func TestHandleWithRetry_ReturnsErrorBelowLimit(t *testing.T) {
	handlerErr := errors.New("temporary failure")
	c := &Consumer{
		handler: func(context.Context, *sarama.ConsumerMessage) error {
			return handlerErr
		},
		logger:     testLogger(),
		maxRetries: 3,
	}

	err := c.handleWithRetry(context.Background(), consumerMessage(TopicOrderEvents, []byte("1")))
	if !errors.Is(err, handlerErr) {
		t.Fatalf("expected handler error to propagate, got %v", err)
	}
}

func TestHandleWithRetry_SendsToDLQAfterLimit(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicDeadLetterQueue {
			t.Errorf("topic = %s, want dlq", msg.Topic)
		}
		return nil
	})

	c := &Consumer{
		handler: func(context.Context, *sarama.ConsumerMessage) error {
			return errors.New("permanent failure")
		},
		logger:      testLogger(),
		dlqProducer: &Producer{producer: mock, logger: testLogger()},
		maxRetries:  3,
	}

	// Лимит достигнут: сообщение уходит в DLQ и считается обработанным.
	if err := c.handleWithRetry(context.Background(), consumerMessage(TopicOrderEvents, []byte("3"))); err != nil {
		t.Fatalf("expected nil after dlq handoff, got %v", err)
	}

	if err := mock.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestHandleWithRetry_NoDLQPropagatesError(t *testing.T) {
	c := &Consumer{
		handler: func(context.Context, *sarama.ConsumerMessage) error {
			return errors.New("permanent failure")
		},
		logger:     testLogger(),
		maxRetries: 2,
	}

	if err := c.handleWithRetry(context.Background(), consumerMessage(TopicOrderEvents, []byte("2"))); err == nil {
		t.Fatal("expected error without dlq producer")
	}
}

func TestParseEnvelope(t *testing.T) {
	msg := &sarama.ConsumerMessage{
		Value: []byte(`{"id":"msg-1","aggregate_type":"order","aggregate_id":"ORD-PRM-20260830-0001","event_type":"orderConfirmed","payload":{"to":"confirmed"},"published_at":"2026-08-30T10:00:00Z"}`),
	}

	envelope, err := ParseEnvelope(msg)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if envelope.EventType != "orderConfirmed" {
		t.Fatalf("event type = %s", envelope.EventType)
	}
	if envelope.AggregateID != "ORD-PRM-20260830-0001" {
		t.Fatalf("aggregate id = %s", envelope.AggregateID)
	}
	if envelope.PublishedAt != time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC) {
		t.Fatalf("published at = %v", envelope.PublishedAt)
	}

	if _, err := ParseEnvelope(&sarama.ConsumerMessage{Value: []byte("not json")}); err == nil {
		t.Fatal("expected error for malformed envelope")
	}
}
