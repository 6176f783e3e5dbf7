package kafka

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return log.NewEntry(logger)
}

func mockedProducer(t *testing.T) (*Producer, *mocks.SyncProducer) {
	t.Helper()
	mock := mocks.NewSyncProducer(t, nil)
	return &Producer{producer: mock, logger: testLogger()}, mock
}

func TestProducer_PublishEvent(t *testing.T) {
	producer, mock := mockedProducer(t)

	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicOrderEvents {
			t.Errorf("topic = %s, want %s", msg.Topic, TopicOrderEvents)
		}
		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var decoded map[string]any
		return json.Unmarshal(raw, &decoded)
	})

	err := producer.PublishEvent(TopicOrderEvents, "ORD-PRM-20260830-0001", map[string]any{
		"event": "orderConfirmed",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mock.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	producer, mock := mockedProducer(t)

	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.PublishEvent(TopicOrderEvents, "ORD-PRM-20260830-0001", map[string]any{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mock.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishToDLQ_SetsHeaders(t *testing.T) {
	producer, mock := mockedProducer(t)

	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicDeadLetterQueue {
			t.Errorf("topic = %s, want %s", msg.Topic, TopicDeadLetterQueue)
		}
		headers := map[string]string{}
		for _, h := range msg.Headers {
			headers[string(h.Key)] = string(h.Value)
		}
		if headers[HeaderOriginalTopic] != TopicOrderEvents {
			t.Errorf("original topic header = %s", headers[HeaderOriginalTopic])
		}
		if headers[HeaderRetryCount] != "3" {
			t.Errorf("retry count header = %s", headers[HeaderRetryCount])
		}
		if headers[HeaderErrorMessage] != "handler exploded" {
			t.Errorf("error header = %s", headers[HeaderErrorMessage])
		}
		if headers[HeaderFailedAt] == "" {
			t.Error("failed-at header is empty")
		}
		return nil
	})

	err := producer.PublishToDLQ(TopicOrderEvents, "key", []byte(`{"x":1}`), 3, errors.New("handler exploded"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mock.Close(); err != nil {
		t.Fatal(err)
	}
}
