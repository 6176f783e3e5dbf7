package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// Producer — синхронный идемпотентный Kafka producer.
type Producer struct {
	producer sarama.SyncProducer
	logger   *log.Entry
}

// NewProducer создаёт producer с ожиданием подтверждения от всех реплик.
func NewProducer(brokers []string, logger *log.Entry) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1 // требование идемпотентного режима

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &Producer{
		producer: producer,
		logger:   logger.WithField("component", "kafka_producer"),
	}, nil
}

// PublishEvent сериализует событие в JSON и отправляет в топик.
func (p *Producer) PublishEvent(topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.publish(&sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now(),
	})
}

// PublishToDLQ переносит необработанное сообщение в dead letter queue,
// сопровождая его заголовками с контекстом сбоя.
func (p *Producer) PublishToDLQ(originalTopic, key string, payload []byte, retries int, cause error) error {
	msg := &sarama.ProducerMessage{
		Topic:     TopicDeadLetterQueue,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now(),
		Headers: []sarama.RecordHeader{
			{Key: []byte(HeaderOriginalTopic), Value: []byte(originalTopic)},
			{Key: []byte(HeaderRetryCount), Value: []byte(fmt.Sprintf("%d", retries))},
			{Key: []byte(HeaderErrorMessage), Value: []byte(cause.Error())},
			{Key: []byte(HeaderFailedAt), Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		},
	}
	return p.publish(msg)
}

func (p *Producer) publish(msg *sarama.ProducerMessage) error {
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithField("topic", msg.Topic).Error("failed to send message to kafka")
		return fmt.Errorf("failed to send message: %w", err)
	}
	p.logger.WithFields(log.Fields{
		"topic":     msg.Topic,
		"partition": partition,
		"offset":    offset,
	}).Debug("message sent to kafka")
	return nil
}

// Close закрывает producer.
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
