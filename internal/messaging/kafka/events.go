package kafka

// Топики Kafka.
const (
	TopicOrderEvents     = "bakeshop.order.events"
	TopicDeadLetterQueue = "bakeshop.dlq"
)

// Заголовки retry-логики для DLQ.
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// Типы агрегатов в outbox-конверте.
const (
	AggregateOrder       = "order"
	AggregateCustomOrder = "customOrder"
	AggregatePayment     = "payment"
	AggregateStock       = "stock"
)
