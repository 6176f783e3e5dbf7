package events

import (
	"encoding/json"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
	"github.com/vladislavdragonenkov/bakeshop/internal/metrics"
)

// NewOutboxRelay возвращает catch-all обработчик, складывающий каждое событие
// в transactional outbox для последующей публикации в брокер.
func NewOutboxRelay(repo domain.OutboxRepository, m *metrics.WorkflowMetrics, logger *log.Entry) Handler {
	logger = logger.WithField("component", "outbox_relay")
	return func(event Event) error {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			logger.WithError(err).WithField("event", event.Name).Error("failed to marshal event payload")
			return err
		}

		msg := domain.OutboxMessage{
			AggregateType: aggregateTypeFor(event.Name),
			AggregateID:   orderIDOf(event),
			EventType:     event.Name,
			Payload:       payload,
		}
		if _, err := repo.Enqueue(msg); err != nil {
			logger.WithError(err).WithField("event", event.Name).Error("failed to enqueue outbox message")
			return err
		}
		if m != nil {
			m.RecordOutboxEvent()
		}
		return nil
	}
}

// NewTimelineRecorder возвращает catch-all обработчик, ведущий audit trail
// заказа. События без привязки к заказу пропускаются.
func NewTimelineRecorder(repo domain.TimelineRepository, m *metrics.WorkflowMetrics, logger *log.Entry) Handler {
	logger = logger.WithField("component", "timeline_recorder")
	return func(event Event) error {
		orderID := orderIDOf(event)
		if orderID == "" {
			return nil
		}

		entry := domain.TimelineEvent{
			OrderID:  orderID,
			Type:     event.Name,
			Reason:   reasonOf(event),
			Occurred: event.Timestamp,
		}
		if entry.Occurred.IsZero() {
			entry.Occurred = time.Now().UTC()
		}
		if err := repo.Append(entry); err != nil {
			logger.WithError(err).WithField("order_id", orderID).Error("failed to append timeline event")
			return err
		}
		if m != nil {
			m.RecordTimelineEvent()
		}
		return nil
	}
}

func aggregateTypeFor(name string) string {
	switch {
	case strings.HasPrefix(name, "customOrder") || strings.HasPrefix(name, "advance"):
		return "customOrder"
	case strings.HasPrefix(name, "payment"):
		return "payment"
	case strings.HasPrefix(name, "stock"):
		return "stock"
	default:
		return "order"
	}
}

func orderIDOf(event Event) string {
	if id, ok := event.Data["orderId"].(string); ok {
		return id
	}
	return ""
}

func reasonOf(event Event) string {
	if reason, ok := event.Data["reason"].(string); ok {
		return reason
	}
	return ""
}
