// Пакет events реализует синхронную внутрипроцессную шину доменных событий.
// Подписчики вызываются в порядке регистрации; ошибка или паника одного
// подписчика логируется и не прерывает доставку остальным.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Максимальный размер кольцевой истории событий.
const historyLimit = 1000

// Event — доменное событие с произвольной полезной нагрузкой.
type Event struct {
	ID        string
	Name      string
	Data      map[string]any
	Timestamp time.Time
}

// Handler обрабатывает событие; ошибка логируется эмиттером и не
// распространяется на других подписчиков.
type Handler func(Event) error

// Emitter — шина событий. Безопасен для конкурентного использования.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	all      []Handler
	history  []Event
	logger   *log.Entry
	now      func() time.Time
}

// NewEmitter создаёт пустую шину событий.
func NewEmitter(logger *log.Entry) *Emitter {
	return &Emitter{
		handlers: make(map[string][]Handler),
		logger:   logger.WithField("component", "event_emitter"),
		now:      time.Now,
	}
}

// Subscribe регистрирует обработчик для событий с именем name.
func (e *Emitter) Subscribe(name string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[name] = append(e.handlers[name], h)
}

// SubscribeAll регистрирует обработчик для всех событий. Обработчики "на всё"
// вызываются после именных подписчиков.
func (e *Emitter) SubscribeAll(h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.all = append(e.all, h)
}

// Emit синхронно доставляет событие всем подписчикам и пишет его в историю.
// Возвращает собранное событие с присвоенным идентификатором.
func (e *Emitter) Emit(name string, data map[string]any) Event {
	event := Event{
		ID:        uuid.NewString(),
		Name:      name,
		Data:      data,
		Timestamp: e.now().UTC(),
	}

	e.mu.Lock()
	e.history = append(e.history, event)
	if len(e.history) > historyLimit {
		e.history = e.history[len(e.history)-historyLimit:]
	}
	named := append([]Handler(nil), e.handlers[name]...)
	all := append([]Handler(nil), e.all...)
	e.mu.Unlock()

	for _, h := range named {
		e.deliver(event, h)
	}
	for _, h := range all {
		e.deliver(event, h)
	}

	return event
}

// History возвращает копию накопленной истории (не больше historyLimit записей).
func (e *Emitter) History() []Event {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Event(nil), e.history...)
}

func (e *Emitter) deliver(event Event, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(log.Fields{
				"event": event.Name,
				"panic": r,
			}).Error("event handler panicked")
		}
	}()

	if err := h(event); err != nil {
		e.logger.WithFields(log.Fields{
			"event": event.Name,
		}).WithError(err).Error("event handler failed")
	}
}
