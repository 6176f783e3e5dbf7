// Пакет orderid генерирует и разбирает публичные номера заказов вида
// ORD-{PRM|CUS}-{YYYYMMDD}-{seq4}. Номер человекочитаем и кодирует тип
// заказа, дату создания и дневной порядковый номер.
package orderid

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Type — код типа заказа внутри публичного номера.
type Type string

const (
	// TypeStandard — стандартный заказ из каталога.
	TypeStandard Type = "PRM"
	// TypeCustom — индивидуальный заказ.
	TypeCustom Type = "CUS"
)

const (
	prefix     = "ORD"
	dateLayout = "20060102"

	// maxCollisionRetries ограничивает цикл перепроверки занятости номера.
	maxCollisionRetries = 5
)

// SequenceSource отдаёт дневной счётчик и проверяет занятость номера.
// Счётчик считается по обеим коллекциям заказов для данного типа и даты.
type SequenceSource interface {
	CountForDate(t Type, date time.Time) (int, error)
	Exists(orderID string) (bool, error)
}

// Generator выпускает уникальные публичные номера заказов.
type Generator struct {
	source SequenceSource
	logger *log.Entry
	now    func() time.Time
}

// NewGenerator создаёт генератор поверх источника последовательности.
func NewGenerator(source SequenceSource, logger *log.Entry) *Generator {
	if logger == nil {
		logger = log.New().WithField("component", "orderid")
	}
	return &Generator{
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Next выпускает следующий свободный номер для типа t.
// При ошибке источника последовательности генератор уходит в fallback
// с суффиксом, производным от текущего времени, и всё равно перепроверяет
// занятость перед возвратом.
func (g *Generator) Next(t Type) (string, error) {
	now := g.now().UTC()
	datePart := now.Format(dateLayout)

	seq, err := g.source.CountForDate(t, now)
	if err != nil {
		g.logger.WithError(err).Warn("sequence query failed, falling back to timestamp suffix")
		return g.nextFallback(t, datePart, now)
	}

	for attempt := 0; attempt <= maxCollisionRetries; attempt++ {
		candidate := fmt.Sprintf("%s-%s-%s-%04d", prefix, t, datePart, seq+1+attempt)
		taken, err := g.source.Exists(candidate)
		if err != nil {
			g.logger.WithError(err).Warn("collision check failed, falling back to timestamp suffix")
			return g.nextFallback(t, datePart, now)
		}
		if !taken {
			return candidate, nil
		}
	}

	return g.nextFallback(t, datePart, now)
}

// nextFallback строит номер из миллисекунд текущего времени.
func (g *Generator) nextFallback(t Type, datePart string, now time.Time) (string, error) {
	suffix := now.UnixMilli() % 10000
	for attempt := 0; attempt <= maxCollisionRetries; attempt++ {
		candidate := fmt.Sprintf("%s-%s-%s-%04d", prefix, t, datePart, (suffix+int64(attempt))%10000)
		taken, err := g.source.Exists(candidate)
		if err != nil {
			return "", fmt.Errorf("verify fallback order id: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("exhausted fallback order id candidates for %s-%s", t, datePart)
}

// Parse разбирает публичный номер обратно в тип, дату и порядковый номер.
func Parse(orderID string) (Type, time.Time, int, error) {
	parts := strings.Split(orderID, "-")
	if len(parts) != 4 || parts[0] != prefix {
		return "", time.Time{}, 0, fmt.Errorf("malformed order id: %q", orderID)
	}

	t := Type(parts[1])
	if t != TypeStandard && t != TypeCustom {
		return "", time.Time{}, 0, fmt.Errorf("unknown order type code: %q", parts[1])
	}

	date, err := time.Parse(dateLayout, parts[2])
	if err != nil {
		return "", time.Time{}, 0, fmt.Errorf("parse order date: %w", err)
	}

	if len(parts[3]) != 4 {
		return "", time.Time{}, 0, fmt.Errorf("malformed order sequence: %q", parts[3])
	}
	seq, err := strconv.Atoi(parts[3])
	if err != nil {
		return "", time.Time{}, 0, fmt.Errorf("parse order sequence: %w", err)
	}

	return t, date, seq, nil
}
