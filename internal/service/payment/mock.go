package payment

import (
	"sync"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
)

// MockGateway — конфигурируемая заглушка платёжного шлюза.
// По умолчанию ведёт себя как шлюз, в котором ни одна оплата не начата.
type MockGateway struct {
	mu sync.Mutex

	// DefaultStatus возвращается для заказов без явной записи.
	DefaultStatus domain.PaymentStatus
	// Err, если задан, возвращается из Status вместо результата.
	Err error

	statuses map[string]domain.PaymentStatus
	calls    int
}

// NewMockGateway возвращает шлюз без начатых оплат: Status отвечает
// ErrPaymentNotInitiated, пока статус не задан через SetStatus.
func NewMockGateway() *MockGateway {
	return &MockGateway{statuses: make(map[string]domain.PaymentStatus)}
}

// SetStatus фиксирует статус оплаты для конкретного заказа.
func (m *MockGateway) SetStatus(orderID string, status domain.PaymentStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[orderID] = status
}

// Status возвращает настроенный статус и считает вызовы.
func (m *MockGateway) Status(orderID string) (domain.PaymentStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.Err != nil {
		return "", m.Err
	}
	if status, ok := m.statuses[orderID]; ok {
		return status, nil
	}
	if m.DefaultStatus != "" {
		return m.DefaultStatus, nil
	}
	return "", domain.ErrPaymentNotInitiated
}

// Calls возвращает количество обращений к шлюзу.
func (m *MockGateway) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ domain.PaymentGateway = (*MockGateway)(nil)
