package domain

import "time"

// CustomOrderStatus описывает жизненный цикл индивидуального заказа (торт на событие).
type CustomOrderStatus string

const (
	// CustomOrderStatusPending — заявка принята, ожидает оценки персоналом.
	CustomOrderStatusPending CustomOrderStatus = "pending"
	// CustomOrderStatusConfirmed — персонал подтвердил заказ и оценку.
	CustomOrderStatusConfirmed CustomOrderStatus = "confirmed"
	// CustomOrderStatusInProgress — производство начато.
	CustomOrderStatusInProgress CustomOrderStatus = "in-progress"
	// CustomOrderStatusCompleted — заказ выполнен (терминальный статус).
	CustomOrderStatusCompleted CustomOrderStatus = "completed"
	// CustomOrderStatusCancelled — заказ отменён (терминальный статус).
	CustomOrderStatusCancelled CustomOrderStatus = "cancelled"
)

// AdvancePaymentStatus — отдельный подцикл предоплаты индивидуального заказа.
type AdvancePaymentStatus string

const (
	// AdvanceNotRequired — предоплата не требуется.
	AdvanceNotRequired AdvancePaymentStatus = "not_required"
	// AdvancePending — предоплата рассчитана и ожидается от клиента.
	AdvancePending AdvancePaymentStatus = "pending"
	// AdvancePaid — предоплата получена.
	AdvancePaid AdvancePaymentStatus = "paid"
	// AdvanceRefunded — предоплата возвращена клиенту.
	AdvanceRefunded AdvancePaymentStatus = "refunded"
)

// CustomOrder агрегирует состояние индивидуального заказа.
// Контакты клиента хранятся плоско: структурированного адреса здесь нет.
type CustomOrder struct {
	ID      string
	OrderID string

	Name  string
	Email string
	Phone string

	EventType    string
	EventDate    time.Time
	CakeSize     string
	Flavor       string
	Requirements string

	Status CustomOrderStatus

	// EstimatedPrice в LKR, выставляется только персоналом.
	EstimatedPrice int64
	AdvanceAmount  int64
	AdvanceStatus  AdvancePaymentStatus

	AdminNotes    string
	CustomerNotes string

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет согласованность полей предоплаты и оценки.
func (c *CustomOrder) ValidateInvariants() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if c.EstimatedPrice < 0 {
		errs = append(errs, ErrAmountNegative)
	}
	if c.AdvanceAmount < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	// advanceAmount > 0 <=> advanceStatus != not_required.
	if c.AdvanceAmount > 0 && c.AdvanceStatus == AdvanceNotRequired {
		errs = append(errs, &ConsistencyError{Message: "advance amount set but advance status is not_required"})
	}
	if c.AdvanceAmount == 0 && c.AdvanceStatus != AdvanceNotRequired && c.AdvanceStatus != "" {
		errs = append(errs, &ConsistencyError{Message: "advance status set but advance amount is zero"})
	}
	if c.EstimatedPrice > 0 && c.AdvanceAmount > c.EstimatedPrice {
		errs = append(errs, &ConsistencyError{Message: "advance amount exceeds estimated price"})
	}

	return errs
}

// Terminal сообщает, является ли статус индивидуального заказа терминальным.
func (s CustomOrderStatus) Terminal() bool {
	return s == CustomOrderStatusCompleted || s == CustomOrderStatusCancelled
}
