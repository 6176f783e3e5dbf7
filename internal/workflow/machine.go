package workflow

import (
	"context"
	"time"
)

// Типы сущностей, управляемых машинами состояний.
const (
	EntityOrder       = "order"
	EntityCustomOrder = "customOrder"
	EntityPayment     = "payment"
)

// Context — метаданные перехода: кто, почему и когда. Previous заполняется
// менеджером перед входными действиями целевого состояния.
type Context struct {
	Reason    string
	Actor     string
	Timestamp time.Time
	Previous  string
	Data      map[string]any
}

// ValidationKind — типизированный идентификатор проверки перед входом в
// состояние; диспетчеризация выполняется через switch в runValidation.
type ValidationKind int

const (
	// ValidateStock — повторная проверка доступности позиций заказа.
	ValidateStock ValidationKind = iota + 1
	// ValidateDeliveryDate — минимальный срок до даты доставки/события.
	ValidateDeliveryDate
	// ValidateCustomerInfo — контактные данные клиента.
	ValidateCustomerInfo
	// ValidatePaymentInitiated — для онлайн-оплаты клиент должен начать платёж.
	ValidatePaymentInitiated
	// ValidatePricingSet — оценка индивидуального заказа выставлена персоналом.
	ValidatePricingSet
	// ValidateAdvanceSettled — требуемая предоплата получена.
	ValidateAdvanceSettled
	// ValidateLeadTimeCap — дата события не дальше допустимого горизонта.
	ValidateLeadTimeCap
)

type hookFunc func(ctx context.Context, entity any, tctx *Context) error

// state — узел графа переходов.
type state struct {
	allowed     []string
	validations []ValidationKind
	onEnter     hookFunc
	onExit      hookFunc
	terminal    bool
}

type graph map[string]state

// buildGraphs собирает графы переходов для всех типов сущностей.
// Таблицы обязаны совпадать с правилом statusTransition движка правил:
// менеджер сверяется с ним на каждом переходе.
func (m *Manager) buildGraphs() map[string]graph {
	return map[string]graph{
		EntityOrder: {
			"pending": {
				allowed:     []string{"confirmed", "cancelled"},
				validations: []ValidationKind{ValidateDeliveryDate, ValidateStock},
			},
			"confirmed": {
				allowed:     []string{"preparing", "cancelled"},
				validations: []ValidationKind{ValidateStock, ValidateCustomerInfo, ValidatePaymentInitiated},
				onEnter:     m.orderConfirmedEnter,
			},
			"preparing": {
				allowed: []string{"ready", "cancelled"},
			},
			"ready": {
				allowed: []string{"delivered"},
			},
			"delivered": {
				terminal: true,
			},
			"cancelled": {
				onEnter:  m.orderCancelledEnter,
				terminal: true,
			},
		},
		EntityCustomOrder: {
			"pending": {
				allowed:     []string{"confirmed", "cancelled"},
				validations: []ValidationKind{ValidateDeliveryDate, ValidateLeadTimeCap},
			},
			"confirmed": {
				allowed:     []string{"in-progress", "cancelled"},
				validations: []ValidationKind{ValidatePricingSet, ValidateLeadTimeCap},
				onEnter:     m.customConfirmedEnter,
			},
			"in-progress": {
				allowed:     []string{"completed", "cancelled"},
				validations: []ValidationKind{ValidateAdvanceSettled},
			},
			"completed": {
				terminal: true,
			},
			"cancelled": {
				onEnter:  m.customCancelledEnter,
				terminal: true,
			},
		},
		EntityPayment: {
			"pending": {
				allowed: []string{"paid", "failed"},
			},
			"paid": {
				allowed: []string{"refunded"},
			},
			"failed": {
				allowed: []string{"pending"},
			},
			"refunded": {
				terminal: true,
			},
		},
	}
}
