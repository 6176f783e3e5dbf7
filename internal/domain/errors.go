package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Ошибка отсутствующего имени клиента.
	ErrCustomerRequired = errors.New("customer name is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы.
	ErrAmountNegative = errors.New("amount must be non-negative")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка отсутствующего названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка скидочной цены: должна быть меньше обычной.
	ErrDiscountPriceInvalid = errors.New("discount price must be lower than regular price")
	// Ошибка отрицательного остатка на складе.
	ErrStockNegative = errors.New("stock quantity must be non-negative")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrCustomOrderNotFound возвращается, если индивидуальный заказ не найден.
	ErrCustomOrderNotFound = errors.New("custom order not found")
	// ErrProductNotFound возвращается, если товар не найден.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductInactive — товар снят с продажи.
	ErrProductInactive = errors.New("product is not active")
	// ErrInsufficientStock — на складе меньше, чем запрошено.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrPaymentNotInitiated — клиент ещё не начинал оплату в шлюзе.
	ErrPaymentNotInitiated = errors.New("payment not initiated")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// ValidationError — ошибка формы входных данных, привязанная к конкретному полю.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// RuleViolationError — вход корректен по форме, но запрещён бизнес-правилом.
type RuleViolationError struct {
	Rule    string
	Message string
}

func (e *RuleViolationError) Error() string {
	if e.Rule == "" {
		return e.Message
	}
	return fmt.Sprintf("rule %s: %s", e.Rule, e.Message)
}

// IllegalTransitionError — машина состояний отклонила запрошенный переход.
type IllegalTransitionError struct {
	EntityType string
	From       string
	To         string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal %s transition: %s -> %s", e.EntityType, e.From, e.To)
}

// InvalidStateError — текущий или целевой статус не принадлежит графу.
type InvalidStateError struct {
	EntityType string
	State      string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("unknown %s state: %q", e.EntityType, e.State)
}

// ConsistencyError — нарушен межполевой инвариант сущности.
type ConsistencyError struct {
	Message string
}

func (e *ConsistencyError) Error() string {
	return "consistency violation: " + e.Message
}

// SideEffectError — внешнее действие (списание стока, возврат) упало уже после
// того, как решение ядра было принято.
type SideEffectError struct {
	Op  string
	Err error
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("side effect %s failed: %v", e.Op, e.Err)
}

func (e *SideEffectError) Unwrap() error {
	return e.Err
}

// ErrorList агрегирует ошибки валидации в одну ошибку с построчным сообщением.
type ErrorList []error

func (l ErrorList) Error() string {
	msgs := make([]string, 0, len(l))
	for _, err := range l {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap отдаёт составные ошибки для errors.Is/As.
func (l ErrorList) Unwrap() []error {
	return l
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}

// IsValidation проверяет, относится ли ошибка к классу ошибок формы входа.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRuleViolation проверяет, относится ли ошибка к классу нарушений бизнес-правил.
func IsRuleViolation(err error) bool {
	var re *RuleViolationError
	return errors.As(err, &re)
}

// IsIllegalTransition проверяет, отклонила ли переход машина состояний.
func IsIllegalTransition(err error) bool {
	var te *IllegalTransitionError
	return errors.As(err, &te)
}
