// Пакет rules содержит движок именованных бизнес-правил: чистые предикаты и
// калькуляторы над примитивами и доменными сущностями, без внешних зависимостей.
package rules

import (
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
)

// ValidateFunc — предикат правила; возвращает ошибку с сообщением правила при нарушении.
type ValidateFunc func(args ...any) error

// CalculateFunc — калькулятор правила.
type CalculateFunc func(args ...any) (any, error)

// Rule — именованная запись движка: предикат и/или калькулятор плюс
// статическая конфигурация и таблицы переходов.
type Rule struct {
	Validate    ValidateFunc
	Calculate   CalculateFunc
	Config      map[string]any
	Transitions map[string][]string
}

// Engine хранит набор правил, зарегистрированных один раз при инициализации.
// Экземпляр конструируется явно и передаётся зависимостям — глобального
// состояния нет, тесты собирают изолированные движки.
type Engine struct {
	cfg   Config
	fees  *FeeCalculator
	rules map[string]Rule
}

// NewEngine создаёт движок и регистрирует встроенные правила.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		cfg:   cfg,
		fees:  NewFeeCalculator(cfg),
		rules: make(map[string]Rule),
	}
	registerBuiltins(e)
	return e
}

// AddRule регистрирует правило под именем name.
func (e *Engine) AddRule(name string, rule Rule) error {
	if name == "" {
		return fmt.Errorf("rule name is required")
	}
	if rule.Validate == nil && rule.Calculate == nil && rule.Transitions == nil {
		return fmt.Errorf("rule %q must define a validator, calculator or transitions", name)
	}
	e.rules[name] = rule
	return nil
}

// Rule возвращает зарегистрированное правило по имени.
func (e *Engine) Rule(name string) (Rule, bool) {
	rule, ok := e.rules[name]
	return rule, ok
}

// ValidateRule исполняет предикат правила. Нарушение приходит ошибкой
// с сообщением, специфичным для правила.
func (e *Engine) ValidateRule(name string, args ...any) error {
	rule, ok := e.rules[name]
	if !ok {
		return fmt.Errorf("unknown rule: %q", name)
	}
	if rule.Validate == nil {
		return fmt.Errorf("rule %q has no validator", name)
	}
	return rule.Validate(args...)
}

// CalculateRule исполняет калькулятор правила.
func (e *Engine) CalculateRule(name string, args ...any) (any, error) {
	rule, ok := e.rules[name]
	if !ok {
		return nil, fmt.Errorf("unknown rule: %q", name)
	}
	if rule.Calculate == nil {
		return nil, fmt.Errorf("rule %q has no calculator", name)
	}
	return rule.Calculate(args...)
}

// Config возвращает конфигурацию, с которой собран движок.
func (e *Engine) Config() Config {
	return e.cfg
}

// Fees отдаёт калькулятор стоимости доставки (единственный источник истины
// для тарифов, см. правило deliveryFee).
func (e *Engine) Fees() *FeeCalculator {
	return e.fees
}

// Типизированные обёртки над строковым реестром для вызывающих слоёв.

// CheckAdvanceNotice проверяет минимальный срок до даты доставки.
// Сравнение по календарной дате, время суток отбрасывается.
func (e *Engine) CheckAdvanceNotice(orderType string, deliveryDate, now time.Time) error {
	return e.ValidateRule(RuleMinimumAdvanceNotice, orderType, deliveryDate, now)
}

// CheckLeadTimeCap проверяет, что дата события не дальше допустимого горизонта.
func (e *Engine) CheckLeadTimeCap(eventDate, now time.Time) error {
	return e.ValidateRule(RuleMaximumLeadTime, eventDate, now)
}

// CheckStock проверяет доступность товара под запрошенное количество.
func (e *Engine) CheckStock(product domain.Product, qty int32) error {
	return e.ValidateRule(RuleStockAvailability, product, qty)
}

// CheckCustomerInfo проверяет контактные данные; первая ошибка прерывает проверку.
func (e *Engine) CheckCustomerInfo(customer domain.CustomerInfo) error {
	return e.ValidateRule(RuleCustomerInfo, customer)
}

// AdvanceRequired сообщает, требуется ли предоплата для индивидуального заказа.
func (e *Engine) AdvanceRequired(estimatedPrice int64, requirements, cakeSize string) bool {
	return e.ValidateRule(RuleAdvancePayment, estimatedPrice, requirements, cakeSize) != nil
}

// AdvanceAmount считает требуемую сумму предоплаты.
func (e *Engine) AdvanceAmount(estimatedPrice int64) int64 {
	v, err := e.CalculateRule(RuleAdvancePayment, estimatedPrice)
	if err != nil {
		return 0
	}
	amount, _ := v.(int64)
	return amount
}

// CanTransition сверяет переход со встроенной таблицей переходов.
// Таблица обязана совпадать с графами workflow-менеджера.
func (e *Engine) CanTransition(entityType, from, to string) bool {
	rule, ok := e.rules[RuleStatusTransition]
	if !ok || rule.Transitions == nil {
		return false
	}
	allowed, ok := rule.Transitions[entityType+":"+from]
	if !ok {
		return false
	}
	for _, state := range allowed {
		if state == to {
			return true
		}
	}
	return false
}

// QuoteDeliveryFee считает стоимость доставки через зонный калькулятор.
func (e *Engine) QuoteDeliveryFee(subtotal int64, city string, opts FeeOptions) FeeQuote {
	return e.fees.Quote(subtotal, city, opts)
}
