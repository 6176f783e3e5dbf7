package rules

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
)

// Имена встроенных правил.
const (
	RuleMinimumAdvanceNotice = "minimumAdvanceNotice"
	RuleMaximumLeadTime      = "maximumLeadTime"
	RuleStockAvailability    = "stockAvailability"
	RuleDeliveryFee          = "deliveryFee"
	RuleAdvancePayment       = "advancePayment"
	RuleStatusTransition     = "statusTransition"
	RuleCustomerInfo         = "customerInfo"
)

// Типы заказов в аргументах правил.
const (
	OrderTypeStandard = "standard"
	OrderTypeCustom   = "custom"
)

// Config — статические константы бизнес-правил. Собирается один раз на старте.
type Config struct {
	// Минимальный срок до доставки в днях (сравнение по календарной дате).
	StandardNoticeDays int
	CustomNoticeDays   int
	// Максимальный горизонт даты события индивидуального заказа в месяцах.
	MaxLeadMonths int

	// Порог и ставка обязательной предоплаты.
	AdvanceThreshold     int64
	AdvanceRate          float64
	MinAdvanceAmount     int64
	LongRequirementChars int
	MultiTierCakeSize    string

	// Параметры зоны по умолчанию (плоский тариф, см. §зонный калькулятор).
	DefaultDeliveryFee    int64
	FreeDeliveryThreshold int64
	Zones                 []Zone
}

// DefaultConfig возвращает боевые константы правил.
func DefaultConfig() Config {
	return Config{
		StandardNoticeDays:    1,
		CustomNoticeDays:      7,
		MaxLeadMonths:         6,
		AdvanceThreshold:      10000,
		AdvanceRate:           0.30,
		MinAdvanceAmount:      2000,
		LongRequirementChars:  100,
		MultiTierCakeSize:     "Multi-tier",
		DefaultDeliveryFee:    500,
		FreeDeliveryThreshold: 9000,
		Zones:                 DefaultZones(),
	}
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// Шри-ланкийские номера: 0XXXXXXXXX или +94XXXXXXXXX.
	phonePattern = regexp.MustCompile(`^(?:\+94|0)[1-9][0-9]{8}$`)
)

// registerBuiltins наполняет движок встроенными правилами.
func registerBuiltins(e *Engine) {
	cfg := e.cfg

	_ = e.AddRule(RuleMinimumAdvanceNotice, Rule{
		Validate: func(args ...any) error {
			orderType, deliveryDate, now, err := noticeArgs(args)
			if err != nil {
				return err
			}
			days := cfg.StandardNoticeDays
			if orderType == OrderTypeCustom {
				days = cfg.CustomNoticeDays
			}
			if dateOnly(deliveryDate).Before(dateOnly(now).AddDate(0, 0, days)) {
				return &domain.RuleViolationError{
					Rule:    RuleMinimumAdvanceNotice,
					Message: fmt.Sprintf("delivery date must be at least %d day(s) ahead", days),
				}
			}
			return nil
		},
		Config: map[string]any{
			"standardDays": cfg.StandardNoticeDays,
			"customDays":   cfg.CustomNoticeDays,
		},
	})

	_ = e.AddRule(RuleMaximumLeadTime, Rule{
		Validate: func(args ...any) error {
			if len(args) != 2 {
				return fmt.Errorf("%s expects (eventDate, now)", RuleMaximumLeadTime)
			}
			eventDate, ok1 := args[0].(time.Time)
			now, ok2 := args[1].(time.Time)
			if !ok1 || !ok2 {
				return fmt.Errorf("%s expects time.Time arguments", RuleMaximumLeadTime)
			}
			if dateOnly(eventDate).After(dateOnly(now).AddDate(0, cfg.MaxLeadMonths, 0)) {
				return &domain.RuleViolationError{
					Rule:    RuleMaximumLeadTime,
					Message: fmt.Sprintf("event date cannot be more than %d months ahead", cfg.MaxLeadMonths),
				}
			}
			return nil
		},
	})

	_ = e.AddRule(RuleStockAvailability, Rule{
		Validate: func(args ...any) error {
			if len(args) != 2 {
				return fmt.Errorf("%s expects (product, qty)", RuleStockAvailability)
			}
			product, ok1 := args[0].(domain.Product)
			qty, ok2 := args[1].(int32)
			if !ok1 || !ok2 {
				return fmt.Errorf("%s expects (domain.Product, int32)", RuleStockAvailability)
			}
			if !product.Active {
				return &domain.RuleViolationError{
					Rule:    RuleStockAvailability,
					Message: fmt.Sprintf("product %s is not available", product.Name),
				}
			}
			// Позиции под заказ не держат стока.
			if product.OrderOnly {
				return nil
			}
			if product.StockQuantity < qty {
				return &domain.RuleViolationError{
					Rule:    RuleStockAvailability,
					Message: fmt.Sprintf("insufficient stock for %s: have %d, need %d", product.Name, product.StockQuantity, qty),
				}
			}
			return nil
		},
	})

	// Единственный источник истины для тарифов — зонный калькулятор; плоский
	// тариф выражается его параметрами по умолчанию (зона "other").
	_ = e.AddRule(RuleDeliveryFee, Rule{
		Calculate: func(args ...any) (any, error) {
			if len(args) < 1 {
				return nil, fmt.Errorf("%s expects (subtotal[, city[, options]])", RuleDeliveryFee)
			}
			subtotal, ok := args[0].(int64)
			if !ok {
				return nil, fmt.Errorf("%s expects int64 subtotal", RuleDeliveryFee)
			}
			city := ""
			if len(args) > 1 {
				city, _ = args[1].(string)
			}
			opts := FeeOptions{}
			if len(args) > 2 {
				opts, _ = args[2].(FeeOptions)
			}
			return e.fees.Quote(subtotal, city, opts), nil
		},
		Config: map[string]any{
			"defaultFee":    cfg.DefaultDeliveryFee,
			"freeThreshold": cfg.FreeDeliveryThreshold,
		},
	})

	// Validate отвечает на вопрос "нужна ли предоплата": ошибка означает,
	// что предоплата обязательна. Calculate возвращает требуемую сумму.
	_ = e.AddRule(RuleAdvancePayment, Rule{
		Validate: func(args ...any) error {
			if len(args) != 3 {
				return fmt.Errorf("%s expects (estimatedPrice, requirements, cakeSize)", RuleAdvancePayment)
			}
			estimated, ok := args[0].(int64)
			if !ok {
				return fmt.Errorf("%s expects int64 estimated price", RuleAdvancePayment)
			}
			requirements, _ := args[1].(string)
			cakeSize, _ := args[2].(string)

			switch {
			case estimated > cfg.AdvanceThreshold:
				return &domain.RuleViolationError{Rule: RuleAdvancePayment, Message: "advance payment required: estimated price above threshold"}
			case len(requirements) > cfg.LongRequirementChars:
				return &domain.RuleViolationError{Rule: RuleAdvancePayment, Message: "advance payment required: complex requirements"}
			case strings.EqualFold(cakeSize, cfg.MultiTierCakeSize):
				return &domain.RuleViolationError{Rule: RuleAdvancePayment, Message: "advance payment required: multi-tier cake"}
			}
			return nil
		},
		Calculate: func(args ...any) (any, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s expects (estimatedPrice)", RuleAdvancePayment)
			}
			estimated, ok := args[0].(int64)
			if !ok {
				return nil, fmt.Errorf("%s expects int64 estimated price", RuleAdvancePayment)
			}
			amount := int64(float64(estimated) * cfg.AdvanceRate)
			if amount < cfg.MinAdvanceAmount {
				amount = cfg.MinAdvanceAmount
			}
			return amount, nil
		},
		Config: map[string]any{
			"threshold": cfg.AdvanceThreshold,
			"rate":      cfg.AdvanceRate,
			"minimum":   cfg.MinAdvanceAmount,
		},
	})

	_ = e.AddRule(RuleStatusTransition, Rule{
		Transitions: transitionTables(),
	})

	_ = e.AddRule(RuleCustomerInfo, Rule{
		Validate: func(args ...any) error {
			if len(args) != 1 {
				return fmt.Errorf("%s expects (customer)", RuleCustomerInfo)
			}
			customer, ok := args[0].(domain.CustomerInfo)
			if !ok {
				return fmt.Errorf("%s expects domain.CustomerInfo", RuleCustomerInfo)
			}
			return validateCustomerInfo(customer)
		},
	})
}

// transitionTables — независимая копия графов переходов; workflow-менеджер
// сверяется с ней на каждом переходе, расхождение означает RuleViolation.
func transitionTables() map[string][]string {
	return map[string][]string{
		"order:pending":   {"confirmed", "cancelled"},
		"order:confirmed": {"preparing", "cancelled"},
		"order:preparing": {"ready", "cancelled"},
		"order:ready":     {"delivered"},
		"order:delivered": {},
		"order:cancelled": {},

		"customOrder:pending":     {"confirmed", "cancelled"},
		"customOrder:confirmed":   {"in-progress", "cancelled"},
		"customOrder:in-progress": {"completed", "cancelled"},
		"customOrder:completed":   {},
		"customOrder:cancelled":   {},

		"payment:pending":  {"paid", "failed"},
		"payment:paid":     {"refunded"},
		"payment:failed":   {"pending"},
		"payment:refunded": {},
	}
}

// validateCustomerInfo проверяет контактные данные; первая ошибка прерывает проверку.
func validateCustomerInfo(c domain.CustomerInfo) error {
	name := strings.TrimSpace(c.Name)
	if len(name) < 2 || len(name) > 50 {
		return &domain.RuleViolationError{Rule: RuleCustomerInfo, Message: "name must be 2-50 characters"}
	}
	if !emailPattern.MatchString(c.Email) {
		return &domain.RuleViolationError{Rule: RuleCustomerInfo, Message: "invalid email format"}
	}
	if !phonePattern.MatchString(c.Phone) {
		return &domain.RuleViolationError{Rule: RuleCustomerInfo, Message: "invalid Sri Lankan phone number"}
	}
	if c.Address != nil {
		if strings.TrimSpace(c.Address.Street) == "" || strings.TrimSpace(c.Address.City) == "" {
			return &domain.RuleViolationError{Rule: RuleCustomerInfo, Message: "address must include street and city"}
		}
		return nil
	}
	if len(strings.TrimSpace(c.AddressText)) < 10 {
		return &domain.RuleViolationError{Rule: RuleCustomerInfo, Message: "address must be at least 10 characters"}
	}
	return nil
}

func noticeArgs(args []any) (string, time.Time, time.Time, error) {
	if len(args) != 3 {
		return "", time.Time{}, time.Time{}, fmt.Errorf("%s expects (orderType, deliveryDate, now)", RuleMinimumAdvanceNotice)
	}
	orderType, ok1 := args[0].(string)
	deliveryDate, ok2 := args[1].(time.Time)
	now, ok3 := args[2].(time.Time)
	if !ok1 || !ok2 || !ok3 {
		return "", time.Time{}, time.Time{}, fmt.Errorf("%s argument types mismatch", RuleMinimumAdvanceNotice)
	}
	return orderType, deliveryDate, now, nil
}

// dateOnly отбрасывает время суток, оставляя календарную дату в UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
