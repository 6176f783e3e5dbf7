package workflow

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
	"github.com/vladislavdragonenkov/bakeshop/internal/rules"
)

// runValidation исполняет одну проверку перед входом в состояние.
func (m *Manager) runValidation(ctx context.Context, kind ValidationKind, entityType string, entity any) error {
	switch kind {
	case ValidateStock:
		order, ok := entity.(*domain.Order)
		if !ok {
			return fmt.Errorf("stock validation expects an order, got %T", entity)
		}
		for _, item := range order.Items {
			product, err := m.products.Get(item.ProductID)
			if err != nil {
				return fmt.Errorf("resolve product %s: %w", item.ProductID, err)
			}
			if err := m.rules.CheckStock(product, item.Qty); err != nil {
				return err
			}
		}
		return nil

	case ValidateDeliveryDate:
		switch e := entity.(type) {
		case *domain.Order:
			return m.rules.CheckAdvanceNotice(rules.OrderTypeStandard, e.Delivery.Date, m.now())
		case *domain.CustomOrder:
			return m.rules.CheckAdvanceNotice(rules.OrderTypeCustom, e.EventDate, m.now())
		default:
			return fmt.Errorf("delivery date validation expects an order, got %T", entity)
		}

	case ValidateCustomerInfo:
		order, ok := entity.(*domain.Order)
		if !ok {
			return fmt.Errorf("customer info validation expects an order, got %T", entity)
		}
		return m.rules.CheckCustomerInfo(order.Customer)

	case ValidatePaymentInitiated:
		order, ok := entity.(*domain.Order)
		if !ok {
			return fmt.Errorf("payment validation expects an order, got %T", entity)
		}
		if order.PaymentMethod != domain.PaymentMethodOnline {
			return nil
		}
		// Без шлюза проверить нечего: конфигурации только с наличными
		// не обязаны поднимать платёжный коллаборатор.
		if m.gateway == nil {
			return nil
		}
		status, err := m.gateway.Status(order.OrderID)
		if err != nil {
			return err
		}
		if status == "" {
			return domain.ErrPaymentNotInitiated
		}
		return nil

	case ValidatePricingSet:
		custom, ok := entity.(*domain.CustomOrder)
		if !ok {
			return fmt.Errorf("pricing validation expects a custom order, got %T", entity)
		}
		if custom.EstimatedPrice <= 0 {
			return &domain.RuleViolationError{
				Rule:    "estimatedPrice",
				Message: "estimated price must be set before confirmation",
			}
		}
		return nil

	case ValidateAdvanceSettled:
		custom, ok := entity.(*domain.CustomOrder)
		if !ok {
			return fmt.Errorf("advance validation expects a custom order, got %T", entity)
		}
		switch custom.AdvanceStatus {
		case domain.AdvanceNotRequired, domain.AdvancePaid:
			return nil
		default:
			return &domain.RuleViolationError{
				Rule:    rules.RuleAdvancePayment,
				Message: "advance payment must be settled before production starts",
			}
		}

	case ValidateLeadTimeCap:
		custom, ok := entity.(*domain.CustomOrder)
		if !ok {
			return fmt.Errorf("lead time validation expects a custom order, got %T", entity)
		}
		return m.rules.CheckLeadTimeCap(custom.EventDate, m.now())

	default:
		return fmt.Errorf("unknown validation kind %d", kind)
	}
}
