package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
	"github.com/vladislavdragonenkov/bakeshop/internal/workflow"
)

func testCustomOrder() *domain.CustomOrder {
	return &domain.CustomOrder{
		ID:        "custom-1",
		OrderID:   "ORD-CUS-20260830-0001",
		Name:      "Kamala Silva",
		Email:     "kamala@example.com",
		Phone:     "0712345678",
		EventType: "Wedding",
		EventDate: time.Now().UTC().AddDate(0, 1, 0),
		CakeSize:  "1kg",
		Flavor:    "Vanilla",
		Status:    domain.CustomOrderStatusPending,
	}
}

func TestCustomTransition_ConfirmComputesAdvance(t *testing.T) {
	env := newEnv(t)

	// Оценка 15000 выше порога: при подтверждении выставляется предоплата.
	order := testCustomOrder()
	order.EstimatedPrice = 15000

	err := env.manager.Transition(context.Background(), workflow.EntityCustomOrder, order, "confirmed", workflow.Context{Actor: "staff"})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if order.AdvanceStatus != domain.AdvancePending {
		t.Fatalf("advance status = %s, want pending", order.AdvanceStatus)
	}
	if order.AdvanceAmount != 4500 {
		t.Fatalf("advance amount = %d, want 4500", order.AdvanceAmount)
	}
	if !hasEvent(env.emitter.History(), "customOrderConfirmed") {
		t.Fatalf("expected customOrderConfirmed event, got %v", eventNames(env.emitter.History()))
	}
}

func TestCustomTransition_ConfirmWithoutAdvance(t *testing.T) {
	env := newEnv(t)

	order := testCustomOrder()
	order.EstimatedPrice = 5000

	if err := env.manager.Transition(context.Background(), workflow.EntityCustomOrder, order, "confirmed", workflow.Context{}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if order.AdvanceStatus != domain.AdvanceNotRequired {
		t.Fatalf("advance status = %s, want not_required", order.AdvanceStatus)
	}
	if order.AdvanceAmount != 0 {
		t.Fatalf("advance amount = %d, want 0", order.AdvanceAmount)
	}
}

func TestCustomTransition_ConfirmRequiresPricing(t *testing.T) {
	env := newEnv(t)

	order := testCustomOrder()
	err := env.manager.Transition(context.Background(), workflow.EntityCustomOrder, order, "confirmed", workflow.Context{})
	if !domain.IsRuleViolation(err) {
		t.Fatalf("confirm without estimate must fail, got %v", err)
	}
	if order.Status != domain.CustomOrderStatusPending {
		t.Fatalf("status must stay pending, got %s", order.Status)
	}
}

func TestCustomTransition_ProductionGatedByAdvance(t *testing.T) {
	env := newEnv(t)

	order := testCustomOrder()
	order.EstimatedPrice = 15000
	if err := env.manager.Transition(context.Background(), workflow.EntityCustomOrder, order, "confirmed", workflow.Context{}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	// Предоплата ожидается: производство не стартует.
	err := env.manager.Transition(context.Background(), workflow.EntityCustomOrder, order, "in-progress", workflow.Context{})
	if !domain.IsRuleViolation(err) {
		t.Fatalf("expected advance gate violation, got %v", err)
	}
	if order.Status != domain.CustomOrderStatusConfirmed {
		t.Fatalf("status must stay confirmed, got %s", order.Status)
	}

	order.AdvanceStatus = domain.AdvancePaid
	if err := env.manager.Transition(context.Background(), workflow.EntityCustomOrder, order, "in-progress", workflow.Context{}); err != nil {
		t.Fatalf("start production failed: %v", err)
	}
	if !hasEvent(env.emitter.History(), "customOrderInProgress") {
		t.Fatalf("expected customOrderInProgress event, got %v", eventNames(env.emitter.History()))
	}

	if err := env.manager.Transition(context.Background(), workflow.EntityCustomOrder, order, "completed", workflow.Context{}); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if !order.Status.Terminal() {
		t.Fatal("completed must be terminal")
	}
}

func TestCustomTransition_CancelAfterAdvancePaid(t *testing.T) {
	env := newEnv(t)

	order := testCustomOrder()
	order.EstimatedPrice = 15000
	if err := env.manager.Transition(context.Background(), workflow.EntityCustomOrder, order, "confirmed", workflow.Context{}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	order.AdvanceStatus = domain.AdvancePaid

	if err := env.manager.Transition(context.Background(), workflow.EntityCustomOrder, order, "cancelled", workflow.Context{Reason: "venue cancelled"}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if !hasEvent(env.emitter.History(), "advanceRefundInitiated") {
		t.Fatalf("expected advanceRefundInitiated event, got %v", eventNames(env.emitter.History()))
	}
}

func TestCustomTransition_LeadTimeCapOnConfirm(t *testing.T) {
	env := newEnv(t)

	order := testCustomOrder()
	order.EstimatedPrice = 5000
	order.EventDate = time.Now().UTC().AddDate(0, 7, 0)

	err := env.manager.Transition(context.Background(), workflow.EntityCustomOrder, order, "confirmed", workflow.Context{})
	if !domain.IsRuleViolation(err) {
		t.Fatalf("event beyond six months must fail, got %v", err)
	}
}

func TestPaymentTransitions(t *testing.T) {
	env := newEnv(t)
	order := testOrder("prod-1", 1)

	if err := env.manager.Transition(context.Background(), workflow.EntityPayment, order, "paid", workflow.Context{}); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if order.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("payment status = %s, want paid", order.PaymentStatus)
	}
	if !hasEvent(env.emitter.History(), "paymentPaid") {
		t.Fatalf("expected paymentPaid event, got %v", eventNames(env.emitter.History()))
	}

	// paid -> pending запрещён, допустим только возврат.
	err := env.manager.Transition(context.Background(), workflow.EntityPayment, order, "pending", workflow.Context{})
	if !domain.IsIllegalTransition(err) {
		t.Fatalf("paid -> pending must be illegal, got %v", err)
	}

	if err := env.manager.Transition(context.Background(), workflow.EntityPayment, order, "refunded", workflow.Context{Reason: "order cancelled"}); err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if !order.PaymentStatus.Terminal() {
		t.Fatal("refunded must be terminal")
	}
}

func TestPaymentRetryAfterFailure(t *testing.T) {
	env := newEnv(t)
	order := testOrder("prod-1", 1)

	if err := env.manager.Transition(context.Background(), workflow.EntityPayment, order, "failed", workflow.Context{Reason: "gateway declined"}); err != nil {
		t.Fatalf("fail transition failed: %v", err)
	}
	if err := env.manager.Transition(context.Background(), workflow.EntityPayment, order, "pending", workflow.Context{Reason: "retry"}); err != nil {
		t.Fatalf("retry transition failed: %v", err)
	}
	if order.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("payment status = %s, want pending", order.PaymentStatus)
	}
}
