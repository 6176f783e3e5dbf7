package domain

import (
	"testing"
	"time"
)

func validCustomOrder() CustomOrder {
	now := time.Now().UTC()
	return CustomOrder{
		ID:             "22222222-2222-2222-2222-222222222222",
		OrderID:        "ORD-CUS-20260830-0001",
		Name:           "Kamala Silva",
		Email:          "kamala@example.com",
		Phone:          "0712345678",
		EventType:      "wedding",
		EventDate:      now.AddDate(0, 1, 0),
		CakeSize:       "Multi-tier",
		Flavor:         "ribbon",
		Status:         CustomOrderStatusPending,
		EstimatedPrice: 15000,
		AdvanceAmount:  4500,
		AdvanceStatus:  AdvancePending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestCustomOrder_ValidateInvariants_OK(t *testing.T) {
	co := validCustomOrder()
	if errs := co.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestCustomOrder_AdvanceWithoutStatus(t *testing.T) {
	co := validCustomOrder()
	co.AdvanceStatus = AdvanceNotRequired

	if errs := co.ValidateInvariants(); len(errs) != 1 {
		t.Fatalf("expected advance coherence error, got %v", errs)
	}
}

func TestCustomOrder_StatusWithoutAmount(t *testing.T) {
	co := validCustomOrder()
	co.AdvanceAmount = 0

	if errs := co.ValidateInvariants(); len(errs) != 1 {
		t.Fatalf("expected advance coherence error, got %v", errs)
	}
}

func TestCustomOrder_AdvanceExceedsEstimate(t *testing.T) {
	co := validCustomOrder()
	co.AdvanceAmount = 16000

	if errs := co.ValidateInvariants(); len(errs) != 1 {
		t.Fatalf("expected advance > estimate error, got %v", errs)
	}
}

func TestCustomOrderStatus_Terminal(t *testing.T) {
	if CustomOrderStatusInProgress.Terminal() {
		t.Fatal("in-progress must not be terminal")
	}
	if !CustomOrderStatusCompleted.Terminal() || !CustomOrderStatusCancelled.Terminal() {
		t.Fatal("completed and cancelled must be terminal")
	}
}
