package rules

import (
	"strings"
	"testing"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
)

func TestStockAvailability(t *testing.T) {
	e := NewEngine(DefaultConfig())

	inStock := domain.Product{Name: "Ribbon Cake", Active: true, StockQuantity: 5}
	if err := e.CheckStock(inStock, 5); err != nil {
		t.Fatalf("exact stock must pass: %v", err)
	}
	if err := e.CheckStock(inStock, 6); !domain.IsRuleViolation(err) {
		t.Fatalf("over stock must fail, got %v", err)
	}

	orderOnly := domain.Product{Name: "Wedding Cake", Active: true, OrderOnly: true, StockQuantity: 0}
	if err := e.CheckStock(orderOnly, 3); err != nil {
		t.Fatalf("order-only product bypasses stock check: %v", err)
	}

	inactive := domain.Product{Name: "Old Cake", Active: false, OrderOnly: true, StockQuantity: 100}
	if err := e.CheckStock(inactive, 1); !domain.IsRuleViolation(err) {
		t.Fatalf("inactive product must always fail, got %v", err)
	}
}

func TestAdvancePayment_Triggers(t *testing.T) {
	e := NewEngine(DefaultConfig())

	// Сценарий: цена 15000, размер не многоярусный, требования короткие.
	if !e.AdvanceRequired(15000, strings.Repeat("x", 50), "Standard") {
		t.Fatal("estimated price 15000 requires advance")
	}
	if got := e.AdvanceAmount(15000); got != 4500 {
		t.Fatalf("advance = %d, want 4500", got)
	}

	if !e.AdvanceRequired(5000, strings.Repeat("x", 101), "Standard") {
		t.Fatal("long requirements text requires advance")
	}
	if !e.AdvanceRequired(5000, "", "Multi-tier") {
		t.Fatal("multi-tier cake requires advance")
	}
	if e.AdvanceRequired(10000, strings.Repeat("x", 100), "Standard") {
		t.Fatal("boundary values must not require advance")
	}
}

func TestCustomerInfoRule(t *testing.T) {
	e := NewEngine(DefaultConfig())

	valid := domain.CustomerInfo{
		Name:    "Nimal Perera",
		Email:   "nimal@example.com",
		Phone:   "+94771234567",
		Address: &domain.Address{Street: "12 Galle Road", City: "Colombo"},
	}
	if err := e.CheckCustomerInfo(valid); err != nil {
		t.Fatalf("valid customer must pass: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*domain.CustomerInfo)
		want   string
	}{
		{"short name", func(c *domain.CustomerInfo) { c.Name = "A" }, "name"},
		{"long name", func(c *domain.CustomerInfo) { c.Name = strings.Repeat("a", 51) }, "name"},
		{"bad email", func(c *domain.CustomerInfo) { c.Email = "not-an-email" }, "email"},
		{"bad phone", func(c *domain.CustomerInfo) { c.Phone = "123" }, "phone"},
		{"foreign phone", func(c *domain.CustomerInfo) { c.Phone = "+14155551234" }, "phone"},
		{"address missing city", func(c *domain.CustomerInfo) { c.Address = &domain.Address{Street: "12 Galle Road"} }, "address"},
		{"short text address", func(c *domain.CustomerInfo) {
			c.Address = nil
			c.AddressText = "Colombo"
		}, "address"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			customer := valid
			tc.mutate(&customer)
			err := e.CheckCustomerInfo(customer)
			if !domain.IsRuleViolation(err) {
				t.Fatalf("expected rule violation, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q must mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestCustomerInfoRule_TextAddress(t *testing.T) {
	e := NewEngine(DefaultConfig())

	customer := domain.CustomerInfo{
		Name:        "Kamala Silva",
		Email:       "kamala@example.com",
		Phone:       "0712345678",
		AddressText: "45/2 Temple Road, Kandy",
	}
	if err := e.CheckCustomerInfo(customer); err != nil {
		t.Fatalf("text address >= 10 chars must pass: %v", err)
	}
}

func TestTransitionTables_AgreeWithTerminalStates(t *testing.T) {
	tables := transitionTables()

	terminal := []string{"order:delivered", "order:cancelled", "customOrder:completed", "customOrder:cancelled", "payment:refunded"}
	for _, key := range terminal {
		allowed, ok := tables[key]
		if !ok {
			t.Fatalf("missing table entry for %s", key)
		}
		if len(allowed) != 0 {
			t.Fatalf("terminal state %s must have no outgoing transitions, got %v", key, allowed)
		}
	}
}
