package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
)

func TestOrderRepository_PostgresCreateGetListAndSave(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	order1 := sampleOrder("order-1", "ORD-PRM-20260830-0001", now.Add(-2*time.Minute))
	order2 := sampleOrder("order-2", "ORD-PRM-20260830-0002", now.Add(-time.Minute))

	if err := repo.Create(order1); err != nil {
		t.Fatalf("create order1: %v", err)
	}
	if err := repo.Create(order2); err != nil {
		t.Fatalf("create order2: %v", err)
	}

	got, err := repo.Get(order1.ID)
	if err != nil {
		t.Fatalf("get order1: %v", err)
	}
	if got.OrderID != order1.OrderID || got.Customer.Email != order1.Customer.Email || got.Status != order1.Status {
		t.Fatalf("unexpected order payload: %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].ProductID != "prod-1" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if got.Pricing.Total != order1.Pricing.Total {
		t.Fatalf("total = %d, want %d", got.Pricing.Total, order1.Pricing.Total)
	}

	byPublic, err := repo.GetByOrderID(order2.OrderID)
	if err != nil {
		t.Fatalf("get by order id: %v", err)
	}
	if byPublic.ID != order2.ID {
		t.Fatalf("unexpected record for public id: %+v", byPublic)
	}

	listed, err := repo.ListByEmail("NIMAL@example.com", 1)
	if err != nil {
		t.Fatalf("list by email with limit: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != order2.ID {
		t.Fatalf("unexpected list result with limit: %+v", listed)
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("list without limit: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(all))
	}

	got.Status = domain.OrderStatusConfirmed
	got.UpdatedAt = now.Add(time.Minute)
	if err := repo.Save(got); err != nil {
		t.Fatalf("save order: %v", err)
	}

	updated, err := repo.Get(order1.ID)
	if err != nil {
		t.Fatalf("get updated order: %v", err)
	}
	if updated.Status != domain.OrderStatusConfirmed {
		t.Fatalf("unexpected status after save: %s", updated.Status)
	}
	if updated.Version != got.Version+1 {
		t.Fatalf("unexpected version after save: got=%d want=%d", updated.Version, got.Version+1)
	}
}

func TestOrderRepository_PostgresSequenceHelpers(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	if err := repo.Create(sampleOrder("order-seq-1", "ORD-PRM-20260830-0005", now)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(sampleOrder("order-seq-2", "ORD-PRM-20260830-0006", now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	count, err := repo.CountByCreatedDate(now)
	if err != nil {
		t.Fatalf("count by date: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	count, err = repo.CountByCreatedDate(now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("count next day: %v", err)
	}
	if count != 0 {
		t.Fatalf("next day count = %d, want 0", count)
	}

	taken, err := repo.ExistsOrderID("ORD-PRM-20260830-0005")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !taken {
		t.Fatal("expected order id to be taken")
	}
	free, err := repo.ExistsOrderID("ORD-PRM-20260830-9999")
	if err != nil {
		t.Fatalf("exists free: %v", err)
	}
	if free {
		t.Fatal("expected order id to be free")
	}
}

func TestOrderRepository_PostgresDelete(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	order := sampleOrder("order-del", "ORD-PRM-20260830-0010", now)
	if err := repo.Create(order); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(order.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound after delete, got %v", err)
	}
	if err := repo.Delete(order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound on repeated delete, got %v", err)
	}
}

func TestOrderRepository_PostgresErrors(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	base := sampleOrder("order-errors", "ORD-PRM-20260830-0020", now)

	if _, err := repo.Get("missing-order"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	if err := repo.Save(base); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound on save missing, got %v", err)
	}

	if err := repo.Create(base); err != nil {
		t.Fatalf("create base order: %v", err)
	}
	if err := repo.Create(base); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected ErrOrderVersionConflict on duplicate create, got %v", err)
	}

	stale := base
	stale.Status = domain.OrderStatusConfirmed
	stale.UpdatedAt = now.Add(time.Minute)
	stale.Version = 42
	if err := repo.Save(stale); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected ErrOrderVersionConflict on stale save, got %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("expected unique violation for code 23505")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "22001"}) {
		t.Fatal("unexpected unique violation for non-unique code")
	}
	if isUniqueViolation(errors.New("plain error")) {
		t.Fatal("plain error must not be unique violation")
	}
}

func sampleOrder(id, orderID string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:      id,
		OrderID: orderID,
		Customer: domain.CustomerInfo{
			Name:        "Nimal Perera",
			Email:       "nimal@example.com",
			Phone:       "+94771234567",
			AddressText: "12 Galle Road, Colombo 03",
		},
		Items: []domain.OrderItem{
			{ProductID: "prod-1", Name: "Ribbon Cake", UnitPrice: 2500, Qty: 2, Subtotal: 5000},
		},
		Pricing: domain.Pricing{Subtotal: 5000, DeliveryFee: 300, Total: 5300},
		Delivery: domain.Delivery{
			Zone: "colombo",
			Date: createdAt.AddDate(0, 0, 3),
		},
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: domain.PaymentMethodCOD,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}
