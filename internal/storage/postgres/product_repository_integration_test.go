package postgres

import (
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
)

func TestProductRepository_PostgresCRUD(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	product := domain.Product{
		ID:                "prod-1",
		Name:              "Ribbon Cake",
		Price:             2500,
		StockQuantity:     10,
		LowStockThreshold: 2,
		Active:            true,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product: %v", err)
	}

	got, err := repo.Get("prod-1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Name != "Ribbon Cake" || got.StockQuantity != 10 {
		t.Fatalf("unexpected product: %+v", got)
	}

	got.DiscountPrice = 2000
	got.Active = false
	if err := repo.Save(got); err != nil {
		t.Fatalf("save product: %v", err)
	}
	saved, err := repo.Get("prod-1")
	if err != nil {
		t.Fatalf("get saved: %v", err)
	}
	if saved.DiscountPrice != 2000 || saved.Active {
		t.Fatalf("save not applied: %+v", saved)
	}

	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	list, err := repo.List(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list len = %d, want 1", len(list))
	}
}

func TestProductRepository_PostgresAdjustStock(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	if err := repo.Create(domain.Product{
		ID: "prod-1", Name: "Ribbon Cake", Price: 2500, StockQuantity: 5, Active: true,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := repo.AdjustStock("prod-1", -3, 3)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if updated.StockQuantity != 2 || updated.SoldCount != 3 {
		t.Fatalf("after adjust: stock=%d sold=%d", updated.StockQuantity, updated.SoldCount)
	}

	if _, err := repo.AdjustStock("prod-1", -3, 3); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	unchanged, err := repo.Get("prod-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if unchanged.StockQuantity != 2 || unchanged.SoldCount != 3 {
		t.Fatalf("failed adjust must not mutate: %+v", unchanged)
	}

	if _, err := repo.AdjustStock("missing", -1, 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_PostgresConcurrentAdjust(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	if err := repo.Create(domain.Product{
		ID: "prod-1", Name: "Ribbon Cake", Price: 2500, StockQuantity: 50, Active: true,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AdjustStock("prod-1", -1, 1); err != nil {
				t.Errorf("concurrent adjust: %v", err)
			}
		}()
	}
	wg.Wait()

	final, err := repo.Get("prod-1")
	if err != nil {
		t.Fatalf("get final: %v", err)
	}
	if final.StockQuantity != 0 || final.SoldCount != 50 {
		t.Fatalf("final stock=%d sold=%d, want 0/50", final.StockQuantity, final.SoldCount)
	}
}
