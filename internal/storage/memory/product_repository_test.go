package memory_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
	"github.com/vladislavdragonenkov/bakeshop/internal/storage/memory"
)

func newProduct() domain.Product {
	return domain.Product{
		ID:                "prod-1",
		Name:              "Ribbon Cake",
		Price:             2500,
		StockQuantity:     10,
		LowStockThreshold: 3,
		Active:            true,
	}
}

func TestProductRepository_CreateGet(t *testing.T) {
	repo := memory.NewProductRepository()

	if err := repo.Create(newProduct()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	product, err := repo.Get("prod-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if product.Name != "Ribbon Cake" {
		t.Fatalf("unexpected product %+v", product)
	}

	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_AdjustStock(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := repo.AdjustStock("prod-1", -4, 4)
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if updated.StockQuantity != 6 {
		t.Fatalf("stock = %d, want 6", updated.StockQuantity)
	}
	if updated.SoldCount != 4 {
		t.Fatalf("sold = %d, want 4", updated.SoldCount)
	}

	// Возврат при отмене.
	updated, err = repo.AdjustStock("prod-1", 4, -4)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if updated.StockQuantity != 10 || updated.SoldCount != 0 {
		t.Fatalf("after restore stock=%d sold=%d, want 10/0", updated.StockQuantity, updated.SoldCount)
	}
}

func TestProductRepository_AdjustStockInsufficient(t *testing.T) {
	repo := memory.NewProductRepository()
	if err := repo.Create(newProduct()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := repo.AdjustStock("prod-1", -11, 11); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// Неудачная корректировка не должна ничего менять.
	product, err := repo.Get("prod-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if product.StockQuantity != 10 || product.SoldCount != 0 {
		t.Fatalf("rejected adjust must not mutate: stock=%d sold=%d", product.StockQuantity, product.SoldCount)
	}
}

func TestProductRepository_AdjustStockConcurrent(t *testing.T) {
	repo := memory.NewProductRepository()
	product := newProduct()
	product.StockQuantity = 100
	if err := repo.Create(product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.AdjustStock("prod-1", -1, 1)
		}()
	}
	wg.Wait()

	final, err := repo.Get("prod-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if final.StockQuantity != 0 {
		t.Fatalf("stock = %d, want 0", final.StockQuantity)
	}
	if final.SoldCount != 100 {
		t.Fatalf("sold = %d, want 100", final.SoldCount)
	}
}

func TestProductRepository_List(t *testing.T) {
	repo := memory.NewProductRepository()

	names := []string{"Chocolate Cake", "Almond Cake", "Butter Cake"}
	for i, name := range names {
		product := newProduct()
		product.ID = string(rune('a' + i))
		product.Name = name
		if err := repo.Create(product); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	products, err := repo.List(0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	if products[0].Name != "Almond Cake" {
		t.Fatalf("expected alphabetical order, got %s first", products[0].Name)
	}

	products, err = repo.List(2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected limited list of 2, got %d", len(products))
	}
}
