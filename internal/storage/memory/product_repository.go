package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
)

// productRepositoryInMemory — in-memory реализация ProductRepository.
// AdjustStock выполняется под общим мьютексом и потому атомарен.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory репозиторий каталога.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Create сохраняет новый товар, если ID ещё не занят.
func (r *productRepositoryInMemory) Create(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return domain.ErrOrderVersionConflict
	}
	r.items[product.ID] = product
	return nil
}

// Get возвращает товар или ErrProductNotFound.
func (r *productRepositoryInMemory) Get(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// List возвращает товары, отсортированные по названию.
func (r *productRepositoryInMemory) List(limit int) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, product)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Save перезаписывает карточку товара.
func (r *productRepositoryInMemory) Save(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	product.UpdatedAt = time.Now().UTC()
	r.items[product.ID] = product
	return nil
}

// AdjustStock атомарно меняет остаток и счётчик продаж. Остаток не может
// уйти ниже нуля: такой запрос отклоняется целиком.
func (r *productRepositoryInMemory) AdjustStock(id string, stockDelta int32, soldDelta int64) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if product.StockQuantity+stockDelta < 0 {
		return domain.Product{}, domain.ErrInsufficientStock
	}
	product.StockQuantity += stockDelta
	product.SoldCount += soldDelta
	if product.SoldCount < 0 {
		product.SoldCount = 0
	}
	product.UpdatedAt = time.Now().UTC()
	r.items[id] = product
	return product, nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
