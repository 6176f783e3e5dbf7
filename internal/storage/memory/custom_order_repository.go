package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
)

// customOrderRepositoryInMemory — in-memory реализация CustomOrderRepository.
type customOrderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.CustomOrder
}

// NewCustomOrderRepository возвращает in-memory репозиторий индивидуальных заказов.
func NewCustomOrderRepository() domain.CustomOrderRepository {
	return &customOrderRepositoryInMemory{
		items: make(map[string]domain.CustomOrder),
	}
}

// Create сохраняет новый индивидуальный заказ, если ID ещё не занят.
func (r *customOrderRepositoryInMemory) Create(order domain.CustomOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrOrderVersionConflict
	}
	r.items[order.ID] = order
	return nil
}

// Get возвращает заказ или ErrCustomOrderNotFound.
func (r *customOrderRepositoryInMemory) Get(id string) (domain.CustomOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.CustomOrder{}, domain.ErrCustomOrderNotFound
	}
	return order, nil
}

// GetByOrderID ищет заказ по публичному номеру.
func (r *customOrderRepositoryInMemory) GetByOrderID(orderID string) (domain.CustomOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.items {
		if order.OrderID == orderID {
			return order, nil
		}
	}
	return domain.CustomOrder{}, domain.ErrCustomOrderNotFound
}

// Delete удаляет заказ.
func (r *customOrderRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrCustomOrderNotFound
	}
	delete(r.items, id)
	return nil
}

// List возвращает заказы, новые первыми.
func (r *customOrderRepositoryInMemory) List(limit int) ([]domain.CustomOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.CustomOrder, 0, len(r.items))
	for _, order := range r.items {
		result = append(result, order)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Save перезаписывает заказ, проверяя версию (optimistic locking).
func (r *customOrderRepositoryInMemory) Save(order domain.CustomOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.ID]
	if !ok {
		return domain.ErrCustomOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}
	order.Version++
	r.items[order.ID] = order
	return nil
}

// CountByCreatedDate считает заказы, созданные в указанный день (UTC).
func (r *customOrderRepositoryInMemory) CountByCreatedDate(date time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	y, m, d := date.UTC().Date()
	count := 0
	for _, order := range r.items {
		oy, om, od := order.CreatedAt.UTC().Date()
		if oy == y && om == m && od == d {
			count++
		}
	}
	return count, nil
}

// ExistsOrderID проверяет занятость публичного номера.
func (r *customOrderRepositoryInMemory) ExistsOrderID(orderID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.items {
		if order.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

var _ domain.CustomOrderRepository = (*customOrderRepositoryInMemory)(nil)
