package domain

import "time"

// OrderRepository описывает требования к хранилищу стандартных заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ошибку, если запись с таким ID уже существует.
	Create(order Order) error
	// Get возвращает заказ по внутреннему идентификатору или ErrOrderNotFound.
	Get(id string) (Order, error)
	// GetByOrderID возвращает заказ по публичному номеру или ErrOrderNotFound.
	GetByOrderID(orderID string) (Order, error)
	// Delete удаляет заказ по внутреннему идентификатору (компенсирующее удаление).
	Delete(id string) error
	// List возвращает заказы, ограничивая выборку limit (если >0), новые первыми.
	List(limit int) ([]Order, error)
	// ListByEmail возвращает заказы клиента по email.
	ListByEmail(email string, limit int) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(order Order) error
	// CountByCreatedDate считает заказы, созданные в указанный день (для генератора номеров).
	CountByCreatedDate(date time.Time) (int, error)
	// ExistsOrderID проверяет занятость публичного номера.
	ExistsOrderID(orderID string) (bool, error)
}

// CustomOrderRepository описывает требования к хранилищу индивидуальных заказов.
type CustomOrderRepository interface {
	Create(order CustomOrder) error
	Get(id string) (CustomOrder, error)
	GetByOrderID(orderID string) (CustomOrder, error)
	Delete(id string) error
	List(limit int) ([]CustomOrder, error)
	Save(order CustomOrder) error
	CountByCreatedDate(date time.Time) (int, error)
	ExistsOrderID(orderID string) (bool, error)
}

// ProductRepository описывает хранилище товаров. Изменение остатков выполняется
// только атомарным AdjustStock: сериализуемый инкремент без read-modify-write
// на уровне приложения.
type ProductRepository interface {
	Create(product Product) error
	Get(id string) (Product, error)
	List(limit int) ([]Product, error)
	Save(product Product) error
	// AdjustStock атомарно меняет остаток и счётчик продаж товара.
	// Возвращает обновлённый товар; ErrInsufficientStock, если остаток ушёл бы ниже нуля.
	AdjustStock(id string, stockDelta int32, soldDelta int64) (Product, error)
}
