package app

import (
	"time"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
	"github.com/vladislavdragonenkov/bakeshop/internal/validate"
)

// newTestProduct возвращает товар с запасом для тестов сборки приложения.
func newTestProduct() domain.Product {
	return domain.Product{
		ID:                "prod-choc-cake",
		Name:              "Chocolate Fudge Cake",
		Price:             5500,
		StockQuantity:     10,
		LowStockThreshold: 2,
		Active:            true,
	}
}

// newTestOrderInput возвращает валидную форму заказа на указанный товар.
func newTestOrderInput(productID string) validate.OrderInput {
	return validate.OrderInput{
		Customer: domain.CustomerInfo{
			Name:        "Nimal Perera",
			Email:       "nimal@example.com",
			Phone:       "+94771234567",
			AddressText: "12 Temple Road, Colombo 03",
		},
		Items:         []validate.ItemInput{{ProductID: productID, Qty: 1}},
		DeliveryDate:  time.Now().AddDate(0, 0, 3),
		City:          "Colombo",
		TimeSlot:      "10:00-12:00",
		PaymentMethod: domain.PaymentMethodCOD,
	}
}
