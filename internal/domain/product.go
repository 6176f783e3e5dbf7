package domain

import "time"

// Product — снимок товара каталога. Ядро читает его состояние, а писать
// stockQuantity/soldCount разрешено только через атомарный AdjustStock репозитория.
type Product struct {
	ID   string
	Name string
	// Price и DiscountPrice в LKR; DiscountPrice == 0 означает отсутствие скидки.
	Price         int64
	DiscountPrice int64

	StockQuantity     int32
	LowStockThreshold int32
	SoldCount         int64

	Active bool
	// OrderOnly — позиция готовится под заказ и не требует проверки стока.
	OrderOnly bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectivePrice возвращает цену со скидкой, если она задана.
func (p *Product) EffectivePrice() int64 {
	if p.DiscountPrice > 0 && p.DiscountPrice < p.Price {
		return p.DiscountPrice
	}
	return p.Price
}

// Validate проверяет корректность ценовых и складских полей товара.
func (p *Product) Validate() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.Price < 0 {
		errs = append(errs, ErrItemPriceInvalid)
	}
	if p.DiscountPrice < 0 || (p.DiscountPrice > 0 && p.DiscountPrice >= p.Price) {
		errs = append(errs, ErrDiscountPriceInvalid)
	}
	if p.StockQuantity < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}
