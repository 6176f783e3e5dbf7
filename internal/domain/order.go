package domain

import "time"

// OrderStatus описывает жизненный цикл стандартного заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, ожидает подтверждения персоналом.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — заказ подтверждён, сток списан.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusPreparing — заказ в работе на кухне.
	OrderStatusPreparing OrderStatus = "preparing"
	// OrderStatusReady — заказ готов к выдаче/доставке.
	OrderStatusReady OrderStatus = "ready"
	// OrderStatusDelivered — заказ доставлен клиенту (терминальный статус).
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён (терминальный статус).
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentMethod перечисляет поддерживаемые способы оплаты.
type PaymentMethod string

const (
	// PaymentMethodCOD — оплата наличными при доставке.
	PaymentMethodCOD PaymentMethod = "cod"
	// PaymentMethodOnline — онлайн-оплата через внешний платёжный шлюз.
	PaymentMethodOnline PaymentMethod = "online"
	// PaymentMethodBankTransfer — банковский перевод.
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// Address — структурированный адрес доставки.
type Address struct {
	Street     string
	City       string
	PostalCode string
}

// CustomerInfo — снимок контактных данных клиента на момент заказа.
// Адрес может быть либо структурированным (Address), либо свободной строкой.
type CustomerInfo struct {
	Name        string
	Email       string
	Phone       string
	Address     *Address
	AddressText string
}

// OrderItem представляет одну позицию заказа со снимком цены товара.
type OrderItem struct {
	ProductID string
	Name      string
	// UnitPrice — цена за единицу в LKR (рупии без минорных единиц).
	UnitPrice int64
	Qty       int32
	// Subtotal всегда равен UnitPrice * Qty.
	Subtotal int64
}

// Pricing — ценовой блок заказа. Инвариант: Total == Subtotal + DeliveryFee.
type Pricing struct {
	Subtotal    int64
	DeliveryFee int64
	Total       int64
}

// Delivery хранит метаданные доставки.
type Delivery struct {
	Zone     string
	TimeSlot string
	Express  bool
	Date     time.Time
}

// Order агрегирует состояние стандартного заказа.
type Order struct {
	// ID — внутренний идентификатор записи (uuid).
	ID string
	// OrderID — публичный человекочитаемый номер (ORD-PRM-YYYYMMDD-0001).
	OrderID       string
	Customer      CustomerInfo
	Items         []OrderItem
	Pricing       Pricing
	Delivery      Delivery
	Status        OrderStatus
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod
	Notes         string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.Customer.Name == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}

	// Сверяем сумму позиций: qty * unit price.
	var itemsSum int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.UnitPrice < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		if item.Subtotal != item.UnitPrice*int64(item.Qty) {
			errs = append(errs, &ConsistencyError{Message: "item subtotal does not match price * qty"})
		}
		itemsSum += item.Subtotal
	}
	if itemsSum != o.Pricing.Subtotal {
		errs = append(errs, &ConsistencyError{Message: "pricing subtotal does not match items sum"})
	}
	if o.Pricing.DeliveryFee < 0 {
		errs = append(errs, &ConsistencyError{Message: "delivery fee must be non-negative"})
	}
	if o.Pricing.Total != o.Pricing.Subtotal+o.Pricing.DeliveryFee {
		errs = append(errs, &ConsistencyError{Message: "pricing total does not match subtotal + delivery fee"})
	}

	return errs
}

// Terminal сообщает, является ли статус заказа терминальным.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}
