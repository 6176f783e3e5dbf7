// Пакет validate проверяет форму входных данных заказов до обращения к
// бизнес-правилам. В отличие от правил, валидаторы не останавливаются на
// первой ошибке: клиент получает полный список замечаний за один запрос.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
)

const (
	minNameLen    = 2
	maxNameLen    = 50
	minAddressLen = 10
	maxNotesLen   = 500
	maxItemQty    = 50
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// Шри-ланкийские номера: 0XXXXXXXXX или +94XXXXXXXXX.
	phonePattern = regexp.MustCompile(`^(?:\+94|0)[1-9][0-9]{8}$`)
)

// ItemInput — запрошенная позиция заказа; цена подставляется сервисом из каталога.
type ItemInput struct {
	ProductID string
	Qty       int32
}

// OrderInput — форма создания стандартного заказа.
type OrderInput struct {
	Customer      domain.CustomerInfo
	Items         []ItemInput
	DeliveryDate  time.Time
	City          string
	TimeSlot      string
	Express       bool
	PaymentMethod domain.PaymentMethod
	Notes         string
}

// CustomOrderInput — форма заявки на индивидуальный заказ.
type CustomOrderInput struct {
	Name          string
	Email         string
	Phone         string
	EventType     string
	EventDate     time.Time
	CakeSize      string
	Flavor        string
	Requirements  string
	CustomerNotes string
}

// OrderInputErrors проверяет форму стандартного заказа и возвращает все замечания.
func OrderInputErrors(in OrderInput) []error {
	errs := Contact(in.Customer.Name, in.Customer.Email, in.Customer.Phone)

	if in.Customer.Address != nil {
		if strings.TrimSpace(in.Customer.Address.Street) == "" {
			errs = append(errs, fieldError("address.street", "street is required"))
		}
		if strings.TrimSpace(in.Customer.Address.City) == "" {
			errs = append(errs, fieldError("address.city", "city is required"))
		}
	} else if len(strings.TrimSpace(in.Customer.AddressText)) < minAddressLen {
		errs = append(errs, fieldError("address", fmt.Sprintf("address must be at least %d characters", minAddressLen)))
	}

	if len(in.Items) == 0 {
		errs = append(errs, fieldError("items", "order must contain at least one item"))
	}
	for i, item := range in.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			errs = append(errs, fieldError(fmt.Sprintf("items[%d].productId", i), "product id is required"))
		}
		if item.Qty <= 0 {
			errs = append(errs, fieldError(fmt.Sprintf("items[%d].qty", i), "qty must be greater than zero"))
		} else if item.Qty > maxItemQty {
			errs = append(errs, fieldError(fmt.Sprintf("items[%d].qty", i), fmt.Sprintf("qty must not exceed %d", maxItemQty)))
		}
	}

	if in.DeliveryDate.IsZero() {
		errs = append(errs, fieldError("deliveryDate", "delivery date is required"))
	}
	errs = append(errs, PaymentMethod(in.PaymentMethod)...)
	if len(in.Notes) > maxNotesLen {
		errs = append(errs, fieldError("notes", fmt.Sprintf("notes must not exceed %d characters", maxNotesLen)))
	}

	return errs
}

// CustomOrderInputErrors проверяет форму заявки на индивидуальный заказ.
func CustomOrderInputErrors(in CustomOrderInput) []error {
	errs := Contact(in.Name, in.Email, in.Phone)

	if strings.TrimSpace(in.EventType) == "" {
		errs = append(errs, fieldError("eventType", "event type is required"))
	}
	if in.EventDate.IsZero() {
		errs = append(errs, fieldError("eventDate", "event date is required"))
	}
	if strings.TrimSpace(in.CakeSize) == "" {
		errs = append(errs, fieldError("cakeSize", "cake size is required"))
	}
	if strings.TrimSpace(in.Flavor) == "" {
		errs = append(errs, fieldError("flavor", "flavor is required"))
	}
	if len(in.CustomerNotes) > maxNotesLen {
		errs = append(errs, fieldError("customerNotes", fmt.Sprintf("notes must not exceed %d characters", maxNotesLen)))
	}

	return errs
}

// Contact проверяет имя, email и телефон; используется обеими формами заказов.
func Contact(name, email, phone string) []error {
	var errs []error

	trimmed := strings.TrimSpace(name)
	if len(trimmed) < minNameLen || len(trimmed) > maxNameLen {
		errs = append(errs, fieldError("name", fmt.Sprintf("name must be %d-%d characters", minNameLen, maxNameLen)))
	}
	if !emailPattern.MatchString(email) {
		errs = append(errs, fieldError("email", "invalid email format"))
	}
	if !phonePattern.MatchString(phone) {
		errs = append(errs, fieldError("phone", "invalid Sri Lankan phone number"))
	}

	return errs
}

// PaymentMethod проверяет способ оплаты против перечисления.
func PaymentMethod(method domain.PaymentMethod) []error {
	switch method {
	case domain.PaymentMethodCOD, domain.PaymentMethodOnline, domain.PaymentMethodBankTransfer:
		return nil
	case "":
		return []error{fieldError("paymentMethod", "payment method is required")}
	default:
		return []error{fieldError("paymentMethod", fmt.Sprintf("unsupported payment method %q", method))}
	}
}

// ProductErrors проверяет форму карточки товара перед записью в каталог.
func ProductErrors(p domain.Product) []error {
	var errs []error

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, fieldError("name", "product name is required"))
	}
	if p.Price < 0 {
		errs = append(errs, fieldError("price", "price must be non-negative"))
	}
	if p.DiscountPrice < 0 {
		errs = append(errs, fieldError("discountPrice", "discount price must be non-negative"))
	} else if p.DiscountPrice > 0 && p.DiscountPrice >= p.Price {
		errs = append(errs, fieldError("discountPrice", "discount price must be lower than regular price"))
	}
	if p.StockQuantity < 0 {
		errs = append(errs, fieldError("stockQuantity", "stock quantity must be non-negative"))
	}
	if p.LowStockThreshold < 0 {
		errs = append(errs, fieldError("lowStockThreshold", "low stock threshold must be non-negative"))
	}

	return errs
}

// Wrap сворачивает список замечаний в одну ошибку; nil при пустом списке.
func Wrap(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return domain.ErrorList(errs)
}

func fieldError(field, message string) error {
	return &domain.ValidationError{Field: field, Message: message}
}
