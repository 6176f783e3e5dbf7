package domain

// PaymentStatus описывает состояние оплаты заказа.
// Граф переходов: pending -> {paid, failed}; paid -> {refunded};
// failed -> {pending} (повторная попытка); refunded — терминальный.
type PaymentStatus string

const (
	// PaymentStatusPending — оплата ожидается.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusPaid — оплата подтверждена шлюзом.
	PaymentStatusPaid PaymentStatus = "paid"
	// PaymentStatusFailed — шлюз отклонил оплату; допускается повтор.
	PaymentStatusFailed PaymentStatus = "failed"
	// PaymentStatusRefunded — средства возвращены клиенту (терминальный статус).
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Terminal сообщает, является ли статус оплаты терминальным.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusRefunded
}
