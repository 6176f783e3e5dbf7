// Пакет order реализует фасад жизненного цикла заказов: создание с расчётом
// цены, смену статусов через workflow-менеджер и компенсирующее удаление при
// неудачном первичном переходе.
package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
	"github.com/vladislavdragonenkov/bakeshop/internal/events"
	"github.com/vladislavdragonenkov/bakeshop/internal/orderid"
	"github.com/vladislavdragonenkov/bakeshop/internal/rules"
	"github.com/vladislavdragonenkov/bakeshop/internal/validate"
	"github.com/vladislavdragonenkov/bakeshop/internal/workflow"
)

const (
	saveMaxRetries = 3
	saveBaseDelay  = 10 * time.Millisecond
)

// Service — фасад над репозиториями, правилами и workflow-менеджером.
type Service struct {
	orders   domain.OrderRepository
	customs  domain.CustomOrderRepository
	products domain.ProductRepository
	rules    *rules.Engine
	workflow *workflow.Manager
	emitter  *events.Emitter
	ids      *orderid.Generator
	logger   *log.Entry
	now      func() time.Time
}

// NewService собирает сервис заказов. Генератор номеров строится поверх
// обеих коллекций: дневная последовательность у них общая.
func NewService(
	orders domain.OrderRepository,
	customs domain.CustomOrderRepository,
	products domain.ProductRepository,
	engine *rules.Engine,
	manager *workflow.Manager,
	emitter *events.Emitter,
	logger *log.Entry,
) *Service {
	logger = logger.WithField("component", "order_service")
	return &Service{
		orders:   orders,
		customs:  customs,
		products: products,
		rules:    engine,
		workflow: manager,
		emitter:  emitter,
		ids:      orderid.NewGenerator(&sequenceSource{orders: orders, customs: customs}, logger),
		logger:   logger,
		now:      time.Now,
	}
}

// CreateOrder валидирует вход, резолвит позиции по каталогу, считает цену и
// сохраняет заказ. Первичный переход в pending выполняется после записи;
// его провал компенсируется удалением записи.
func (s *Service) CreateOrder(ctx context.Context, in validate.OrderInput) (domain.Order, error) {
	if err := validate.Wrap(validate.OrderInputErrors(in)); err != nil {
		return domain.Order{}, err
	}
	if err := s.rules.CheckCustomerInfo(in.Customer); err != nil {
		return domain.Order{}, err
	}
	if err := s.rules.CheckAdvanceNotice(rules.OrderTypeStandard, in.DeliveryDate, s.now()); err != nil {
		return domain.Order{}, err
	}

	items, subtotal, err := s.resolveItems(in.Items)
	if err != nil {
		return domain.Order{}, err
	}

	quote := s.rules.QuoteDeliveryFee(subtotal, in.City, rules.FeeOptions{
		Express:  in.Express,
		TimeSlot: in.TimeSlot,
	})

	orderID, err := s.ids.Next(orderid.TypeStandard)
	if err != nil {
		return domain.Order{}, err
	}

	now := s.now().UTC()
	order := domain.Order{
		ID:       uuid.NewString(),
		OrderID:  orderID,
		Customer: in.Customer,
		Items:    items,
		Pricing: domain.Pricing{
			Subtotal:    subtotal,
			DeliveryFee: quote.Fee,
			Total:       subtotal + quote.Fee,
		},
		Delivery: domain.Delivery{
			Zone:     quote.Zone,
			TimeSlot: in.TimeSlot,
			Express:  in.Express,
			Date:     in.DeliveryDate,
		},
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.orders.Create(order); err != nil {
		return domain.Order{}, err
	}

	if err := s.workflow.Transition(ctx, workflow.EntityOrder, &order, "pending", workflow.Context{
		Reason: "order placed",
		Actor:  order.Customer.Email,
	}); err != nil {
		s.compensateCreate(order, err)
		return domain.Order{}, &domain.SideEffectError{Op: "initialTransition", Err: err}
	}

	if err := s.orders.Save(order); err != nil {
		s.compensateCreate(order, err)
		return domain.Order{}, &domain.SideEffectError{Op: "persistInitialStatus", Err: err}
	}
	order.Version++

	s.logger.WithFields(log.Fields{
		"order_id": order.OrderID,
		"total":    order.Pricing.Total,
	}).Info("order created")
	return order, nil
}

// GetOrder возвращает заказ по публичному номеру.
func (s *Service) GetOrder(orderID string) (domain.Order, error) {
	return s.orders.GetByOrderID(orderID)
}

// ListOrders возвращает заказы, новые первыми.
func (s *Service) ListOrders(limit int) ([]domain.Order, error) {
	return s.orders.List(limit)
}

// UpdateOrderStatus переводит заказ в целевой статус и сохраняет его
// с повтором при конфликте версий.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID, target, reason, actor string) (domain.Order, error) {
	order, err := s.orders.GetByOrderID(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.workflow.Transition(ctx, workflow.EntityOrder, &order, target, workflow.Context{
		Reason: reason,
		Actor:  actor,
	}); err != nil {
		return domain.Order{}, err
	}

	if err := s.saveOrderWithRetry(&order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// CancelOrder отменяет заказ. Терминальные статусы отклоняются workflow-менеджером.
func (s *Service) CancelOrder(ctx context.Context, orderID, reason, actor string) (domain.Order, error) {
	return s.UpdateOrderStatus(ctx, orderID, "cancelled", reason, actor)
}

// UpdatePaymentStatus переводит оплату заказа по платёжному графу.
func (s *Service) UpdatePaymentStatus(ctx context.Context, orderID, target, reason string) (domain.Order, error) {
	order, err := s.orders.GetByOrderID(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.workflow.Transition(ctx, workflow.EntityPayment, &order, target, workflow.Context{
		Reason: reason,
	}); err != nil {
		return domain.Order{}, err
	}

	if err := s.saveOrderWithRetry(&order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// resolveItems превращает запрошенные позиции в снимки с актуальной ценой.
func (s *Service) resolveItems(requested []validate.ItemInput) ([]domain.OrderItem, int64, error) {
	items := make([]domain.OrderItem, 0, len(requested))
	var subtotal int64

	for _, in := range requested {
		product, err := s.products.Get(in.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if err := s.rules.CheckStock(product, in.Qty); err != nil {
			return nil, 0, err
		}
		unit := product.EffectivePrice()
		item := domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: unit,
			Qty:       in.Qty,
			Subtotal:  unit * int64(in.Qty),
		}
		items = append(items, item)
		subtotal += item.Subtotal
	}
	return items, subtotal, nil
}

// compensateCreate удаляет только что созданную запись и сообщает о сбое.
func (s *Service) compensateCreate(order domain.Order, cause error) {
	if err := s.orders.Delete(order.ID); err != nil {
		s.logger.WithError(err).WithField("order_id", order.OrderID).Error("compensating delete failed")
	}
	s.emitter.Emit("businessError", map[string]any{
		"orderId": order.OrderID,
		"op":      "createOrder",
		"error":   cause.Error(),
	})
	s.logger.WithError(cause).WithField("order_id", order.OrderID).Warn("order creation rolled back")
}

// saveOrderWithRetry сохраняет заказ, при конфликте версий перечитывая свежую
// запись и перенося на неё уже применённые изменения статусов.
func (s *Service) saveOrderWithRetry(order *domain.Order) error {
	for attempt := 0; attempt < saveMaxRetries; attempt++ {
		order.UpdatedAt = s.now().UTC()
		prevVersion := order.Version

		err := s.orders.Save(*order)
		if err == nil {
			order.Version = prevVersion + 1
			return nil
		}
		if !domain.IsVersionConflict(err) || attempt == saveMaxRetries-1 {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.OrderID,
				"attempt":  attempt + 1,
			}).Error("failed to persist order")
			return err
		}

		fresh, loadErr := s.orders.Get(order.ID)
		if loadErr != nil {
			return loadErr
		}
		// Переносим применённые изменения без повтора побочных эффектов.
		fresh.Status = order.Status
		fresh.PaymentStatus = order.PaymentStatus
		fresh.Notes = order.Notes
		*order = fresh

		s.logger.WithFields(log.Fields{
			"order_id": order.OrderID,
			"attempt":  attempt + 1,
		}).Warn("version conflict detected, retrying")
		time.Sleep(saveBaseDelay * time.Duration(1<<uint(attempt)))
	}
	return domain.ErrOrderVersionConflict
}

// sequenceSource считает дневную последовательность по обеим коллекциям и
// проверяет занятость номера в обеих.
type sequenceSource struct {
	orders  domain.OrderRepository
	customs domain.CustomOrderRepository
}

func (s *sequenceSource) CountForDate(_ orderid.Type, date time.Time) (int, error) {
	standard, err := s.orders.CountByCreatedDate(date)
	if err != nil {
		return 0, err
	}
	custom, err := s.customs.CountByCreatedDate(date)
	if err != nil {
		return 0, err
	}
	return standard + custom, nil
}

func (s *sequenceSource) Exists(orderID string) (bool, error) {
	taken, err := s.orders.ExistsOrderID(orderID)
	if err != nil {
		return false, err
	}
	if taken {
		return true, nil
	}
	return s.customs.ExistsOrderID(orderID)
}

var _ orderid.SequenceSource = (*sequenceSource)(nil)
