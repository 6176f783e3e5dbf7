// Пакет workflow реализует машины состояний жизненного цикла заказов:
// проверку легальности переходов, повторные проверки бизнес-правил перед
// входом в состояние и входные действия с побочными эффектами (сток, события).
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
	"github.com/vladislavdragonenkov/bakeshop/internal/events"
	"github.com/vladislavdragonenkov/bakeshop/internal/metrics"
	"github.com/vladislavdragonenkov/bakeshop/internal/rules"
)

// Manager исполняет переходы по графам состояний. Конструируется явно со
// всеми зависимостями; глобального состояния нет.
type Manager struct {
	rules    *rules.Engine
	products domain.ProductRepository
	gateway  domain.PaymentGateway
	emitter  *events.Emitter
	metrics  *metrics.WorkflowMetrics
	logger   *log.Entry
	graphs   map[string]graph
	now      func() time.Time
}

// NewManager создаёт менеджер переходов. gateway может быть nil — тогда
// проверка инициации онлайн-платежа пропускается.
func NewManager(
	engine *rules.Engine,
	products domain.ProductRepository,
	gateway domain.PaymentGateway,
	emitter *events.Emitter,
	workflowMetrics *metrics.WorkflowMetrics,
	logger *log.Entry,
) *Manager {
	m := &Manager{
		rules:    engine,
		products: products,
		gateway:  gateway,
		emitter:  emitter,
		metrics:  workflowMetrics,
		logger:   logger.WithField("component", "workflow_manager"),
		now:      time.Now,
	}
	m.graphs = m.buildGraphs()
	return m
}

// Transition переводит сущность в состояние target.
//
// Пустой текущий статус трактуется как первичный вход: проверки легальности
// пропускаются, но валидации и входные действия целевого состояния
// выполняются. Переход в текущее состояние — no-op.
func (m *Manager) Transition(ctx context.Context, entityType string, entity any, target string, tctx Context) error {
	g, ok := m.graphs[entityType]
	if !ok {
		return fmt.Errorf("unknown workflow %q", entityType)
	}

	current, err := statusOf(entityType, entity)
	if err != nil {
		return err
	}
	if current == target {
		return nil
	}

	started := m.now()
	m.metrics.RecordTransitionStarted(entityType)

	fail := func(err error) error {
		m.metrics.RecordTransitionFailed(entityType)
		var violation *domain.RuleViolationError
		if errors.As(err, &violation) {
			m.metrics.RecordRuleViolation(violation.Rule)
		}
		m.logger.WithFields(log.Fields{
			"entity_type": entityType,
			"from":        current,
			"to":          target,
		}).WithError(err).Warn("transition rejected")
		return err
	}

	targetState, ok := g[target]
	if !ok {
		return fail(&domain.InvalidStateError{EntityType: entityType, State: target})
	}

	if current != "" {
		currentState, ok := g[current]
		if !ok {
			return fail(&domain.InvalidStateError{EntityType: entityType, State: current})
		}
		if currentState.terminal || !contains(currentState.allowed, target) {
			return fail(&domain.IllegalTransitionError{EntityType: entityType, From: current, To: target})
		}
		// Сверка с таблицей движка правил: расхождение — дефект конфигурации.
		if !m.rules.CanTransition(entityType, current, target) {
			return fail(&domain.RuleViolationError{
				Rule:    rules.RuleStatusTransition,
				Message: fmt.Sprintf("transition %s -> %s rejected by rule table", current, target),
			})
		}
		if currentState.onExit != nil {
			if err := currentState.onExit(ctx, entity, &tctx); err != nil {
				return fail(err)
			}
		}
	}

	for _, kind := range targetState.validations {
		if err := m.runValidation(ctx, kind, entityType, entity); err != nil {
			return fail(err)
		}
	}

	tctx.Previous = current
	if tctx.Timestamp.IsZero() {
		tctx.Timestamp = m.now().UTC()
	}
	setStatus(entityType, entity, target)

	if targetState.onEnter != nil {
		if err := targetState.onEnter(ctx, entity, &tctx); err != nil {
			setStatus(entityType, entity, current)
			return fail(err)
		}
	}

	m.emitTransitionEvents(entityType, entity, current, target, tctx)

	m.metrics.RecordTransitionCompleted(entityType, target)
	m.metrics.RecordTransitionDuration(entityType, m.now().Sub(started))
	m.logger.WithFields(log.Fields{
		"entity_type": entityType,
		"from":        current,
		"to":          target,
		"reason":      tctx.Reason,
	}).Info("transition completed")
	return nil
}

// CanTransition отвечает, допустим ли переход; никогда не возвращает ошибку.
func (m *Manager) CanTransition(entityType, from, to string) bool {
	g, ok := m.graphs[entityType]
	if !ok {
		return false
	}
	st, ok := g[from]
	if !ok {
		return false
	}
	return contains(st.allowed, to)
}

// NextStates возвращает допустимые целевые состояния; nil для неизвестных.
func (m *Manager) NextStates(entityType, from string) []string {
	g, ok := m.graphs[entityType]
	if !ok {
		return nil
	}
	st, ok := g[from]
	if !ok {
		return nil
	}
	out := make([]string, len(st.allowed))
	copy(out, st.allowed)
	return out
}

// Входные действия состояний.

// orderConfirmedEnter атомарно списывает сток по каждой позиции. Частичный
// провал откатывает уже применённые списания, заказ остаётся без изменений.
func (m *Manager) orderConfirmedEnter(ctx context.Context, entity any, tctx *Context) error {
	order := entity.(*domain.Order)

	applied := make([]domain.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		updated, err := m.products.AdjustStock(item.ProductID, -item.Qty, int64(item.Qty))
		if err != nil {
			m.rollbackStock(applied)
			return &domain.SideEffectError{Op: "stockDecrement", Err: err}
		}
		m.metrics.RecordStockAdjustment()
		applied = append(applied, item)
		m.checkStockThresholds(updated)
	}
	return nil
}

// orderCancelledEnter возвращает сток только если он был списан: отмена из
// pending ничего не восстанавливает.
func (m *Manager) orderCancelledEnter(ctx context.Context, entity any, tctx *Context) error {
	order := entity.(*domain.Order)

	if tctx.Previous != "confirmed" && tctx.Previous != "preparing" {
		return nil
	}
	for _, item := range order.Items {
		if _, err := m.products.AdjustStock(item.ProductID, item.Qty, -int64(item.Qty)); err != nil {
			return &domain.SideEffectError{Op: "stockRestore", Err: err}
		}
		m.metrics.RecordStockAdjustment()
	}
	m.emit("stockRestored", map[string]any{
		"orderId": order.OrderID,
		"reason":  tctx.Reason,
	})
	return nil
}

// customConfirmedEnter рассчитывает предоплату, если она требуется и ещё
// не выставлялась персоналом вручную.
func (m *Manager) customConfirmedEnter(ctx context.Context, entity any, tctx *Context) error {
	custom := entity.(*domain.CustomOrder)

	if custom.AdvanceStatus != "" && custom.AdvanceStatus != domain.AdvanceNotRequired {
		return nil
	}
	if m.rules.AdvanceRequired(custom.EstimatedPrice, custom.Requirements, custom.CakeSize) {
		custom.AdvanceAmount = m.rules.AdvanceAmount(custom.EstimatedPrice)
		custom.AdvanceStatus = domain.AdvancePending
		return nil
	}
	custom.AdvanceAmount = 0
	custom.AdvanceStatus = domain.AdvanceNotRequired
	return nil
}

// customCancelledEnter инициирует возврат предоплаты, если она была получена.
func (m *Manager) customCancelledEnter(ctx context.Context, entity any, tctx *Context) error {
	custom := entity.(*domain.CustomOrder)

	if custom.AdvanceStatus == domain.AdvancePaid {
		m.emit("advanceRefundInitiated", map[string]any{
			"orderId": custom.OrderID,
			"amount":  custom.AdvanceAmount,
			"reason":  tctx.Reason,
		})
	}
	return nil
}

func (m *Manager) rollbackStock(applied []domain.OrderItem) {
	for _, item := range applied {
		if _, err := m.products.AdjustStock(item.ProductID, item.Qty, -int64(item.Qty)); err != nil {
			m.logger.WithFields(log.Fields{
				"product_id": item.ProductID,
				"qty":        item.Qty,
			}).WithError(err).Error("stock rollback failed")
		}
	}
}

func (m *Manager) checkStockThresholds(product domain.Product) {
	if product.OrderOnly {
		return
	}
	switch {
	case product.StockQuantity == 0:
		m.emit("stockOut", map[string]any{
			"productId": product.ID,
			"name":      product.Name,
		})
	case product.StockQuantity <= product.LowStockThreshold:
		m.emit("stockLow", map[string]any{
			"productId": product.ID,
			"name":      product.Name,
			"remaining": product.StockQuantity,
		})
	}
}

func (m *Manager) emitTransitionEvents(entityType string, entity any, from, to string, tctx Context) {
	data := map[string]any{
		"orderId":  publicID(entityType, entity),
		"from":     from,
		"to":       to,
		"reason":   tctx.Reason,
		"actor":    tctx.Actor,
		"occurred": tctx.Timestamp,
	}
	for k, v := range tctx.Data {
		data[k] = v
	}

	m.emit(eventName(entityType, to), data)
	m.emit("stateTransition", data)
}

func (m *Manager) emit(name string, data map[string]any) {
	m.emitter.Emit(name, data)
	m.metrics.RecordEventEmitted()
}

// eventName строит имя события вида orderConfirmed / customOrderInProgress.
func eventName(entityType, state string) string {
	var b strings.Builder
	b.WriteString(entityType)
	for _, part := range strings.Split(state, "-") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// statusOf извлекает текущий статус сущности для графа entityType.
// Граф payment работает по статусу оплаты стандартного заказа.
func statusOf(entityType string, entity any) (string, error) {
	switch entityType {
	case EntityOrder:
		order, ok := entity.(*domain.Order)
		if !ok {
			return "", fmt.Errorf("order workflow expects *domain.Order, got %T", entity)
		}
		return string(order.Status), nil
	case EntityCustomOrder:
		custom, ok := entity.(*domain.CustomOrder)
		if !ok {
			return "", fmt.Errorf("custom order workflow expects *domain.CustomOrder, got %T", entity)
		}
		return string(custom.Status), nil
	case EntityPayment:
		order, ok := entity.(*domain.Order)
		if !ok {
			return "", fmt.Errorf("payment workflow expects *domain.Order, got %T", entity)
		}
		return string(order.PaymentStatus), nil
	default:
		return "", fmt.Errorf("unknown workflow %q", entityType)
	}
}

func setStatus(entityType string, entity any, status string) {
	switch entityType {
	case EntityOrder:
		entity.(*domain.Order).Status = domain.OrderStatus(status)
	case EntityCustomOrder:
		entity.(*domain.CustomOrder).Status = domain.CustomOrderStatus(status)
	case EntityPayment:
		entity.(*domain.Order).PaymentStatus = domain.PaymentStatus(status)
	}
}

func publicID(entityType string, entity any) string {
	switch e := entity.(type) {
	case *domain.Order:
		return e.OrderID
	case *domain.CustomOrder:
		return e.OrderID
	default:
		return ""
	}
}

func contains(states []string, target string) bool {
	for _, s := range states {
		if s == target {
			return true
		}
	}
	return false
}
