package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bakeshop/internal/domain"
	"github.com/vladislavdragonenkov/bakeshop/internal/events"
	"github.com/vladislavdragonenkov/bakeshop/internal/metrics"
	"github.com/vladislavdragonenkov/bakeshop/internal/rules"
	"github.com/vladislavdragonenkov/bakeshop/internal/service/order"
	"github.com/vladislavdragonenkov/bakeshop/internal/service/payment"
	"github.com/vladislavdragonenkov/bakeshop/internal/storage/postgres"
	"github.com/vladislavdragonenkov/bakeshop/internal/workflow"
)

// Dependencies содержит собранный граф зависимостей приложения.
type Dependencies struct {
	Orders   domain.OrderRepository
	Customs  domain.CustomOrderRepository
	Products domain.ProductRepository
	Outbox   domain.OutboxRepository
	Timeline domain.TimelineRepository

	Gateway domain.PaymentGateway
	Engine  *rules.Engine
	Emitter *events.Emitter
	Metrics *metrics.WorkflowMetrics
	Manager *workflow.Manager
	Service *order.Service

	// Store не nil только при postgres-драйвере; нужен для ping и Close.
	Store  *postgres.Store
	Logger *log.Entry
}

// NewDependencies создаёт и связывает все зависимости приложения: хранилище,
// движок правил, workflow-менеджер и сервис заказов. Каждое доменное событие
// через catch-all подписчиков попадает в outbox и в timeline заказа.
// NOTE: платёжный шлюз пока mock; в production его заменяет клиент реального
// шлюза, реализующий domain.PaymentGateway.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	storage, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	engine := rules.NewEngine(rules.DefaultConfig())
	emitter := events.NewEmitter(logger)
	workflowMetrics := metrics.NewWorkflowMetrics()
	gateway := payment.NewMockGateway()
	// Демо-шлюз считает любую онлайн-оплату подтверждённой, иначе заказы
	// с PaymentMethodOnline нельзя было бы провести без реального шлюза.
	gateway.DefaultStatus = domain.PaymentStatusPaid

	emitter.SubscribeAll(events.NewOutboxRelay(storage.outbox, workflowMetrics, logger))
	emitter.SubscribeAll(events.NewTimelineRecorder(storage.timeline, workflowMetrics, logger))

	manager := workflow.NewManager(engine, storage.products, gateway, emitter, workflowMetrics, logger)
	service := order.NewService(
		storage.orders,
		storage.customs,
		storage.products,
		engine,
		manager,
		emitter,
		logger,
	)

	return &Dependencies{
		Orders:   storage.orders,
		Customs:  storage.customs,
		Products: storage.products,
		Outbox:   storage.outbox,
		Timeline: storage.timeline,
		Gateway:  gateway,
		Engine:   engine,
		Emitter:  emitter,
		Metrics:  workflowMetrics,
		Manager:  manager,
		Service:  service,
		Store:    storage.store,
		Logger:   logger,
	}, nil
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d.Store != nil {
		return d.Store.Close()
	}
	return nil
}
