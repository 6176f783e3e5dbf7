package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics содержит метрики переходов заказов по машинам состояний.
type WorkflowMetrics struct {
	// Счётчики переходов по типу сущности
	transitionsStarted   *prometheus.CounterVec
	transitionsCompleted *prometheus.CounterVec
	transitionsFailed    *prometheus.CounterVec

	// Нарушения бизнес-правил по имени правила
	ruleViolations *prometheus.CounterVec

	// Гистограммы времени выполнения
	transitionDuration *prometheus.HistogramVec

	// Счётчики событий
	eventsEmitted    prometheus.Counter
	stockAdjustments prometheus.Counter
	timelineEvents   prometheus.Counter
	outboxEvents     prometheus.Counter

	// Gauge для активных переходов
	activeTransitions prometheus.Gauge
}

// NewWorkflowMetrics создаёт новый экземпляр метрик workflow.
func NewWorkflowMetrics() *WorkflowMetrics {
	return newWorkflowMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newWorkflowMetricsWithRegisterer(registerer prometheus.Registerer) *WorkflowMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &WorkflowMetrics{
		transitionsStarted: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bakeshop_workflow_transitions_started_total",
			Help: "Total number of workflow transitions started",
		}, []string{"entity_type"}),
		transitionsCompleted: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bakeshop_workflow_transitions_completed_total",
			Help: "Total number of workflow transitions completed successfully",
		}, []string{"entity_type", "to_state"}),
		transitionsFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bakeshop_workflow_transitions_failed_total",
			Help: "Total number of workflow transitions rejected or failed",
		}, []string{"entity_type"}),
		ruleViolations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bakeshop_rule_violations_total",
			Help: "Total number of business rule violations",
		}, []string{"rule"}),
		transitionDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "bakeshop_workflow_transition_duration_seconds",
			Help:    "Duration of workflow transitions in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"entity_type"}),
		eventsEmitted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "bakeshop_events_emitted_total",
			Help: "Total number of domain events emitted",
		}),
		stockAdjustments: registerCounter(registerer, prometheus.CounterOpts{
			Name: "bakeshop_stock_adjustments_total",
			Help: "Total number of atomic stock adjustments applied",
		}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "bakeshop_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "bakeshop_outbox_events_total",
			Help: "Total number of outbox events published",
		}),
		activeTransitions: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "bakeshop_active_transitions",
			Help: "Number of currently executing workflow transitions",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordTransitionStarted увеличивает счётчик начатых переходов.
func (m *WorkflowMetrics) RecordTransitionStarted(entityType string) {
	m.transitionsStarted.WithLabelValues(entityType).Inc()
	m.activeTransitions.Inc()
}

// RecordTransitionCompleted увеличивает счётчик успешных переходов.
func (m *WorkflowMetrics) RecordTransitionCompleted(entityType, toState string) {
	m.transitionsCompleted.WithLabelValues(entityType, toState).Inc()
	m.activeTransitions.Dec()
}

// RecordTransitionFailed увеличивает счётчик отклонённых переходов.
func (m *WorkflowMetrics) RecordTransitionFailed(entityType string) {
	m.transitionsFailed.WithLabelValues(entityType).Inc()
	m.activeTransitions.Dec()
}

// RecordRuleViolation увеличивает счётчик нарушений по имени правила.
func (m *WorkflowMetrics) RecordRuleViolation(rule string) {
	m.ruleViolations.WithLabelValues(rule).Inc()
}

// RecordTransitionDuration записывает время выполнения перехода.
func (m *WorkflowMetrics) RecordTransitionDuration(entityType string, duration time.Duration) {
	m.transitionDuration.WithLabelValues(entityType).Observe(duration.Seconds())
}

// RecordEventEmitted увеличивает счётчик доменных событий.
func (m *WorkflowMetrics) RecordEventEmitted() {
	m.eventsEmitted.Inc()
}

// RecordStockAdjustment увеличивает счётчик атомарных изменений остатков.
func (m *WorkflowMetrics) RecordStockAdjustment() {
	m.stockAdjustments.Inc()
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *WorkflowMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *WorkflowMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
