package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewWorkflowMetrics(t *testing.T) {
	metrics := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newWorkflowMetricsWithRegisterer should not return nil")
	}

	if metrics.transitionsStarted == nil {
		t.Error("transitionsStarted counter vec should not be nil")
	}

	if metrics.transitionsCompleted == nil {
		t.Error("transitionsCompleted counter vec should not be nil")
	}

	if metrics.transitionsFailed == nil {
		t.Error("transitionsFailed counter vec should not be nil")
	}

	if metrics.ruleViolations == nil {
		t.Error("ruleViolations counter vec should not be nil")
	}

	if metrics.transitionDuration == nil {
		t.Error("transitionDuration histogram vec should not be nil")
	}

	if metrics.eventsEmitted == nil {
		t.Error("eventsEmitted counter should not be nil")
	}

	if metrics.stockAdjustments == nil {
		t.Error("stockAdjustments counter should not be nil")
	}

	if metrics.activeTransitions == nil {
		t.Error("activeTransitions gauge should not be nil")
	}
}

func TestNewWorkflowMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newWorkflowMetricsWithRegisterer(reg)
	second := newWorkflowMetricsWithRegisterer(reg)

	// Повторная регистрация возвращает существующие коллекторы.
	if first.eventsEmitted != second.eventsEmitted {
		t.Error("expected existing counter to be reused on double registration")
	}
}

func TestRecordTransitionStarted(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newWorkflowMetricsWithRegisterer(reg)

	metrics.RecordTransitionStarted("order")
	metrics.RecordTransitionStarted("order")
	metrics.RecordTransitionStarted("payment")

	metric := &dto.Metric{}
	counter := metrics.transitionsStarted.WithLabelValues("order")
	if err := counter.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected counter value 2.0, got %f", metric.Counter.GetValue())
	}

	gaugeMetric := &dto.Metric{}
	if err := metrics.activeTransitions.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}

	if gaugeMetric.Gauge.GetValue() != 3.0 {
		t.Errorf("expected 3 active transitions, got %f", gaugeMetric.Gauge.GetValue())
	}
}

func TestTransitionLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newWorkflowMetricsWithRegisterer(reg)

	metrics.RecordTransitionStarted("order")
	metrics.RecordTransitionCompleted("order", "confirmed")

	metrics.RecordTransitionStarted("order")
	metrics.RecordTransitionFailed("order")

	gaugeMetric := &dto.Metric{}
	if err := metrics.activeTransitions.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}

	if gaugeMetric.Gauge.GetValue() != 0.0 {
		t.Errorf("expected 0 active transitions, got %f", gaugeMetric.Gauge.GetValue())
	}

	completedMetric := &dto.Metric{}
	counter := metrics.transitionsCompleted.WithLabelValues("order", "confirmed")
	if err := counter.Write(completedMetric); err != nil {
		t.Fatalf("failed to write completed metric: %v", err)
	}

	if completedMetric.Counter.GetValue() != 1.0 {
		t.Errorf("expected 1 completed transition, got %f", completedMetric.Counter.GetValue())
	}
}

func TestRecordRuleViolation(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newWorkflowMetricsWithRegisterer(reg)

	metrics.RecordRuleViolation("stockAvailability")
	metrics.RecordRuleViolation("stockAvailability")
	metrics.RecordRuleViolation("minimumAdvanceNotice")

	metric := &dto.Metric{}
	counter := metrics.ruleViolations.WithLabelValues("stockAvailability")
	if err := counter.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordTransitionDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newWorkflowMetricsWithRegisterer(reg)

	metrics.RecordTransitionDuration("order", 100*time.Millisecond)
	metrics.RecordTransitionDuration("order", 500*time.Millisecond)
	metrics.RecordTransitionDuration("order", 1*time.Second)

	observer := metrics.transitionDuration.WithLabelValues("order")
	metric := &dto.Metric{}
	if err := observer.(prometheus.Histogram).Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Histogram.GetSampleCount() != 3 {
		t.Errorf("expected 3 samples, got %d", metric.Histogram.GetSampleCount())
	}

	// Сумма примерно 0.1 + 0.5 + 1.0 = 1.6
	sum := metric.Histogram.GetSampleSum()
	if sum < 1.5 || sum > 1.7 {
		t.Errorf("expected sum around 1.6, got %f", sum)
	}
}

func TestRecordEventCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newWorkflowMetricsWithRegisterer(reg)

	metrics.RecordEventEmitted()
	metrics.RecordEventEmitted()
	metrics.RecordStockAdjustment()
	metrics.RecordTimelineEvent()
	metrics.RecordOutboxEvent()
	metrics.RecordOutboxEvent()
	metrics.RecordOutboxEvent()

	checks := []struct {
		name    string
		counter prometheus.Counter
		want    float64
	}{
		{"eventsEmitted", metrics.eventsEmitted, 2.0},
		{"stockAdjustments", metrics.stockAdjustments, 1.0},
		{"timelineEvents", metrics.timelineEvents, 1.0},
		{"outboxEvents", metrics.outboxEvents, 3.0},
	}

	for _, check := range checks {
		metric := &dto.Metric{}
		if err := check.counter.Write(metric); err != nil {
			t.Fatalf("failed to write %s: %v", check.name, err)
		}
		if metric.Counter.GetValue() != check.want {
			t.Errorf("%s = %f, want %f", check.name, metric.Counter.GetValue(), check.want)
		}
	}
}
