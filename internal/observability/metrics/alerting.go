// Package metrics provides Prometheus collectors for the alerting engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AlertingMetrics contains Prometheus metrics for alert evaluation cycles.
type AlertingMetrics struct {
	registry *prometheus.Registry

	cyclesTotal             *prometheus.CounterVec
	cycleDuration           prometheus.Histogram
	candidatesCheckedTotal  *prometheus.CounterVec
	triggersRecordedTotal   *prometheus.CounterVec
	triggersDedupedTotal    *prometheus.CounterVec
	notificationsSentTotal  *prometheus.CounterVec
	evaluatorErrorsTotal    *prometheus.CounterVec
	pendingTriggersGauge    prometheus.Gauge

	collectors []prometheus.Collector
}

// NewAlertingMetrics creates and registers the alerting metrics.
func NewAlertingMetrics(registry *prometheus.Registry) (*AlertingMetrics, error) {
	m := &AlertingMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *AlertingMetrics) initMetrics() error {
	m.cyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerting_cycles_total",
			Help: "Total number of evaluation cycles by outcome",
		},
		[]string{"status"},
	)

	m.cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alerting_cycle_duration_seconds",
			Help:    "Duration of one evaluation cycle in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	m.candidatesCheckedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerting_candidates_checked_total",
			Help: "Total number of candidate evaluations by rule kind",
		},
		[]string{"kind"},
	)

	m.triggersRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerting_triggers_recorded_total",
			Help: "Total number of newly recorded triggers by rule kind",
		},
		[]string{"kind"},
	)

	m.triggersDedupedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerting_triggers_deduped_total",
			Help: "Total number of candidate triggers suppressed as duplicates",
		},
		[]string{"kind"},
	)

	m.notificationsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerting_notifications_sent_total",
			Help: "Total number of notification emails by delivery status",
		},
		[]string{"status"},
	)

	m.evaluatorErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerting_evaluator_errors_total",
			Help: "Total number of evaluator failures by rule kind",
		},
		[]string{"kind"},
	)

	m.pendingTriggersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "alerting_pending_triggers",
			Help: "Unsent triggers observed at the start of the last cycle",
		},
	)

	m.collectors = []prometheus.Collector{
		m.cyclesTotal,
		m.cycleDuration,
		m.candidatesCheckedTotal,
		m.triggersRecordedTotal,
		m.triggersDedupedTotal,
		m.notificationsSentTotal,
		m.evaluatorErrorsTotal,
		m.pendingTriggersGauge,
	}
	return nil
}

// Describe implements the Collector interface
func (m *AlertingMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *AlertingMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordCycle counts one completed cycle and its duration.
func (m *AlertingMetrics) RecordCycle(status string, seconds float64) {
	m.cyclesTotal.WithLabelValues(status).Inc()
	m.cycleDuration.Observe(seconds)
}

// RecordCandidatesChecked adds to the candidate-evaluation counter.
func (m *AlertingMetrics) RecordCandidatesChecked(kind string, n int) {
	m.candidatesCheckedTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordTriggerRecorded counts one newly recorded trigger.
func (m *AlertingMetrics) RecordTriggerRecorded(kind string) {
	m.triggersRecordedTotal.WithLabelValues(kind).Inc()
}

// RecordTriggerDeduped counts one duplicate-suppressed candidate.
func (m *AlertingMetrics) RecordTriggerDeduped(kind string) {
	m.triggersDedupedTotal.WithLabelValues(kind).Inc()
}

// RecordNotification counts one notification email by status ("sent" or
// "failed").
func (m *AlertingMetrics) RecordNotification(status string) {
	m.notificationsSentTotal.WithLabelValues(status).Inc()
}

// RecordEvaluatorError counts one evaluator failure.
func (m *AlertingMetrics) RecordEvaluatorError(kind string) {
	m.evaluatorErrorsTotal.WithLabelValues(kind).Inc()
}

// SetPendingTriggers records the backlog observed at cycle start.
func (m *AlertingMetrics) SetPendingTriggers(n int) {
	m.pendingTriggersGauge.Set(float64(n))
}
