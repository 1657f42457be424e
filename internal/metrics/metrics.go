// Package metrics exposes engine counters over Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics and implements engine.Metrics.
type Metrics struct {
	registry *prometheus.Registry

	framesProcessed prometheus.Counter
	detectionsSeen  *prometheus.CounterVec
	rulePositives   *prometheus.CounterVec
	alertsApproved  *prometheus.CounterVec
	notifyErrors    prometheus.Counter
	regionsGauge    prometheus.Gauge
}

// New creates and registers the metric set.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		framesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vigil_frames_processed_total",
			Help: "Total frames processed by the rule engine",
		}),
		detectionsSeen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_detections_total",
			Help: "Total detections evaluated, by object class",
		}, []string{"class"}),
		rulePositives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_rule_positive_total",
			Help: "Total rule-positive evaluations, sent or suppressed",
		}, []string{"rule"}),
		alertsApproved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_alerts_approved_total",
			Help: "Total alerts approved by the debounce gate, delivered or not",
		}, []string{"rule"}),
		notifyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vigil_notify_errors_total",
			Help: "Total notification delivery failures",
		}),
		regionsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vigil_regions_configured",
			Help: "Number of configured regions of interest",
		}),
	}

	m.registry.MustRegister(
		m.framesProcessed,
		m.detectionsSeen,
		m.rulePositives,
		m.alertsApproved,
		m.notifyErrors,
		m.regionsGauge,
	)
	return m
}

// SetRegions records the configured region count.
func (m *Metrics) SetRegions(n int) { m.regionsGauge.Set(float64(n)) }

// FrameProcessed implements engine.Metrics.
func (m *Metrics) FrameProcessed() { m.framesProcessed.Inc() }

// DetectionSeen implements engine.Metrics.
func (m *Metrics) DetectionSeen(class string) { m.detectionsSeen.WithLabelValues(class).Inc() }

// RulePositive implements engine.Metrics.
func (m *Metrics) RulePositive(ruleName string) { m.rulePositives.WithLabelValues(ruleName).Inc() }

// AlertApproved implements engine.Metrics.
func (m *Metrics) AlertApproved(ruleName string) { m.alertsApproved.WithLabelValues(ruleName).Inc() }

// NotifyError implements engine.Metrics.
func (m *Metrics) NotifyError() { m.notifyErrors.Inc() }

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
