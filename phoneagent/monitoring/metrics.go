package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	StageRaw        = "raw"
	StageCompressed = "compressed"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	ActionsTotal          *prometheus.CounterVec
	ActionDuration        *prometheus.HistogramVec
	SessionEstablishments *prometheus.CounterVec
	CaptureBytes          *prometheus.HistogramVec
}

// NewMetrics creates a new metrics collector on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iphone_use_actions_total",
				Help: "Total number of action calls by outcome",
			},
			[]string{"action", "outcome"},
		),
		ActionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "iphone_use_action_duration_seconds",
				Help:    "Action call duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"action"},
		),
		SessionEstablishments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iphone_use_session_establishments_total",
				Help: "Device session establishment attempts by outcome",
			},
			[]string{"outcome"},
		),
		CaptureBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "iphone_use_capture_bytes",
				Help:    "Screen capture payload size in bytes",
				Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
			},
			[]string{"stage"},
		),
	}
}

// RecordAction records one action call. Safe on a nil receiver.
func (m *Metrics) RecordAction(action string, failed bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(action, outcome(failed)).Inc()
	m.ActionDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordSessionEstablishment records one establishment attempt. Safe on a nil receiver.
func (m *Metrics) RecordSessionEstablishment(failed bool) {
	if m == nil {
		return
	}
	m.SessionEstablishments.WithLabelValues(outcome(failed)).Inc()
}

// RecordCapture records raw and compressed sizes. Safe on a nil receiver.
func (m *Metrics) RecordCapture(rawBytes, compressedBytes int) {
	if m == nil {
		return
	}
	m.CaptureBytes.WithLabelValues(StageRaw).Observe(float64(rawBytes))
	m.CaptureBytes.WithLabelValues(StageCompressed).Observe(float64(compressedBytes))
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(failed bool) string {
	if failed {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
