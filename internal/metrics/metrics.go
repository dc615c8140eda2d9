package metrics

import (
	"net/http"
	"sync"
	"time"

	"basegraph.app/helpdesk/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portal"

// Metrics groups the portal's Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	submitted     *prometheus.CounterVec
	bridgeSync    *prometheus.CounterVec
	helpdeskCalls *prometheus.CounterVec
	helpdeskTime  *prometheus.HistogramVec
}

var (
	defaultOnce sync.Once
	defaultInst *Metrics
)

// Default returns the process-wide collectors registered with the default registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultInst = New(prometheus.DefaultRegisterer)
	})
	return defaultInst
}

// New registers a fresh set of collectors with reg. Tests pass their own registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		submitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "submitted_total",
			Help:      "Support requests persisted, labeled by category slug",
		}, []string{"category"}),
		bridgeSync: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "helpdesk_sync_total",
			Help:      "Helpdesk sync outcomes for persisted requests",
		}, []string{"result"}),
		helpdeskCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "helpdesk",
			Name:      "calls_total",
			Help:      "Outbound helpdesk API calls, labeled by operation and outcome",
		}, []string{"operation", "outcome"}),
		helpdeskTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "helpdesk",
			Name:      "call_duration_seconds",
			Help:      "Latency of outbound helpdesk API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (m *Metrics) RecordSubmitted(category string) {
	if m == nil {
		return
	}
	label, err := common.Slugify(category, "unknown")
	if err != nil {
		label = "unknown"
	}
	m.submitted.WithLabelValues(label).Inc()
}

func (m *Metrics) RecordBridgeSync(synced bool) {
	if m == nil {
		return
	}
	result := "synced"
	if !synced {
		result = "failed"
	}
	m.bridgeSync.WithLabelValues(result).Inc()
}

// ObserveHelpdeskCall starts timing one outbound call. The returned func records the outcome.
func (m *Metrics) ObserveHelpdeskCall(operation string) func(outcome string) {
	if m == nil {
		return func(string) {}
	}
	start := time.Now()
	return func(outcome string) {
		m.helpdeskTime.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		m.helpdeskCalls.WithLabelValues(operation, outcome).Inc()
	}
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
