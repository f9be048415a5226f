package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics covers the admin write path, storefront views, the outbox
// relay and HTTP traffic. Every method is safe on a nil receiver.
type CatalogMetrics struct {
	validationFailures *prometheus.CounterVec
	writes             *prometheus.CounterVec
	views              *prometheus.CounterVec
	outboxPublished    *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	m := &CatalogMetrics{
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Product fields rejected by validation.",
		}, []string{"field"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "Committed admin writes by entity and operation.",
		}, []string{"entity", "op"}),
		views: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_views_total",
			Help:      "Storefront product views by outcome.",
		}, []string{"outcome"}),
		outboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "events_total",
			Help:      "Outbox events handled by the relay.",
		}, []string{"event_type", "result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.validationFailures, m.writes, m.views, m.outboxPublished, m.httpDuration)
	return m
}

// ObserveValidation counts one failure per rejected field path.
func (m *CatalogMetrics) ObserveValidation(fields []string) {
	if m == nil || m.validationFailures == nil {
		return
	}
	for _, field := range fields {
		m.validationFailures.WithLabelValues(normalizeLabel(field)).Inc()
	}
}

func (m *CatalogMetrics) IncWrite(entity, op string) {
	if m == nil || m.writes == nil {
		return
	}
	m.writes.WithLabelValues(normalizeLabel(entity), normalizeLabel(op)).Inc()
}

// IncView records a storefront view; counted is false for de-duplicated hits.
func (m *CatalogMetrics) IncView(counted bool) {
	if m == nil || m.views == nil {
		return
	}
	outcome := "deduped"
	if counted {
		outcome = "counted"
	}
	m.views.WithLabelValues(outcome).Inc()
}

func (m *CatalogMetrics) IncOutbox(eventType, result string) {
	if m == nil || m.outboxPublished == nil {
		return
	}
	m.outboxPublished.WithLabelValues(normalizeLabel(eventType), normalizeLabel(result)).Inc()
}

func (m *CatalogMetrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil || m.httpDuration == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(d.Seconds())
}
