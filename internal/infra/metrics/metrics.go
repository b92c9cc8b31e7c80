package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "faq"

// Metrics owns the Prometheus registry and every instrument the service
// records into. It satisfies query.MetricsRecorder.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	queryConfidence prometheus.Histogram
	answerSource    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	embeddings      *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		queryConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_confidence",
			Help:      "Confidence score distribution for processed queries.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		answerSource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answers by source (semantic_match or fallback).",
		}, []string{"source"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recency_cache_lookups_total",
			Help:      "Recency cache lookups by result.",
		}, []string{"result"}),
		embeddings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_requests_total",
			Help:      "Embedding provider calls by outcome.",
		}, []string{"outcome"}),
	}
	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.queryConfidence,
		m.answerSource,
		m.cacheLookups,
		m.embeddings,
	)
	return m
}

// RecordQuery observes one processed query.
func (m *Metrics) RecordQuery(confidence float64, source string) {
	m.queryConfidence.Observe(confidence)
	m.answerSource.WithLabelValues(source).Inc()
}

// RecordCacheLookup counts a recency cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordEmbedding counts an embedding provider call outcome.
func (m *Metrics) RecordEmbedding(outcome string) {
	m.embeddings.WithLabelValues(outcome).Inc()
}

// RecordHTTP observes one served HTTP request.
func (m *Metrics) RecordHTTP(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler exposes the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
