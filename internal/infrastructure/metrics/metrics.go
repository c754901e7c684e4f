package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace    = "supplylens"
	notFoundPath = "/not-found"
)

var defaultBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30}

// Metrics owns a private registry with the HTTP, extraction and cache collectors.
// It satisfies the extraction and supplier observers of the use case layer.
type Metrics struct {
	registry         *prometheus.Registry
	requestDuration  *prometheus.HistogramVec
	strategyAttempts *prometheus.CounterVec
	strategyDuration *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
}

// New creates the collectors and registers them with a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent serving an HTTP route",
			Buckets:   defaultBuckets,
		}, []string{"code", "method", "path"}),
		strategyAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_strategy_attempts_total",
			Help:      "Extraction strategy attempts by outcome",
		}, []string{"strategy", "outcome"}),
		strategyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_strategy_duration_seconds",
			Help:      "Time spent in one extraction strategy",
			Buckets:   defaultBuckets,
		}, []string{"strategy"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "supplier_cache_lookups_total",
			Help:      "Supplier result cache lookups by result",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.strategyAttempts,
		m.strategyDuration,
		m.cacheLookups,
	)
	return m
}

// Registry exposes the registry, for tests and custom collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records the latency of every routed request.
// Unmatched routes share one label to bound cardinality.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = notFoundPath
		}
		m.requestDuration.
			WithLabelValues(strconv.Itoa(c.Writer.Status()), c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

// ObserveStrategy records one extraction strategy attempt
func (m *Metrics) ObserveStrategy(strategy, outcome string, elapsed time.Duration) {
	m.strategyAttempts.WithLabelValues(strategy, outcome).Inc()
	m.strategyDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// ObserveCacheLookup records a supplier cache hit or miss
func (m *Metrics) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
