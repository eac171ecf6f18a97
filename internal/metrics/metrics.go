package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Counter names that are persisted by the Collector
const (
	counterSearches      = "searches"
	counterResultViews   = "result_views"
	counterSubscriptions = "subscriptions"
	counterBackendCalls  = "backend_calls"
	counterRateLimited   = "rate_limited"
)

// Metrics holds all Prometheus metrics for tweetsift-web
type Metrics struct {
	// HTTP front end
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	HTTPErrorsTotal            *prometheus.CounterVec

	// Backend API
	BackendCallsTotal          *prometheus.CounterVec
	BackendCallDurationSeconds *prometheus.HistogramVec

	// Flows
	SearchesTotal      *prometheus.CounterVec
	ResultViewsTotal   *prometheus.CounterVec
	SubscriptionsTotal *prometheus.CounterVec

	// Rate limiting
	RateLimitExceededTotal *prometheus.CounterVec

	// System metrics
	UptimeSeconds    prometheus.Gauge
	StorageUsedBytes prometheus.Gauge

	registry *prometheus.Registry

	mu        sync.RWMutex
	collector *Collector
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tweetsift_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tweetsift_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds, display delay included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tweetsift_http_errors_total",
				Help: "Total number of HTTP responses with status >= 400",
			},
			[]string{"error_type"},
		),
		BackendCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tweetsift_backend_calls_total",
				Help: "Total number of calls to the classification backend",
			},
			[]string{"endpoint", "outcome"},
		),
		BackendCallDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tweetsift_backend_call_duration_seconds",
				Help:    "Classification backend call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tweetsift_searches_total",
				Help: "Search form submissions by outcome",
			},
			[]string{"outcome"},
		),
		ResultViewsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tweetsift_result_views_total",
				Help: "Result page views by resolved state",
			},
			[]string{"state"},
		),
		SubscriptionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tweetsift_email_subscriptions_total",
				Help: "Email notification form submissions by outcome",
			},
			[]string{"outcome"},
		),
		RateLimitExceededTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tweetsift_ratelimit_exceeded_total",
				Help: "Requests rejected by the form rate limiter",
			},
			[]string{"route"},
		),
		UptimeSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tweetsift_uptime_seconds",
				Help: "Seconds since the process started",
			},
		),
		StorageUsedBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tweetsift_storage_used_bytes",
				Help: "Size of the metrics counter store",
			},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.HTTPErrorsTotal,
		m.BackendCallsTotal,
		m.BackendCallDurationSeconds,
		m.SearchesTotal,
		m.ResultViewsTotal,
		m.SubscriptionsTotal,
		m.RateLimitExceededTotal,
		m.UptimeSeconds,
		m.StorageUsedBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// persisted maps the persisted counter names to their vectors
func (m *Metrics) persisted() map[string]*prometheus.CounterVec {
	return map[string]*prometheus.CounterVec{
		counterSearches:      m.SearchesTotal,
		counterResultViews:   m.ResultViewsTotal,
		counterSubscriptions: m.SubscriptionsTotal,
		counterBackendCalls:  m.BackendCallsTotal,
		counterRateLimited:   m.RateLimitExceededTotal,
	}
}

func (m *Metrics) attach(c *Collector) {
	m.mu.Lock()
	m.collector = c
	m.mu.Unlock()
}

// inc bumps a persisted counter and mirrors it into the collector if any
func (m *Metrics) inc(name string, labels ...string) {
	vec, ok := m.persisted()[name]
	if !ok {
		return
	}
	vec.WithLabelValues(labels...).Inc()

	m.mu.RLock()
	c := m.collector
	m.mu.RUnlock()
	if c != nil {
		c.track(name, labels...)
	}
}

// SetGlobal sets the global metrics instance
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Global returns the global metrics instance
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}

// ObserveBackendCall records one call to the classification backend
func ObserveBackendCall(endpoint, outcome string, d time.Duration) {
	m := Global()
	if m != nil {
		m.inc(counterBackendCalls, endpoint, outcome)
		m.BackendCallDurationSeconds.WithLabelValues(endpoint).Observe(d.Seconds())
	}
}

// IncSearches counts a search form submission
func IncSearches(outcome string) {
	m := Global()
	if m != nil {
		m.inc(counterSearches, outcome)
	}
}

// IncResultViews counts a result page view by resolved state
func IncResultViews(state string) {
	m := Global()
	if m != nil {
		m.inc(counterResultViews, state)
	}
}

// IncSubscriptions counts an email form submission
func IncSubscriptions(outcome string) {
	m := Global()
	if m != nil {
		m.inc(counterSubscriptions, outcome)
	}
}

// IncRateLimitExceeded counts a request rejected by the rate limiter
func IncRateLimitExceeded(route string) {
	m := Global()
	if m != nil {
		m.inc(counterRateLimited, route)
	}
}
