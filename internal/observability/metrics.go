package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsActive  prometheus.Gauge

	// Pipeline metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	FetchesTotal     *prometheus.CounterVec
	SignalsExtracted *prometheus.HistogramVec
	AssessmentsTotal prometheus.Counter

	// Provider metrics
	ProviderAttemptsTotal  *prometheus.CounterVec
	ProviderFallbacksTotal prometheus.Counter
	ProviderTokensUsed     *prometheus.CounterVec

	// Ad library metrics
	AdSearchesTotal *prometheus.CounterVec

	// System metrics
	DBConnectionsActive prometheus.Gauge
	GoroutinesActive    prometheus.Gauge
}

// NewMetrics creates a new metrics instance with all Prometheus metrics registered
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "offerpilot"
	}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_active",
				Help:      "Number of active HTTP requests",
			},
		),

		AnalysesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total number of competitor analyses",
			},
			[]string{"mode", "ai_powered"},
		),
		AnalysisDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "End to end analysis duration in seconds",
				Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
			},
			[]string{"mode"},
		),
		FetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetches_total",
				Help:      "Total number of source fetches",
			},
			[]string{"backend", "outcome"},
		),
		SignalsExtracted: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "signals_extracted",
				Help:      "Number of signals extracted per fetch",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
			},
			[]string{"category"},
		),
		AssessmentsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assessments_scored_total",
				Help:      "Total number of qualification assessments scored",
			},
		),

		ProviderAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_attempts_total",
				Help:      "Total number of model provider attempts",
			},
			[]string{"provider", "status"},
		),
		ProviderFallbacksTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_fallbacks_total",
				Help:      "Times the chain degraded to the template fallback",
			},
		),
		ProviderTokensUsed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_tokens_total",
				Help:      "Total tokens used per provider",
			},
			[]string{"provider", "direction"},
		),

		AdSearchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ad_searches_total",
				Help:      "Total number of ad library searches",
			},
			[]string{"mode", "outcome"},
		),

		DBConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_active",
				Help:      "Number of active database connections",
			},
		),
		GoroutinesActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "goroutines_active",
				Help:      "Number of active goroutines",
			},
		),
	}
}

// Handler returns the Prometheus metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request's outcome and duration
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAnalysis records a finished analysis
func (m *Metrics) RecordAnalysis(mode string, aiPowered bool, duration time.Duration) {
	m.AnalysesTotal.WithLabelValues(mode, strconv.FormatBool(aiPowered)).Inc()
	m.AnalysisDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordFetch records a source fetch outcome
func (m *Metrics) RecordFetch(backend string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.FetchesTotal.WithLabelValues(backend, outcome).Inc()
}

// RecordProviderAttempt records one link of the fallback chain firing
func (m *Metrics) RecordProviderAttempt(provider string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.ProviderAttemptsTotal.WithLabelValues(provider, status).Inc()
}
