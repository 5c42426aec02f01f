package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/offerpilot/offerpilot/internal/observability"
)

// MetricsMiddleware records request counts and latencies. The route
// pattern is used as the path label so IDs don't explode cardinality.
type MetricsMiddleware struct {
	metrics *observability.Metrics
}

// NewMetricsMiddleware creates a new metrics middleware
func NewMetricsMiddleware(metrics *observability.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: metrics}
}

// Handler returns the middleware handler
func (m *MetricsMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		m.metrics.HTTPRequestsActive.Inc()
		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		m.metrics.HTTPRequestsActive.Dec()

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		m.metrics.RecordHTTPRequest(r.Method, path, rw.statusCode, time.Since(start))
	})
}
