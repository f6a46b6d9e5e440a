package middleware

import (
	"net/http"
	"strconv"
	"time"

	"travelbook/airports/internal/auth"
	"travelbook/airports/internal/logging"
	"travelbook/airports/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// MetricsMiddleware records HTTP metrics for each request
func MetricsMiddleware(metricsReg *metrics.MetricsRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			if metricsReg != nil {
				metricsReg.HTTPRequestsInFlight.Inc()
				defer metricsReg.HTTPRequestsInFlight.Dec()
			}

			next.ServeHTTP(wrapped, r)

			// the route pattern is only complete once chi has routed the request
			routePattern := "unknown"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				routePattern = rctx.RoutePattern()
			}

			duration := time.Since(start)
			if metricsReg != nil {
				metricsReg.HTTPRequestsTotal.WithLabelValues(
					routePattern,
					r.Method,
					strconv.Itoa(wrapped.statusCode),
				).Inc()
				metricsReg.HTTPRequestDuration.WithLabelValues(
					routePattern,
					r.Method,
				).Observe(duration.Seconds())
			}

			logging.Info("HTTP request completed",
				"request_id", auth.GetRequestID(r.Context()),
				"method", r.Method,
				"endpoint", routePattern,
				"status_code", wrapped.statusCode,
				"duration_ms", duration.Milliseconds(),
			)
		})
	}
}

// RequestIDMiddleware keeps an incoming X-Request-ID or assigns a new one
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(auth.SetRequestID(r.Context(), requestID)))
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.written {
		r.statusCode = code
		r.written = true
		r.ResponseWriter.WriteHeader(code)
	}
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.statusCode = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}
