package routes

import (
	"net/http"

	"travelbook/airports/internal/api"
	"travelbook/airports/internal/logging"
	"travelbook/airports/internal/metrics"
	"travelbook/airports/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes builds the chi router with global middleware, health,
// metrics and the versioned API.
func RegisterRoutes(deps *api.Dependencies, job api.JobRunner, metricsReg *metrics.MetricsRegistry, gatherer prometheus.Gatherer, limiter *middleware.IPRateLimiter) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	handlers := api.NewHandlers(deps)

	r.Get("/healthCheck", handlers.HealthCheckHandler())
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	var jobsHandler *api.JobsHandler
	if job != nil {
		jobsHandler = api.NewJobsHandler(job)
	}

	RegisterAPIRoutes(r, handlers, jobsHandler, deps.Services.Signer, limiter)

	return r
}
