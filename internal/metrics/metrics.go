package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the airport service.
// Helper methods are nil-safe so components can run without metrics in tests.
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Provider Metrics
	ProviderRequestsTotal   *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec
	TokenRefreshesTotal     prometheus.Counter
	FallbackServedTotal     *prometheus.CounterVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheEntries     *prometheus.GaugeVec

	// Sync Metrics
	SyncJobDuration  *prometheus.HistogramVec
	SyncRecordsTotal *prometheus.CounterVec
}

// NewMetricsRegistry registers every metric on reg. Pass prometheus.DefaultRegisterer
// in the server and prometheus.NewRegistry() in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airports_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "airports_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "airports_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		ProviderRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airports_provider_requests_total",
				Help: "Outbound travel data provider requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		ProviderRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "airports_provider_request_duration_seconds",
				Help:    "Outbound travel data provider latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
			},
			[]string{"endpoint"},
		),
		TokenRefreshesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "airports_provider_token_refreshes_total",
				Help: "Bearer tokens issued by the provider token endpoint",
			},
		),
		FallbackServedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airports_static_fallback_served_total",
				Help: "Responses served from the static airport list after provider failure",
			},
			[]string{"region"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airports_cache_hits_total",
				Help: "Total cache hits by cache name",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airports_cache_misses_total",
				Help: "Total cache misses by cache name",
			},
			[]string{"cache"},
		),
		CacheEntries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "airports_cache_entries",
				Help: "Current number of entries held by a cache",
			},
			[]string{"cache"},
		),

		SyncJobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "airports_sync_job_duration_seconds",
				Help:    "Sync job execution time in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"job_name"},
		),
		SyncRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airports_sync_records_total",
				Help: "Airport records processed by sync jobs by outcome",
			},
			[]string{"job_name", "outcome"},
		),
	}
}

func (m *MetricsRegistry) ObserveProvider(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ProviderRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.ProviderRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *MetricsRegistry) TokenRefreshed() {
	if m == nil {
		return
	}
	m.TokenRefreshesTotal.Inc()
}

func (m *MetricsRegistry) FallbackServed(region string) {
	if m == nil {
		return
	}
	m.FallbackServedTotal.WithLabelValues(region).Inc()
}

func (m *MetricsRegistry) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func (m *MetricsRegistry) CacheSize(cache string, entries int) {
	if m == nil {
		return
	}
	m.CacheEntries.WithLabelValues(cache).Set(float64(entries))
}

func (m *MetricsRegistry) ObserveSync(job string, elapsed time.Duration, updated, failed int) {
	if m == nil {
		return
	}
	m.SyncJobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
	m.SyncRecordsTotal.WithLabelValues(job, "updated").Add(float64(updated))
	m.SyncRecordsTotal.WithLabelValues(job, "failed").Add(float64(failed))
}
