package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard service.
type Metrics struct {
	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: provider, outcome={success,empty,error}
	GeocodeCache    *prometheus.CounterVec // labels: provider, result={hit,miss}

	// Upstream weather API metrics.
	ProviderRequests *prometheus.CounterVec   // labels: endpoint={current,forecast,air_quality}, outcome={success,error}
	ProviderDuration *prometheus.HistogramVec // labels: endpoint

	FetchOutcomes *prometheus.CounterVec // labels: outcome={ok,degraded,failed}

	// Text-generation metrics.
	InsightRequests *prometheus.CounterVec // labels: backend (fallback included), outcome={success,error}

	RefreshRuns       *prometheus.CounterVec // labels: outcome={ok,failed}
	ActiveSessions    prometheus.Gauge
	BundlesPublished  *prometheus.CounterVec // labels: outcome={success,error}
	WeatherConfigured prometheus.Gauge
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.GeocodeRequests,
		m.GeocodeCache,
		m.ProviderRequests,
		m.ProviderDuration,
		m.FetchOutcomes,
		m.InsightRequests,
		m.RefreshRuns,
		m.ActiveSessions,
		m.BundlesPublished,
		m.WeatherConfigured,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding lookups by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_lookups_total",
			Help:      "Geocode cache lookups by provider and result.",
		}, []string{"provider", "result"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Weather API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Weather API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		FetchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Bundle fetches by outcome.",
		}, []string{"outcome"}),
		InsightRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insight_requests_total",
			Help:      "Text-generation attempts by backend and outcome.",
		}, []string{"backend", "outcome"}),
		RefreshRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_refresh_total",
			Help:      "Background session refreshes by outcome.",
		}, []string{"outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}),
		BundlesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bundles_published_total",
			Help:      "Bundles written to the Kafka topic by outcome.",
		}, []string{"outcome"}),
		WeatherConfigured: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "weather_api_configured",
			Help:      "1 when a weather API key is configured, 0 otherwise.",
		}),
	}
}
