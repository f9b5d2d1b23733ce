// Package app wires the dashboard service from configuration.
package app

import (
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-dashboard-service/internal/adapter/geocache"
	"github.com/couchcryptid/weather-dashboard-service/internal/adapter/ipapi"
	kafkaadapter "github.com/couchcryptid/weather-dashboard-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-dashboard-service/internal/adapter/llm"
	"github.com/couchcryptid/weather-dashboard-service/internal/adapter/mapbox"
	"github.com/couchcryptid/weather-dashboard-service/internal/adapter/nominatim"
	"github.com/couchcryptid/weather-dashboard-service/internal/adapter/openweather"
	"github.com/couchcryptid/weather-dashboard-service/internal/config"
	"github.com/couchcryptid/weather-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

// App holds the wired service and the resources that need closing.
type App struct {
	Service   *dashboard.Service
	Fetcher   *dashboard.Fetcher
	Resolver  *dashboard.Resolver
	Insights  *dashboard.InsightProvider
	geocoders []domain.Geocoder
	publisher *kafkaadapter.Publisher
	logger    *slog.Logger
}

// New builds every adapter the configuration enables. Missing credentials
// disable the matching integration instead of failing.
func New(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *App {
	// Lookups are uncached unless GEOCODE_CACHE_SIZE opts in.
	withCache := func(g domain.Geocoder) domain.Geocoder {
		if !cfg.GeocodeCacheEnabled() {
			return g
		}
		return geocache.NewCachedGeocoder(g, cfg.GeocodeCacheSize, metrics)
	}

	// provider stays a nil interface without a key so the fetcher reports
	// ErrMissingAPIKey.
	var provider dashboard.Provider
	var geocoders []domain.Geocoder
	if cfg.WeatherEnabled() {
		ow := openweather.NewClient(cfg.OpenWeatherKey, cfg.ProviderTimeout, metrics, logger)
		provider = ow
		geocoders = append(geocoders, withCache(ow))
		metrics.WeatherConfigured.Set(1)
	} else {
		metrics.WeatherConfigured.Set(0)
		logger.Warn("no weather API key configured; fetches will fail until OPENWEATHER_API_KEY is set")
	}

	if cfg.MapboxToken != "" {
		geocoders = append(geocoders, withCache(mapbox.NewClient(cfg.MapboxToken, cfg.ProviderTimeout, logger)))
		logger.Info("mapbox geocoding enabled")
	}
	geocoders = append(geocoders, withCache(nominatim.NewClient(cfg.NominatimUserAgent, cfg.ProviderTimeout, logger)))

	backends := insightBackends(cfg)

	var publisher *kafkaadapter.Publisher
	var bundlePub dashboard.BundlePublisher
	if cfg.PublishEnabled() {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		bundlePub = publisher
		logger.Info("bundle publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaBundleTopic)
	}

	resolver := dashboard.NewResolver(metrics, logger, geocoders...)
	fetcher := dashboard.NewFetcher(provider, time.Local, metrics, logger)
	insights := dashboard.NewInsightProvider(metrics, logger, backends...)

	svc := dashboard.NewService(dashboard.Deps{
		Store:     dashboard.NewSessionStore(cfg.SessionCacheSize),
		Resolver:  resolver,
		Fetcher:   fetcher,
		Insights:  insights,
		Locator:   ipapi.NewClient(cfg.ProviderTimeout),
		Publisher: bundlePub,
		Metrics:   metrics,
		Logger:    logger,
	})

	logger.Info("dashboard wired",
		"geocoders", len(geocoders),
		"geocode_cache_size", cfg.GeocodeCacheSize,
		"insight_backends", insights.Backends(),
		"weather_configured", cfg.WeatherEnabled(),
	)

	return &App{
		Service:   svc,
		Fetcher:   fetcher,
		Resolver:  resolver,
		Insights:  insights,
		geocoders: geocoders,
		publisher: publisher,
		logger:    logger,
	}
}

// insightBackends returns the configured text generators, fastest first.
func insightBackends(cfg *config.Config) []dashboard.Backend {
	var backends []dashboard.Backend
	if cfg.GroqKey != "" {
		backends = append(backends, llm.NewGroq(cfg.GroqKey, cfg.ProviderTimeout))
	}
	if cfg.AnthropicKey != "" {
		backends = append(backends, llm.NewAnthropic(cfg.AnthropicKey, cfg.ProviderTimeout))
	}
	return backends
}

// Close waits for background publishes, then releases the Kafka producer
// when publishing is enabled.
func (a *App) Close() {
	a.Service.WaitForPublishes()
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Close(); err != nil {
		a.logger.Error("kafka publisher close error", "error", err)
	}
}
