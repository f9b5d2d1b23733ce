package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Weather provider credentials. WeatherAPIKey is recorded for an
	// alternate provider but not used by any client yet.
	OpenWeatherKey string
	WeatherAPIKey  string

	// Text-generation backends; an empty key disables the backend.
	GroqKey      string
	AnthropicKey string

	// Optional extra geocoding strategy; an empty token disables it.
	MapboxToken string

	ProviderTimeout  time.Duration
	RefreshInterval  time.Duration
	SessionCacheSize int

	// GeocodeCacheSize bounds an opt-in cache in front of each geocoding
	// strategy. Zero, the default, leaves lookups uncached.
	GeocodeCacheSize   int
	NominatimUserAgent string

	// Optional bundle publication; empty brokers disables it.
	KafkaBrokers     []string
	KafkaBundleTopic string
}

// WeatherEnabled reports whether a weather API key is configured.
func (c *Config) WeatherEnabled() bool { return c.OpenWeatherKey != "" }

// GeocodeCacheEnabled reports whether geocoding lookups should be cached.
func (c *Config) GeocodeCacheEnabled() bool { return c.GeocodeCacheSize > 0 }

// PublishEnabled reports whether bundles should be published to Kafka.
func (c *Config) PublishEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads configuration from environment variables, applying defaults where unset.
// Missing credentials are not an error; they disable the matching integration.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	providerTimeout, err := parsePositiveDuration("PROVIDER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		OpenWeatherKey: firstEnv("OPENWEATHER_API_KEY", "OpenWeatherMap", "WEATHER_API_KEY"),
		WeatherAPIKey:  cleanKey(os.Getenv("WEATHERAPI_KEY")),
		GroqKey:        cleanKey(os.Getenv("GROQ_API_KEY")),
		AnthropicKey:   cleanKey(os.Getenv("ANTHROPIC_API_KEY")),
		MapboxToken:    cleanKey(os.Getenv("MAPBOX_TOKEN")),

		ProviderTimeout:    providerTimeout,
		RefreshInterval:    refreshInterval,
		SessionCacheSize:   parsePositiveInt("SESSION_CACHE_SIZE", 1000),
		GeocodeCacheSize:   parseNonNegativeInt("GEOCODE_CACHE_SIZE", 0),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "weather-dashboard-service/1.0"),

		KafkaBrokers:     sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaBundleTopic: sharedcfg.EnvOrDefault("KAFKA_BUNDLE_TOPIC", "weather-bundles"),
	}

	if cfg.PublishEnabled() && cfg.KafkaBundleTopic == "" {
		return nil, fmt.Errorf("KAFKA_BUNDLE_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// firstEnv returns the first non-empty cleaned value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := cleanKey(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// cleanKey strips quotes and whitespace that .env files commonly leave around secrets.
func cleanKey(v string) string {
	return strings.Trim(v, "\"' \t\r\n")
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parsePositiveInt falls back to def when key is unset or not a positive integer.
func parsePositiveInt(key string, def int) int {
	return parseInt(key, def, 1)
}

// parseNonNegativeInt falls back to def when key is unset, negative or not an integer.
func parseNonNegativeInt(key string, def int) int {
	return parseInt(key, def, 0)
}

func parseInt(key string, def, lowest int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= lowest {
			return n
		}
	}
	return def
}
