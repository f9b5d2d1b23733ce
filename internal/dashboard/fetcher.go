package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

// Provider is the upstream weather source.
type Provider interface {
	Current(ctx context.Context, coord domain.Coordinate, unit domain.Unit) (domain.CurrentConditions, error)
	Forecast(ctx context.Context, coord domain.Coordinate, unit domain.Unit) ([]domain.ForecastPoint, error)
	AirQuality(ctx context.Context, coord domain.Coordinate) (domain.AirQuality, error)
}

// Degradation warnings attached to a bundle.
const (
	WarnForecastUnavailable   = "forecast unavailable"
	WarnAirQualityUnavailable = "air quality unavailable, showing default index"
)

// Fetcher builds complete bundles. Current conditions are mandatory; the
// forecast and air quality degrade to defaults with a warning.
type Fetcher struct {
	provider Provider
	location *time.Location
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewFetcher creates a fetcher. A nil provider means no API key is
// configured and every fetch fails with ErrMissingAPIKey. Daily aggregates
// are grouped in loc (time.Local when nil).
func NewFetcher(provider Provider, loc *time.Location, metrics *observability.Metrics, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		provider: provider,
		location: loc,
		metrics:  metrics,
		logger:   logger,
	}
}

// CheckReadiness fails while no weather API key is configured.
func (f *Fetcher) CheckReadiness(_ context.Context) error {
	if f.provider == nil {
		return ErrMissingAPIKey
	}
	return nil
}

// Fetch retrieves and derives a fresh bundle for coord in unit.
func (f *Fetcher) Fetch(ctx context.Context, coord domain.Coordinate, unit domain.Unit) (domain.Bundle, error) {
	if f.provider == nil {
		f.metrics.FetchOutcomes.WithLabelValues("failed").Inc()
		return domain.Bundle{}, fetchFailed(ErrMissingAPIKey)
	}
	if err := coord.Validate(); err != nil {
		f.metrics.FetchOutcomes.WithLabelValues("failed").Inc()
		return domain.Bundle{}, fetchFailed(err)
	}

	current, err := f.provider.Current(ctx, coord, unit)
	if err != nil {
		f.metrics.FetchOutcomes.WithLabelValues("failed").Inc()
		f.logger.Error("current conditions fetch failed", "coord", coord.String(), "error", err)
		return domain.Bundle{}, fetchFailed(err)
	}

	var warnings []string

	forecast, err := f.provider.Forecast(ctx, coord, unit)
	if err != nil {
		f.logger.Warn("forecast fetch failed, continuing without it", "coord", coord.String(), "error", err)
		forecast = nil
		warnings = append(warnings, WarnForecastUnavailable)
	}

	aq, err := f.provider.AirQuality(ctx, coord)
	if err != nil {
		f.logger.Warn("air quality fetch failed, using default", "coord", coord.String(), "error", err)
		aq = domain.DefaultAirQuality()
		warnings = append(warnings, WarnAirQualityUnavailable)
	}

	bundle := domain.AssembleBundle(current, forecast, aq, unit, f.location)
	bundle.Warnings = warnings

	outcome := "ok"
	if len(warnings) > 0 {
		outcome = "degraded"
	}
	f.metrics.FetchOutcomes.WithLabelValues(outcome).Inc()
	return bundle, nil
}

func fetchFailed(cause error) error {
	return fmt.Errorf("%w: %w", ErrFetchFailed, cause)
}
