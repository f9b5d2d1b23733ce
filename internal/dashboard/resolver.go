package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

// Resolver tries each geocoding strategy in order and returns the first
// match. Strategy errors are logged and never returned to the caller.
type Resolver struct {
	strategies []domain.Geocoder
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewResolver creates a resolver over strategies, highest priority first.
func NewResolver(metrics *observability.Metrics, logger *slog.Logger, strategies ...domain.Geocoder) *Resolver {
	return &Resolver{
		strategies: strategies,
		metrics:    metrics,
		logger:     logger,
	}
}

// Resolve returns the coordinate and label for query, or ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, query string) (domain.GeocodingResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.GeocodingResult{}, fmt.Errorf("%w: empty query", ErrNotFound)
	}

	for _, g := range r.strategies {
		result, err := g.Geocode(ctx, query)
		switch {
		case err != nil:
			r.metrics.GeocodeRequests.WithLabelValues(g.Name(), "error").Inc()
			r.logger.Warn("geocoding strategy failed", "provider", g.Name(), "query", query, "error", err)
		case !result.Found():
			r.metrics.GeocodeRequests.WithLabelValues(g.Name(), "empty").Inc()
			r.logger.Warn("geocoding strategy found nothing", "provider", g.Name(), "query", query)
		default:
			r.metrics.GeocodeRequests.WithLabelValues(g.Name(), "success").Inc()
			if result.Source == "" {
				result.Source = g.Name()
			}
			return result, nil
		}
	}

	return domain.GeocodingResult{}, fmt.Errorf("%w: %q", ErrNotFound, query)
}
