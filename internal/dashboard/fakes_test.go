package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errBoom = errors.New("boom")

// --- geocoding ---

type fakeGeocoder struct {
	name   string
	result domain.GeocodingResult
	err    error
	calls  int
}

func (f *fakeGeocoder) Name() string { return f.name }

func (f *fakeGeocoder) Geocode(_ context.Context, _ string) (domain.GeocodingResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeLocator struct {
	result domain.GeocodingResult
	err    error
}

func (f *fakeLocator) Locate(context.Context) (domain.GeocodingResult, error) {
	return f.result, f.err
}

// --- weather ---

type fakeProvider struct {
	mu          sync.Mutex
	current     domain.CurrentConditions
	forecast    []domain.ForecastPoint
	aq          domain.AirQuality
	currentErr  error
	forecastErr error
	aqErr       error
	delay       time.Duration
	calls       []domain.Coordinate
	units       []domain.Unit
}

func newFakeProvider() *fakeProvider {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	forecast := make([]domain.ForecastPoint, 16)
	for i := range forecast {
		forecast[i] = domain.ForecastPoint{
			Time:              start.Add(time.Duration(i) * 3 * time.Hour),
			Temp:              24,
			Humidity:          50,
			Condition:         domain.Condition{Main: "Clear", Description: "clear sky"},
			PrecipProbability: 0.2,
			WindSpeed:         3,
		}
	}
	return &fakeProvider{
		current: domain.CurrentConditions{
			Temp:      20,
			Humidity:  50,
			WindSpeed: 3,
			Condition: domain.Condition{Main: "Clear", Description: "clear sky"},
		},
		forecast: forecast,
		aq:       domain.NewAirQuality(2),
	}
}

func (f *fakeProvider) Current(ctx context.Context, c domain.Coordinate, u domain.Unit) (domain.CurrentConditions, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.units = append(f.units, u)
	current, err, delay := f.current, f.currentErr, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return domain.CurrentConditions{}, ctx.Err()
		}
	}
	return current, err
}

func (f *fakeProvider) slowDown(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

func (f *fakeProvider) Forecast(context.Context, domain.Coordinate, domain.Unit) ([]domain.ForecastPoint, error) {
	if f.forecastErr != nil {
		return nil, f.forecastErr
	}
	return f.forecast, nil
}

func (f *fakeProvider) AirQuality(context.Context, domain.Coordinate) (domain.AirQuality, error) {
	return f.aq, f.aqErr
}

func (f *fakeProvider) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentErr = err
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// --- insight ---

type fakeBackend struct {
	name  string
	text  string
	err   error
	calls int
	last  string
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Complete(_ context.Context, _, prompt string) (string, error) {
	f.calls++
	f.last = prompt
	return f.text, f.err
}

// --- publishing ---

type published struct {
	sessionID string
	label     string
	bundle    domain.Bundle
}

type fakePublisher struct {
	mu      sync.Mutex
	msgs    []published
	err     error
	ctxErrs []error

	// release, when set, holds every Publish until it is closed.
	release chan struct{}
}

func (f *fakePublisher) Publish(ctx context.Context, id, label string, b domain.Bundle) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{sessionID: id, label: label, bundle: b})
	return nil
}

func (f *fakePublisher) messages() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.msgs...)
}

// --- service wiring ---

type harness struct {
	svc       *Service
	store     *SessionStore
	provider  *fakeProvider
	primary   *fakeGeocoder
	fallback  *fakeGeocoder
	locator   *fakeLocator
	backend   *fakeBackend
	publisher *fakePublisher
	metrics   *observability.Metrics
}

var paris = domain.GeocodingResult{
	Coordinate: domain.Coordinate{Lat: 48.8566, Lon: 2.3522},
	Label:      "Paris, FR",
	Source:     "primary",
}

func newHarness() *harness {
	h := &harness{
		store:     NewSessionStore(10),
		provider:  newFakeProvider(),
		primary:   &fakeGeocoder{name: "primary", result: paris},
		fallback:  &fakeGeocoder{name: "fallback"},
		locator:   &fakeLocator{result: domain.GeocodingResult{Coordinate: domain.Coordinate{Lat: 52.52, Lon: 13.405}, Label: "Berlin, Germany"}},
		backend:   &fakeBackend{name: "fake", text: "Wear sunscreen."},
		publisher: &fakePublisher{},
		metrics:   observability.NewMetricsForTesting(),
	}
	logger := discardLogger()
	h.svc = NewService(Deps{
		Store:     h.store,
		Resolver:  NewResolver(h.metrics, logger, h.primary, h.fallback),
		Fetcher:   NewFetcher(h.provider, time.UTC, h.metrics, logger),
		Insights:  NewInsightProvider(h.metrics, logger, h.backend),
		Locator:   h.locator,
		Publisher: h.publisher,
		Metrics:   h.metrics,
		Logger:    logger,
	})
	h.svc.uvJitter = func() int { return 0 }
	return h
}
