package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

const defaultBaseURL = "https://api.openweathermap.org"

// APIError is a response the provider rejected, either through the HTTP
// status or through the "cod" field in the body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openweather API error: status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the OpenWeatherMap current, forecast, air pollution and
// direct geocoding endpoints. It also implements domain.Geocoder.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Name identifies the client as a geocoding strategy.
func (c *Client) Name() string { return "openweather" }

// Current fetches the observation for coord in unit.
func (c *Client) Current(ctx context.Context, coord domain.Coordinate, unit domain.Unit) (domain.CurrentConditions, error) {
	var resp currentResponse
	if err := c.get(ctx, "current", "/data/2.5/weather", coordParams(coord, unit), &resp); err != nil {
		return domain.CurrentConditions{}, err
	}
	if err := resp.Cod.check(resp.Message); err != nil {
		return domain.CurrentConditions{}, err
	}
	return resp.toDomain(), nil
}

// Forecast fetches the 5-day / 3-hour forecast for coord in unit.
func (c *Client) Forecast(ctx context.Context, coord domain.Coordinate, unit domain.Unit) ([]domain.ForecastPoint, error) {
	var resp forecastResponse
	if err := c.get(ctx, "forecast", "/data/2.5/forecast", coordParams(coord, unit), &resp); err != nil {
		return nil, err
	}
	if err := resp.Cod.check(textMessage(resp.Message)); err != nil {
		return nil, err
	}

	points := make([]domain.ForecastPoint, 0, len(resp.List))
	for _, item := range resp.List {
		points = append(points, item.toDomain())
	}
	return points, nil
}

// AirQuality fetches the current air quality index for coord.
func (c *Client) AirQuality(ctx context.Context, coord domain.Coordinate) (domain.AirQuality, error) {
	params := url.Values{
		"lat": {formatFloat(coord.Lat)},
		"lon": {formatFloat(coord.Lon)},
	}

	var resp airResponse
	if err := c.get(ctx, "air_quality", "/data/2.5/air_pollution", params, &resp); err != nil {
		return domain.AirQuality{}, err
	}
	if len(resp.List) == 0 {
		return domain.AirQuality{}, errors.New("air quality response has no entries")
	}
	return domain.NewAirQuality(resp.List[0].Main.AQI), nil
}

// Geocode resolves a free-text place name with the direct geocoding API.
// A query with no match returns a zero result and nil error.
func (c *Client) Geocode(ctx context.Context, query string) (domain.GeocodingResult, error) {
	params := url.Values{
		"q":     {query},
		"limit": {"1"},
	}

	var places []directPlace
	if err := c.get(ctx, "geocode", "/geo/1.0/direct", params, &places); err != nil {
		return domain.GeocodingResult{}, err
	}
	if len(places) == 0 {
		return domain.GeocodingResult{}, nil
	}

	p := places[0]
	return domain.GeocodingResult{
		Coordinate: domain.Coordinate{Lat: p.Lat, Lon: p.Lon},
		Label:      joinNonEmpty(p.Name, p.State, p.Country),
		Source:     c.Name(),
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	params.Set("appid", c.apiKey)
	fullURL := c.baseURL + path + "?" + params.Encode()

	start := time.Now()
	err := c.doRequest(ctx, endpoint, fullURL, out)
	c.metrics.ProviderDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "error"
		c.logger.Debug("openweather request failed", "endpoint", endpoint, "error", err)
	}
	c.metrics.ProviderRequests.WithLabelValues(endpoint, outcome).Inc()
	return err
}

func (c *Client) doRequest(ctx context.Context, endpoint, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// errorMessage extracts "message" from an error body, falling back to the raw text.
func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(body))
}

func coordParams(coord domain.Coordinate, unit domain.Unit) url.Values {
	return url.Values{
		"lat":   {formatFloat(coord.Lat)},
		"lon":   {formatFloat(coord.Lon)},
		"units": {string(unit)},
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
