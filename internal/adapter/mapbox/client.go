// Package mapbox is an optional geocoding strategy backed by the Mapbox
// Geocoding v5 places endpoint.
package mapbox

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
)

const (
	defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

	// Candidates requested per query; the first one clearing minRelevance wins.
	candidates = 3

	// minRelevance drops fuzzy matches that would move the dashboard somewhere
	// the user did not mean.
	minRelevance = 0.5
)

// Client implements domain.Geocoder.
type Client struct {
	client *resty.Client
	token  string
	logger *slog.Logger
}

// NewClient creates a Mapbox geocoding client. Requests are not retried.
func NewClient(token string, timeout time.Duration, logger *slog.Logger) *Client {
	return newClient(defaultBaseURL, token, timeout, logger)
}

func newClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		token:  token,
		logger: logger,
	}
}

func (c *Client) Name() string { return "mapbox" }

// Geocode returns the most relevant populated place for query, or a zero
// result when no candidate is relevant enough.
func (c *Client) Geocode(ctx context.Context, query string) (domain.GeocodingResult, error) {
	var out response
	var apiErr errorBody

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"access_token": c.token,
			"limit":        fmt.Sprint(candidates),
			"types":        "place,locality,region,postcode",
		}).
		SetResult(&out).
		SetError(&apiErr).
		Get("/" + url.PathEscape(query) + ".json")
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("mapbox geocode request: %w", err)
	}
	if !resp.IsSuccess() {
		return domain.GeocodingResult{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode(), apiErr.Message)
	}

	for _, f := range out.Features {
		if len(f.Center) != 2 {
			continue
		}
		if f.Relevance < minRelevance {
			c.logger.Debug("mapbox candidate below relevance threshold",
				"query", query, "place", f.PlaceName, "relevance", f.Relevance)
			continue
		}
		return domain.GeocodingResult{
			Coordinate: domain.Coordinate{Lat: f.Center[1], Lon: f.Center[0]},
			Label:      f.label(),
			Source:     c.Name(),
		}, nil
	}
	return domain.GeocodingResult{}, nil
}

type response struct {
	Features []feature `json:"features"`
}

type errorBody struct {
	Message string `json:"message"`
}

type feature struct {
	Center    []float64     `json:"center"` // [lon, lat]
	PlaceName string        `json:"place_name"`
	Text      string        `json:"text"`
	Relevance float64       `json:"relevance"`
	Context   []contextItem `json:"context"`
}

// contextItem is one enclosing area of a feature, e.g. id "region.123".
type contextItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	ShortCode string `json:"short_code"`
}

// label renders "{place}, {region}, {country code}" like the other
// strategies, skipping parts Mapbox does not return. Features without a
// context fall back to the full place name.
func (f feature) label() string {
	if f.Text == "" || len(f.Context) == 0 {
		return f.PlaceName
	}
	parts := []string{f.Text}
	var region, country string
	for _, item := range f.Context {
		kind, _, _ := strings.Cut(item.ID, ".")
		switch kind {
		case "region":
			region = item.Text
		case "country":
			country = strings.ToUpper(item.ShortCode)
			if country == "" {
				country = item.Text
			}
		}
	}
	for _, p := range []string{region, country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
