package ipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
)

const defaultBaseURL = "http://ip-api.com"

// Client locates the caller's public IP address with ip-api.com.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
	}
}

type response struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
	Country string  `json:"country"`
}

// Locate returns the approximate location of the server's public address,
// labelled "City, Country".
func (c *Client) Locate(ctx context.Context) (domain.GeocodingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/json", nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("ip lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.GeocodingResult{}, fmt.Errorf("ip-api error: status %d", resp.StatusCode)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}
	if r.Status != "success" {
		return domain.GeocodingResult{}, fmt.Errorf("ip lookup failed: %s", r.Message)
	}

	return domain.GeocodingResult{
		Coordinate: domain.Coordinate{Lat: r.Lat, Lon: r.Lon},
		Label:      fmt.Sprintf("%s, %s", r.City, r.Country),
		Source:     "ip-api",
	}, nil
}
