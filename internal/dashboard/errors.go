package dashboard

import (
	"errors"

	"github.com/couchcryptid/weather-dashboard-service/internal/adapter/openweather"
)

var (
	// ErrNotFound is returned when no geocoding strategy matches a query.
	ErrNotFound = errors.New("location not found")

	// ErrFetchFailed wraps any failure to build a bundle. The previous
	// bundle of the session is left untouched.
	ErrFetchFailed = errors.New("weather fetch failed")

	// ErrMissingAPIKey is the FetchFailed cause when no weather key is configured.
	ErrMissingAPIKey = errors.New("weather API key is not configured")

	ErrSessionNotFound = errors.New("session not found")
	ErrFavoriteIndex   = errors.New("favorite index out of range")
	ErrNoBundle        = errors.New("session has no weather data yet")
)

// Describe renders a fetch failure for users, separating provider rejections
// from transport problems.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *openweather.APIError
	switch {
	case errors.As(err, &apiErr):
		return "API error: " + apiErr.Message
	case errors.Is(err, ErrMissingAPIKey):
		return "configuration error: " + ErrMissingAPIKey.Error()
	default:
		return "network error: " + rootCause(err).Error()
	}
}

// rootCause strips the ErrFetchFailed wrapper so the message names the real problem.
func rootCause(err error) error {
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range u.Unwrap() {
			if e != ErrFetchFailed { //nolint:errorlint // identity check on the wrapper sentinel
				return e
			}
		}
	}
	return err
}
