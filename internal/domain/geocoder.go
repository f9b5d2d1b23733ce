package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
// The zero value means "no match".
type GeocodingResult struct {
	Coordinate Coordinate
	Label      string
	Source     string // provider name
}

// Found reports whether the provider returned a match.
func (r GeocodingResult) Found() bool {
	return r != GeocodingResult{}
}

// Geocoder turns a free-text query into coordinates. Implementations return
// a zero result and nil error when nothing matches.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, query string) (GeocodingResult, error)
}
