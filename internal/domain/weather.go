package domain

import (
	"fmt"
	"time"
)

// Unit is the measurement system used for provider queries and display.
type Unit string

const (
	UnitMetric   Unit = "metric"
	UnitImperial Unit = "imperial"
)

// ParseUnit accepts "metric" or "imperial".
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitMetric, UnitImperial:
		return Unit(s), nil
	default:
		return "", fmt.Errorf("unknown unit %q", s)
	}
}

// TempSymbol returns the display suffix for temperatures.
func (u Unit) TempSymbol() string {
	if u == UnitImperial {
		return "°F"
	}
	return "°C"
}

// WindSymbol returns the display suffix for wind speeds.
func (u Unit) WindSymbol() string {
	if u == UnitImperial {
		return "mph"
	}
	return "m/s"
}

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate reports whether the coordinate is on the globe.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f is outside valid range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %f is outside valid range [-180, 180]", c.Lon)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", c.Lat, c.Lon)
}

// Condition is the provider's weather classification for one observation.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`        // group, e.g. "Rain"
	Description string `json:"description"` // e.g. "light rain"
	Icon        string `json:"icon"`
}

// CurrentConditions is the observation at fetch time.
type CurrentConditions struct {
	Place      string    `json:"place,omitempty"`
	Temp       float64   `json:"temp"`
	FeelsLike  float64   `json:"feels_like"`
	TempMin    float64   `json:"temp_min"`
	TempMax    float64   `json:"temp_max"`
	Humidity   float64   `json:"humidity"` // percent
	Pressure   float64   `json:"pressure"` // hPa
	WindSpeed  float64   `json:"wind_speed"`
	WindDeg    int       `json:"wind_deg"`
	Visibility *int      `json:"visibility,omitempty"` // meters
	Condition  Condition `json:"condition"`
	Sunrise    time.Time `json:"sunrise"`
	Sunset     time.Time `json:"sunset"`
	ObservedAt time.Time `json:"observed_at"`
}

// ForecastPoint is one time-stamped forecast sample.
type ForecastPoint struct {
	Time              time.Time `json:"time"`
	Temp              float64   `json:"temp"`
	Humidity          float64   `json:"humidity"`
	Condition         Condition `json:"condition"`
	PrecipProbability float64   `json:"precip_probability"` // 0..1
	WindSpeed         float64   `json:"wind_speed"`
}

// DailyAggregate summarizes the forecast points of one calendar date.
type DailyAggregate struct {
	Date                 string  `json:"date"` // YYYY-MM-DD
	MaxTemp              float64 `json:"max_temp"`
	MinTemp              float64 `json:"min_temp"`
	DominantCondition    string  `json:"dominant_condition"`
	AvgPrecipProbability float64 `json:"avg_precip_probability"`
	Points               int     `json:"points"`
}

// AirQuality is the provider's 1..5 air quality index.
type AirQuality struct {
	AQI   int    `json:"aqi"`
	Label string `json:"label"`
}

var aqiLabels = []string{"Good", "Fair", "Moderate", "Poor", "Very Poor"}

// NewAirQuality labels an AQI value. Out-of-range values clamp to the
// nearest category.
func NewAirQuality(aqi int) AirQuality {
	idx := aqi - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(aqiLabels)-1 {
		idx = len(aqiLabels) - 1
	}
	return AirQuality{AQI: aqi, Label: aqiLabels[idx]}
}

// DefaultAirQuality substitutes for an unavailable air-quality reading.
func DefaultAirQuality() AirQuality {
	return NewAirQuality(1)
}

// PollenEstimate holds simulated pollen levels on a 0..10 scale.
type PollenEstimate struct {
	Tree    float64 `json:"tree"`
	Grass   float64 `json:"grass"`
	Weed    float64 `json:"weed"`
	Overall float64 `json:"overall"`
}

// SimulatedNotice accompanies every pollen or UV value returned to users.
const SimulatedNotice = "Pollen and UV values are simulated estimates derived from temperature and humidity, not measurements."

// Bundle is the full fetched and derived data set for one location.
// A new Bundle replaces the previous one; bundles are never merged.
type Bundle struct {
	Current    CurrentConditions         `json:"current"`
	Forecast   []ForecastPoint           `json:"forecast"`
	Daily      map[string]DailyAggregate `json:"daily"`
	AirQuality AirQuality                `json:"air_quality"`
	Pollen     PollenEstimate            `json:"pollen"`
	Notice     string                    `json:"notice"` // always SimulatedNotice
	Alerts     []Alert                   `json:"alerts"`
	Warnings   []string                  `json:"warnings,omitempty"`
	Unit       Unit                      `json:"unit"`
	FetchedAt  time.Time                 `json:"fetched_at"`
}

// AssembleBundle builds a bundle from fetched data and derives the daily
// aggregates, pollen estimate and alerts from it in one step, so the derived
// fields always match the fetched ones. Dates are grouped in loc (time.Local
// when nil).
func AssembleBundle(current CurrentConditions, forecast []ForecastPoint, aq AirQuality, unit Unit, loc *time.Location) Bundle {
	if forecast == nil {
		forecast = []ForecastPoint{}
	}
	return Bundle{
		Current:    current,
		Forecast:   forecast,
		Daily:      DailyAggregates(forecast, loc),
		AirQuality: aq,
		Pollen:     EstimatePollen(ToCelsius(current.Temp, unit), current.Humidity),
		Notice:     SimulatedNotice,
		Alerts:     BundleAlerts(current, unit),
		Unit:       unit,
		FetchedAt:  clock.Now(),
	}
}
