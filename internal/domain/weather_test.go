package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("metric")
	require.NoError(t, err)
	assert.Equal(t, UnitMetric, u)

	u, err = ParseUnit("imperial")
	require.NoError(t, err)
	assert.Equal(t, UnitImperial, u)

	_, err = ParseUnit("kelvin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kelvin")
}

func TestUnitSymbols(t *testing.T) {
	assert.Equal(t, "°C", UnitMetric.TempSymbol())
	assert.Equal(t, "°F", UnitImperial.TempSymbol())
	assert.Equal(t, "m/s", UnitMetric.WindSymbol())
	assert.Equal(t, "mph", UnitImperial.WindSymbol())
}

func TestCoordinateValidate(t *testing.T) {
	assert.NoError(t, Coordinate{Lat: 40.7128, Lon: -74.0060}.Validate())
	assert.NoError(t, Coordinate{Lat: -90, Lon: 180}.Validate())
	assert.ErrorContains(t, Coordinate{Lat: 91}.Validate(), "latitude")
	assert.ErrorContains(t, Coordinate{Lon: -181}.Validate(), "longitude")
}

func TestNewAirQuality(t *testing.T) {
	tests := []struct {
		aqi  int
		want string
	}{
		{1, "Good"},
		{2, "Fair"},
		{3, "Moderate"},
		{4, "Poor"},
		{5, "Very Poor"},
		{9, "Very Poor"},
		{0, "Good"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewAirQuality(tt.aqi).Label, "aqi=%d", tt.aqi)
	}
	assert.Equal(t, AirQuality{AQI: 1, Label: "Good"}, DefaultAirQuality())
}

func TestSetClock(t *testing.T) {
	t.Run("set custom clock", func(t *testing.T) {
		fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		SetClock(clockwork.NewFakeClockAt(fixedTime))
		defer SetClock(nil)

		assert.Equal(t, fixedTime, Now())
	})

	t.Run("reset to real clock", func(t *testing.T) {
		SetClock(clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
		SetClock(nil)

		assert.WithinDuration(t, time.Now(), Now(), time.Second)
	})
}
