package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(ts time.Time, temp float64, desc string, pop float64) ForecastPoint {
	return ForecastPoint{
		Time:              ts,
		Temp:              temp,
		Condition:         Condition{Main: "Clouds", Description: desc},
		PrecipProbability: pop,
	}
}

func TestDailyAggregates(t *testing.T) {
	day1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	points := []ForecastPoint{
		point(day1, 18, "few clouds", 0.2),
		point(day1.Add(3*time.Hour), 22, "light rain", 0.6),
		point(day1.Add(21*time.Hour), 15, "few clouds", 0.1),
		point(day2, 12, "overcast clouds", 0),
	}

	got := DailyAggregates(points, time.UTC)

	want := map[string]DailyAggregate{
		"2024-06-01": {
			Date:                 "2024-06-01",
			MaxTemp:              22,
			MinTemp:              15,
			DominantCondition:    "few clouds",
			AvgPrecipProbability: 0.3,
			Points:               3,
		},
		"2024-06-02": {
			Date:              "2024-06-02",
			MaxTemp:           12,
			MinTemp:           12,
			DominantCondition: "overcast clouds",
			Points:            1,
		},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("DailyAggregates mismatch (-want +got):\n%s", diff)
	}
}

func TestDailyAggregates_EveryPointInOneGroup(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	points := make([]ForecastPoint, 40)
	for i := range points {
		points[i] = point(start.Add(time.Duration(i)*3*time.Hour), float64(i), "clear sky", 0)
	}

	daily := DailyAggregates(points, time.UTC)

	total := 0
	for _, d := range daily {
		total += d.Points
		assert.LessOrEqual(t, d.MinTemp, d.MaxTemp)
	}
	assert.Equal(t, len(points), total)
	assert.Len(t, daily, 5)
}

func TestDailyAggregates_GroupsInLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 20:00 UTC on June 1 is June 2 in Tokyo.
	points := []ForecastPoint{point(time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC), 20, "clear sky", 0)}

	assert.Contains(t, DailyAggregates(points, time.UTC), "2024-06-01")
	assert.Contains(t, DailyAggregates(points, tokyo), "2024-06-02")
}

func TestDailyAggregates_Empty(t *testing.T) {
	got := DailyAggregates(nil, nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDailyAggregates_DominantTieGoesToFirstSeen(t *testing.T) {
	ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	points := []ForecastPoint{
		point(ts, 10, "light rain", 0),
		point(ts.Add(3*time.Hour), 10, "clear sky", 0),
		point(ts.Add(6*time.Hour), 10, "clear sky", 0),
		point(ts.Add(9*time.Hour), 10, "light rain", 0),
	}

	assert.Equal(t, "light rain", DailyAggregates(points, time.UTC)["2024-06-01"].DominantCondition)
}

func TestSortedDates(t *testing.T) {
	daily := map[string]DailyAggregate{
		"2024-06-03": {}, "2024-06-01": {}, "2024-06-02": {},
	}
	assert.Equal(t, []string{"2024-06-01", "2024-06-02", "2024-06-03"}, SortedDates(daily))
}

func TestEstimatePollen(t *testing.T) {
	tests := []struct {
		name     string
		tempC    float64
		humidity float64
		want     PollenEstimate
	}{
		{"warm and dry", 25, 20, PollenEstimate{Tree: 9, Grass: 6, Weed: 2, Overall: 5.7}},
		{"cool", 10, 50, PollenEstimate{}},
		{"hot and parched clamps", 40, 0, PollenEstimate{Tree: 10, Grass: 10, Weed: 6, Overall: 8.7}},
		{"freezing and humid", -10, 90, PollenEstimate{}},
		{"humid warm day", 22, 40, PollenEstimate{Tree: 6.5, Grass: 4.8, Weed: 0, Overall: 3.8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimatePollen(tt.tempC, tt.humidity)
			assert.InDelta(t, tt.want.Tree, got.Tree, 1e-9)
			assert.InDelta(t, tt.want.Grass, got.Grass, 1e-9)
			assert.InDelta(t, tt.want.Weed, got.Weed, 1e-9)
			assert.InDelta(t, tt.want.Overall, got.Overall, 1e-9)
		})
	}
}

func TestEstimatePollen_Bounds(t *testing.T) {
	for temp := -30.0; temp <= 50; temp += 2.5 {
		for hum := 0.0; hum <= 100; hum += 10 {
			p := EstimatePollen(temp, hum)
			for _, v := range []float64{p.Tree, p.Grass, p.Weed, p.Overall} {
				require.GreaterOrEqual(t, v, 0.0, "temp=%v hum=%v", temp, hum)
				require.LessOrEqual(t, v, 10.0, "temp=%v hum=%v", temp, hum)
			}
		}
	}
}

func TestPollenLevel(t *testing.T) {
	assert.Equal(t, "Low", PollenLevel(0))
	assert.Equal(t, "Low", PollenLevel(2.9))
	assert.Equal(t, "Moderate", PollenLevel(3))
	assert.Equal(t, "Moderate", PollenLevel(5.9))
	assert.Equal(t, "High", PollenLevel(6))
}

func TestEvaluateAlerts(t *testing.T) {
	tests := []struct {
		name      string
		tempC     float64
		windKmh   float64
		condition string
		humidity  float64
		want      []AlertKind
	}{
		{"calm day", 20, 10, "clear", 50, nil},
		{"heat", 33, 10, "clear", 30, []AlertKind{AlertHeat}},
		{"heat boundary is exclusive", 32, 10, "clear", 30, nil},
		{"freeze", -6, 5, "snow", 70, []AlertKind{AlertFreeze}},
		{"freeze boundary is exclusive", -5, 5, "snow", 70, nil},
		{"wind", 15, 45, "clouds", 50, []AlertKind{AlertWind}},
		{"thunderstorm group", 25, 10, "Thunderstorm", 70, []AlertKind{AlertStorm}},
		{"heavy rain", 18, 10, "Rain", 85, []AlertKind{AlertFlood}},
		{"drizzle counts as rain", 18, 10, "drizzle", 81, []AlertKind{AlertFlood}},
		{"rain at 80 percent", 18, 10, "rain", 80, nil},
		{"several at once", 35, 50, "thunderstorm", 90, []AlertKind{AlertHeat, AlertWind, AlertStorm}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := EvaluateAlerts(tt.tempC, tt.windKmh, tt.condition, tt.humidity)
			require.NotNil(t, alerts)

			var kinds []AlertKind
			for _, a := range alerts {
				assert.NotEmpty(t, a.Message)
				kinds = append(kinds, a.Kind)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestEvaluateAlerts_HeatOnlyAdds(t *testing.T) {
	alertKinds := func(alerts []Alert) map[AlertKind]bool {
		out := make(map[AlertKind]bool, len(alerts))
		for _, a := range alerts {
			out[a.Kind] = true
		}
		return out
	}

	for _, condition := range []string{"clear", "rain", "drizzle", "thunderstorm", "snow"} {
		for _, humidity := range []float64{10, 50, 81, 100} {
			for _, wind := range []float64{0, 39, 41, 80} {
				cool := alertKinds(EvaluateAlerts(31, wind, condition, humidity))
				hot := alertKinds(EvaluateAlerts(33, wind, condition, humidity))

				require.False(t, cool[AlertHeat])
				require.True(t, hot[AlertHeat], "%s rh=%v wind=%v", condition, humidity, wind)
				delete(hot, AlertHeat)
				require.Equal(t, cool, hot, "%s rh=%v wind=%v", condition, humidity, wind)
			}
		}
	}
}

func TestBundleAlerts_ConvertsImperial(t *testing.T) {
	current := CurrentConditions{
		Temp:      95,  // 35°C
		WindSpeed: 30,  // ~48 km/h
		Humidity:  40,
		Condition: Condition{Main: "Clear"},
	}

	alerts := BundleAlerts(current, UnitImperial)

	require.Len(t, alerts, 2)
	assert.Equal(t, AlertHeat, alerts[0].Kind)
	assert.Equal(t, AlertWind, alerts[1].Kind)

	// Same numbers read as metric: 95°C is hot, 30 m/s is 108 km/h.
	assert.Len(t, BundleAlerts(current, UnitMetric), 2)

	// 10 m/s is 36 km/h, below the wind threshold; 10 mph is lower still.
	calm := CurrentConditions{Temp: 20, WindSpeed: 10, Condition: Condition{Main: "Clear"}}
	assert.Empty(t, BundleAlerts(calm, UnitMetric))
	calm.Temp = 68 // 20°C
	assert.Empty(t, BundleAlerts(calm, UnitImperial))

	// 20°F is about -6.7°C.
	frosty := CurrentConditions{Temp: 20, Condition: Condition{Main: "Clear"}}
	alerts = BundleAlerts(frosty, UnitImperial)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertFreeze, alerts[0].Kind)
}

func TestRealFeel(t *testing.T) {
	assert.InDelta(t, 22.1377, RealFeel(20, 60, 5, UnitMetric), 1e-3)
	assert.InDelta(t, 37.4577, RealFeel(30, 70, 0, UnitMetric), 1e-3)
	assert.InDelta(t, 99.6777, RealFeel(90, 60, 10, UnitImperial), 1e-3)
	assert.InDelta(t, 95.0684, RealFeel(86, 70, 0, UnitImperial), 1e-3)
}

func TestRealFeel_ImperialIgnoresWind(t *testing.T) {
	assert.Equal(t, RealFeel(90, 60, 0, UnitImperial), RealFeel(90, 60, 40, UnitImperial))
}

func TestRealFeel_WindLowersMetric(t *testing.T) {
	assert.Less(t, RealFeel(20, 60, 10, UnitMetric), RealFeel(20, 60, 0, UnitMetric))
}

func TestConversions(t *testing.T) {
	assert.InDelta(t, 25.0, FahrenheitToCelsius(77), 1e-9)
	assert.InDelta(t, 77.0, CelsiusToFahrenheit(25), 1e-9)
	assert.InDelta(t, 25.0, ToCelsius(77, UnitImperial), 1e-9)
	assert.InDelta(t, 25.0, ToCelsius(25, UnitMetric), 1e-9)
	assert.InDelta(t, 36.0, WindToKmh(10, UnitMetric), 1e-9)
	assert.InDelta(t, 16.0934, WindToKmh(10, UnitImperial), 1e-9)
}

func TestEstimateUVIndex(t *testing.T) {
	assert.Equal(t, 1, EstimateUVIndex(-10, 0))
	assert.Equal(t, 1, EstimateUVIndex(2, 0))
	assert.Equal(t, 6, EstimateUVIndex(25, 1))
	assert.Equal(t, 11, EstimateUVIndex(60, 3))
	assert.Equal(t, "Low", UVLevel(2))
	assert.Equal(t, "Moderate", UVLevel(5))
	assert.Equal(t, "High", UVLevel(9))
}

func TestSummarizeTrend(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	series := func(n int, temp, pop, wind float64) []ForecastPoint {
		out := make([]ForecastPoint, n)
		for i := range out {
			out[i] = ForecastPoint{Time: start.Add(time.Duration(i) * 3 * time.Hour), Temp: temp, PrecipProbability: pop, WindSpeed: wind}
		}
		return out
	}

	t.Run("warming", func(t *testing.T) {
		trend, ok := SummarizeTrend(20, series(10, 22, 0.5, 3))
		require.True(t, ok)
		assert.Equal(t, TrendWarming, trend.Direction)
		assert.InDelta(t, 22.0, trend.NextMeanTemp, 1e-9)
		assert.InDelta(t, 50.0, trend.PrecipRiskPct, 1e-9)
		assert.InDelta(t, 3.0, trend.MaxWind, 1e-9)
	})

	t.Run("cooling", func(t *testing.T) {
		trend, ok := SummarizeTrend(20, series(8, 18, 0, 0))
		require.True(t, ok)
		assert.Equal(t, TrendCooling, trend.Direction)
	})

	t.Run("boundaries", func(t *testing.T) {
		tests := []struct {
			name string
			mean float64
			want string
		}{
			{"just over one warmer", 21.01, TrendWarming},
			{"exactly one warmer", 21, TrendCooling},
			{"within one", 20.99, TrendStable},
			{"within one cooler", 19.01, TrendStable},
			{"exactly one cooler", 19, TrendCooling},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				trend, _ := SummarizeTrend(20, series(8, tt.mean, 0, 0))
				assert.Equal(t, tt.want, trend.Direction)
			})
		}
	})

	t.Run("only the next eight points set direction", func(t *testing.T) {
		points := append(series(8, 20, 0, 0), series(16, 40, 0, 0)...)
		trend, _ := SummarizeTrend(20, points)
		assert.Equal(t, TrendStable, trend.Direction)
	})

	t.Run("wind and rain look at 24 points", func(t *testing.T) {
		points := series(30, 20, 0, 2)
		points[23].WindSpeed = 9
		points[25].WindSpeed = 20
		trend, _ := SummarizeTrend(20, points)
		assert.InDelta(t, 9.0, trend.MaxWind, 1e-9)
	})

	t.Run("empty forecast", func(t *testing.T) {
		_, ok := SummarizeTrend(20, nil)
		assert.False(t, ok)
	})
}

func TestAssembleBundle(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	current := CurrentConditions{
		Temp:      95,
		Humidity:  50,
		WindSpeed: 30,
		Condition: Condition{Main: "Thunderstorm", Description: "thunderstorm with rain"},
	}
	forecast := []ForecastPoint{point(fixed, 90, "clear sky", 0.1)}

	b := AssembleBundle(current, forecast, NewAirQuality(3), UnitImperial, time.UTC)

	assert.Equal(t, fixed, b.FetchedAt)
	assert.Equal(t, UnitImperial, b.Unit)
	assert.Equal(t, "Moderate", b.AirQuality.Label)
	assert.Contains(t, b.Daily, "2024-06-01")
	assert.InDelta(t, 6.7, b.Pollen.Overall, 1e-9)
	assert.Equal(t, SimulatedNotice, b.Notice)

	var kinds []AlertKind
	for _, a := range b.Alerts {
		kinds = append(kinds, a.Kind)
	}
	assert.Equal(t, []AlertKind{AlertHeat, AlertWind, AlertStorm}, kinds)
}

func TestAssembleBundle_NoForecast(t *testing.T) {
	b := AssembleBundle(CurrentConditions{Temp: 10}, nil, DefaultAirQuality(), UnitMetric, time.UTC)

	require.NotNil(t, b.Forecast)
	assert.Empty(t, b.Forecast)
	assert.Empty(t, b.Daily)
	assert.Empty(t, b.Alerts)
	assert.Equal(t, SimulatedNotice, b.Notice)
}
