package domain

import (
	"math"
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Alert thresholds in metric units.
const (
	heatThresholdC     = 32.0
	freezeThresholdC   = -5.0
	windThresholdKmh   = 40.0
	floodHumidityPct   = 80.0
	msToKmh            = 3.6
	mphToKmh           = 1.60934
	trendWindowPoints  = 8  // ~24h of 3-hour steps
	precipWindowPoints = 24 // ~3 days of 3-hour steps
)

// DailyAggregates groups forecast points by calendar date in loc and
// summarizes each group. Every point lands in exactly one group. A nil loc
// means time.Local.
func DailyAggregates(points []ForecastPoint, loc *time.Location) map[string]DailyAggregate {
	out := make(map[string]DailyAggregate)
	if len(points) == 0 {
		return out
	}
	if loc == nil {
		loc = time.Local
	}

	type group struct {
		temps      []float64
		conditions []string
		pops       []float64
	}
	groups := make(map[string]*group)
	for _, p := range points {
		key := p.Time.In(loc).Format(dateLayout)
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
		}
		g.temps = append(g.temps, p.Temp)
		g.conditions = append(g.conditions, p.Condition.Description)
		g.pops = append(g.pops, p.PrecipProbability)
	}

	for key, g := range groups {
		maxT, minT := g.temps[0], g.temps[0]
		for _, t := range g.temps[1:] {
			maxT = math.Max(maxT, t)
			minT = math.Min(minT, t)
		}
		out[key] = DailyAggregate{
			Date:                 key,
			MaxTemp:              maxT,
			MinTemp:              minT,
			DominantCondition:    dominant(g.conditions),
			AvgPrecipProbability: mean(g.pops),
			Points:               len(g.temps),
		}
	}
	return out
}

// SortedDates returns the keys of a daily aggregate map in ascending order.
func SortedDates(daily map[string]DailyAggregate) []string {
	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// dominant returns the most frequent value; ties go to the value seen first.
func dominant(values []string) string {
	counts := make(map[string]int, len(values))
	order := make([]string, 0, len(values))
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best, bestCount := "", 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// EstimatePollen simulates tree, grass and weed pollen levels (0..10) from
// temperature in °C and relative humidity. Not a measurement.
func EstimatePollen(tempC, humidity float64) PollenEstimate {
	tree := clamp((tempC-5)*0.5-humidity*0.05, 0, 10)

	var grass float64
	if tempC > 15 {
		grass = clamp((tempC-10)*0.4, 0, 10)
	}

	var weed float64
	if tempC > 20 {
		weed = clamp((30-humidity)*0.2, 0, 10)
	}

	return PollenEstimate{
		Tree:    round1(tree),
		Grass:   round1(grass),
		Weed:    round1(weed),
		Overall: round1((tree + grass + weed) / 3),
	}
}

// PollenLevel buckets a 0..10 pollen value.
func PollenLevel(v float64) string {
	return lowModerateHigh(v)
}

// EstimateUVIndex simulates a UV index from temperature in °C plus a caller
// supplied jitter in [0,3]. The result is clamped to 1..11. Not a measurement.
func EstimateUVIndex(tempC float64, jitter int) int {
	uv := int(tempC/5) + jitter
	if uv < 1 {
		return 1
	}
	if uv > 11 {
		return 11
	}
	return uv
}

// UVLevel buckets a UV index.
func UVLevel(uv int) string {
	return lowModerateHigh(float64(uv))
}

func lowModerateHigh(v float64) string {
	switch {
	case v < 3:
		return "Low"
	case v < 6:
		return "Moderate"
	default:
		return "High"
	}
}

// AlertKind identifies the rule that produced an alert.
type AlertKind string

const (
	AlertHeat   AlertKind = "heat"
	AlertFreeze AlertKind = "freeze"
	AlertWind   AlertKind = "wind"
	AlertStorm  AlertKind = "storm"
	AlertFlood  AlertKind = "flood"
)

// Alert is a warning produced by one threshold rule.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
}

type alertInput struct {
	tempC     float64
	windKmh   float64
	condition string // lower-cased provider group, e.g. "rain"
	humidity  float64
}

type alertRule struct {
	kind    AlertKind
	message string
	fires   func(alertInput) bool
}

// alertRules are evaluated independently and in this order.
var alertRules = []alertRule{
	{
		kind:    AlertHeat,
		message: "Heat Warning: Temperatures above 32°C - risk of heatstroke.",
		fires:   func(in alertInput) bool { return in.tempC > heatThresholdC },
	},
	{
		kind:    AlertFreeze,
		message: "Freezing Warning: Below -5°C - frostbite and icy roads possible.",
		fires:   func(in alertInput) bool { return in.tempC < freezeThresholdC },
	},
	{
		kind:    AlertWind,
		message: "High Wind Warning: Gusts over 40 km/h - secure outdoor items.",
		fires:   func(in alertInput) bool { return in.windKmh > windThresholdKmh },
	},
	{
		kind:    AlertStorm,
		message: "Thunderstorm Alert: Lightning and heavy rain expected.",
		fires: func(in alertInput) bool {
			return strings.Contains(in.condition, "thunder") || strings.Contains(in.condition, "storm")
		},
	},
	{
		kind:    AlertFlood,
		message: "Heavy Rain Advisory: Flooding risk in low areas.",
		fires: func(in alertInput) bool {
			return (in.condition == "rain" || in.condition == "drizzle") && in.humidity > floodHumidityPct
		},
	},
}

// EvaluateAlerts applies every alert rule to the given metric inputs and
// returns all that fire. The condition is matched case-insensitively.
func EvaluateAlerts(tempC, windKmh float64, condition string, humidity float64) []Alert {
	in := alertInput{
		tempC:     tempC,
		windKmh:   windKmh,
		condition: strings.ToLower(strings.TrimSpace(condition)),
		humidity:  humidity,
	}
	alerts := make([]Alert, 0, len(alertRules))
	for _, r := range alertRules {
		if r.fires(in) {
			alerts = append(alerts, Alert{Kind: r.kind, Message: r.message})
		}
	}
	return alerts
}

// BundleAlerts converts current conditions from unit to °C and km/h and
// evaluates the alert rules against the provider's condition group.
func BundleAlerts(current CurrentConditions, unit Unit) []Alert {
	return EvaluateAlerts(
		ToCelsius(current.Temp, unit),
		WindToKmh(current.WindSpeed, unit),
		current.Condition.Main,
		current.Humidity,
	)
}

// RealFeel returns a perceived temperature in the same unit as temp.
// Metric expects °C and wind in m/s; imperial applies the NWS heat-index
// regression in °F, which ignores wind.
func RealFeel(temp, humidity, wind float64, unit Unit) float64 {
	if unit == UnitImperial {
		return HeatIndexF(temp, humidity)
	}
	vapor := 6.105 * math.Pow(10, 7.5*temp/(237.7+temp))
	return temp + 0.33*(humidity/100)*(vapor-10) - wind*0.1
}

// HeatIndexF is the Rothfusz regression used by the US National Weather
// Service, in °F.
func HeatIndexF(tempF, humidity float64) float64 {
	t, rh := tempF, humidity
	return -42.379 +
		2.04901523*t +
		10.14333127*rh -
		0.22475541*t*rh -
		0.00683783*t*t -
		0.05481717*rh*rh +
		0.00122874*t*t*rh +
		0.00085282*t*rh*rh -
		0.00000199*t*t*rh*rh
}

// ToCelsius converts a temperature reported in unit to °C.
func ToCelsius(temp float64, unit Unit) float64 {
	if unit == UnitImperial {
		return FahrenheitToCelsius(temp)
	}
	return temp
}

func FahrenheitToCelsius(f float64) float64 { return (f - 32) * 5 / 9 }

func CelsiusToFahrenheit(c float64) float64 { return c*9/5 + 32 }

// WindToKmh converts a wind speed reported in unit (m/s or mph) to km/h.
func WindToKmh(speed float64, unit Unit) float64 {
	if unit == UnitImperial {
		return speed * mphToKmh
	}
	return speed * msToKmh
}

// Trend directions.
const (
	TrendWarming = "warming"
	TrendStable  = "stable"
	TrendCooling = "cooling"
)

// Trend summarizes the near-term forecast relative to current conditions.
type Trend struct {
	Direction     string  `json:"direction"`
	NextMeanTemp  float64 `json:"next_mean_temp"`
	PrecipRiskPct float64 `json:"precip_risk_pct"`
	MaxWind       float64 `json:"max_wind"`
}

// SummarizeTrend compares the mean temperature of the next eight points with
// the current temperature: warming above one degree more, stable within less
// than one degree, cooling otherwise (so exactly one degree either way
// counts as cooling). It also reports mean precipitation probability and peak wind over the next 24
// points. ok is false when there is no forecast.
func SummarizeTrend(currentTemp float64, forecast []ForecastPoint) (trend Trend, ok bool) {
	if len(forecast) == 0 {
		return Trend{}, false
	}

	next := forecast[:min(trendWindowPoints, len(forecast))]
	temps := make([]float64, len(next))
	for i, p := range next {
		temps[i] = p.Temp
	}
	avg := mean(temps)

	window := forecast[:min(precipWindowPoints, len(forecast))]
	pops := make([]float64, len(window))
	var maxWind float64
	for i, p := range window {
		pops[i] = p.PrecipProbability
		maxWind = math.Max(maxWind, p.WindSpeed)
	}

	var direction string
	switch {
	case avg > currentTemp+1:
		direction = TrendWarming
	case math.Abs(avg-currentTemp) < 1:
		direction = TrendStable
	default:
		direction = TrendCooling
	}

	return Trend{
		Direction:     direction,
		NextMeanTemp:  round1(avg),
		PrecipRiskPct: math.Round(mean(pops) * 100),
		MaxWind:       maxWind,
	}, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
