// Package domain models the weather data shown on the dashboard and the
// derived indicators computed from it.
//
// # Data Source
//
// Raw observations come from the OpenWeatherMap 2.5 API: current conditions
// (/weather), a 5-day forecast in 3-hour steps (/forecast, ~40 points) and
// air pollution (/air_pollution). Adapters translate those payloads into
// [CurrentConditions], [ForecastPoint] and [AirQuality]; nothing in this
// package performs I/O.
//
// # Units
//
// Temperatures and wind speeds are kept in the unit system the provider was
// queried with:
//
//	metric:   °C, wind in m/s
//	imperial: °F, wind in mph
//
// Rules with fixed thresholds (alerts, pollen) convert to °C and km/h first.
// See [ToCelsius] and [WindToKmh].
//
// # Derived indicators
//
// Daily aggregates group forecast points by local calendar date:
//
//	max/min temperature, most frequent condition description (ties go to the
//	first one seen), mean precipitation probability.
//
// Alerts are independent threshold rules that may all fire together:
//
//	heat   temp > 32°C
//	freeze temp < -5°C
//	wind   wind > 40 km/h
//	storm  condition contains "thunder" or "storm"
//	flood  condition is rain or drizzle and humidity > 80%
//
// Real-feel uses a closed-form approximation, not a physical model:
//
//	metric:   T + 0.33*(RH/100)*(6.105*10^(7.5T/(237.7+T)) - 10) - 0.1*wind
//	imperial: NWS Rothfusz heat-index regression in °F
//
// # Simulated values
//
// Pollen and UV figures are heuristic placeholders derived from temperature
// and humidity. They are not measurements. Every [Bundle] carries
// [SimulatedNotice] next to its pollen estimate, and the trend report repeats
// it beside the UV index.
package domain
