package openweather

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
)

// OpenWeatherMap API response types.

// statusCode is the body "cod" field. The current endpoint sends it as a
// number and the forecast endpoint as a string.
type statusCode int

func (s *statusCode) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return err
	}
	*s = statusCode(n)
	return nil
}

// check treats an absent code as success.
func (s statusCode) check(message string) error {
	if s == 0 || s == 200 {
		return nil
	}
	if message == "" {
		message = "unexpected response code"
	}
	return &APIError{StatusCode: int(s), Message: message}
}

type weatherEntry struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func firstCondition(w []weatherEntry) domain.Condition {
	if len(w) == 0 {
		return domain.Condition{}
	}
	return domain.Condition{ID: w[0].ID, Main: w[0].Main, Description: w[0].Description, Icon: w[0].Icon}
}

type currentResponse struct {
	Cod     statusCode     `json:"cod"`
	Message string         `json:"message"`
	Name    string         `json:"name"`
	Dt      int64          `json:"dt"`
	Weather []weatherEntry `json:"weather"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Visibility *int `json:"visibility"`
	Sys        struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

func (r currentResponse) toDomain() domain.CurrentConditions {
	return domain.CurrentConditions{
		Place:      r.Name,
		Temp:       r.Main.Temp,
		FeelsLike:  r.Main.FeelsLike,
		TempMin:    r.Main.TempMin,
		TempMax:    r.Main.TempMax,
		Humidity:   r.Main.Humidity,
		Pressure:   r.Main.Pressure,
		WindSpeed:  r.Wind.Speed,
		WindDeg:    r.Wind.Deg,
		Visibility: r.Visibility,
		Condition:  firstCondition(r.Weather),
		Sunrise:    unixUTC(r.Sys.Sunrise),
		Sunset:     unixUTC(r.Sys.Sunset),
		ObservedAt: unixUTC(r.Dt),
	}
}

type forecastResponse struct {
	Cod     statusCode      `json:"cod"`
	Message json.RawMessage `json:"message"` // a number on success, text on failure
	List    []forecastItem  `json:"list"`
}

type forecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []weatherEntry `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Pop float64 `json:"pop"`
}

func (f forecastItem) toDomain() domain.ForecastPoint {
	return domain.ForecastPoint{
		Time:              unixUTC(f.Dt),
		Temp:              f.Main.Temp,
		Humidity:          f.Main.Humidity,
		Condition:         firstCondition(f.Weather),
		PrecipProbability: f.Pop,
		WindSpeed:         f.Wind.Speed,
	}
}

type airResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
	} `json:"list"`
}

type directPlace struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

// textMessage returns a JSON string value, or "" for numbers and absent fields.
func textMessage(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func unixUTC(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
