package weather

import (
	"fmt"
	"strings"
	"time"
)

// StatusOK is the API status code carried by a valid snapshot.
const StatusOK = 200

// StatusFailed marks the sentinel snapshot published after a failed lookup.
const StatusFailed = 404

// Units is the measurement system requested from the API.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Toggle returns the other unit system.
func (u Units) Toggle() Units {
	if u == UnitsImperial {
		return UnitsMetric
	}
	return UnitsImperial
}

// Valid reports whether u is a known unit system.
func (u Units) Valid() bool {
	return u == UnitsMetric || u == UnitsImperial
}

// ParseUnits maps a config or query value to Units, defaulting to metric.
func ParseUnits(s string) Units {
	if strings.EqualFold(strings.TrimSpace(s), string(UnitsImperial)) {
		return UnitsImperial
	}
	return UnitsMetric
}

// Location is either a city name or a coordinate pair; only one is set.
type Location struct {
	City string   `json:"city,omitempty"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
}

// CityLocation builds a name-based Location.
func CityLocation(city string) Location {
	return Location{City: city}
}

// CoordsLocation builds a coordinate-based Location.
func CoordsLocation(lat, lon float64) Location {
	return Location{Lat: &lat, Lon: &lon}
}

// HasCoords reports whether the location is coordinate-based.
func (l Location) HasCoords() bool {
	return l.Lat != nil && l.Lon != nil
}

// Key returns a canonical string for logging and indexing.
func (l Location) Key() string {
	if l.HasCoords() {
		return fmt.Sprintf("%.4f,%.4f", *l.Lat, *l.Lon)
	}
	return strings.ToLower(strings.TrimSpace(l.City))
}

// WeatherSnapshot is one current-conditions result.
// Only a snapshot with Status == StatusOK carries real data.
type WeatherSnapshot struct {
	City        string  `json:"name"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temp"`
	FeelsLike   float64 `json:"feelsLike"`
	Description string  `json:"description"`
	Icon        string  `json:"icon,omitempty"`
	Humidity    int     `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	WindSpeed   float64 `json:"windSpeed"`
	Status      int     `json:"status"`
}

// FailedSnapshot returns the sentinel published when a lookup fails.
func FailedSnapshot() *WeatherSnapshot {
	return &WeatherSnapshot{Status: StatusFailed}
}

// Valid reports whether s is a successful snapshot.
func (s *WeatherSnapshot) Valid() bool {
	return s != nil && s.Status == StatusOK
}

// ForecastPoint is one time step of the forecast, as decoded.
type ForecastPoint struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temp"`
	FeelsLike   float64   `json:"feelsLike"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
	// Pop is the probability of precipitation in 0..1.
	Pop float64 `json:"pop"`
}

// Forecast is the ordered forecast series for one place.
// Entries are expected to be ordered by Time ascending.
type Forecast struct {
	City    string          `json:"city,omitempty"`
	Entries []ForecastPoint `json:"list"`
}

// EmptyForecast is the default forecast value: no entries.
func EmptyForecast() Forecast {
	return Forecast{Entries: []ForecastPoint{}}
}

// HourlyEntry is a display-ready forecast step.
type HourlyEntry struct {
	Time        string  `json:"time"`
	Temp        int     `json:"temp"`
	FeelsLike   int     `json:"feelsLike"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Pop         int     `json:"pop"`
}

// CacheEntry is the last good snapshot/forecast pair and when it was written.
type CacheEntry struct {
	Weather   WeatherSnapshot
	Forecast  Forecast
	Timestamp time.Time
}

// Fresh reports whether the entry is younger than maxAge at now.
func (e CacheEntry) Fresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(e.Timestamp) < maxAge
}
