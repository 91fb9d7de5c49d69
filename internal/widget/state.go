package widget

import (
	"github.com/i474232898/weather-widget/internal/weather"
)

// AppState is everything the presentation layer observes.
type AppState struct {
	City              string                   `json:"city"`
	WeatherInfo       *weather.WeatherSnapshot `json:"weatherInfo"`
	ForecastInfo      weather.Forecast         `json:"forecastInfo"`
	HourlyForecast    []weather.HourlyEntry    `json:"hourlyForecast"`
	IsLoading         bool                     `json:"isLoading"`
	IsForecastLoading bool                     `json:"isForecastLoading"`
	ErrorMessage      string                   `json:"errorMessage"`
	IsOffline         bool                     `json:"isOffline"`
	Units             weather.Units            `json:"units"`
	SearchHistory     []string                 `json:"searchHistory"`
	Favorites         []string                 `json:"favorites"`
}

func newAppState(city string, units weather.Units) AppState {
	return AppState{
		City:           city,
		ForecastInfo:   weather.EmptyForecast(),
		HourlyForecast: []weather.HourlyEntry{},
		Units:          units,
		SearchHistory:  []string{},
		Favorites:      []string{},
	}
}

// IsError reports that no valid snapshot is displayed.
func (s AppState) IsError() bool {
	return !s.WeatherInfo.Valid()
}

// IsCelsius reports whether temperatures are metric.
func (s AppState) IsCelsius() bool {
	return s.Units == weather.UnitsMetric
}

// IsFavorited reports whether the displayed city is a favorite.
func (s AppState) IsFavorited() bool {
	return s.WeatherInfo != nil && weather.Contains(s.Favorites, s.WeatherInfo.City)
}

// clone deep-copies the parts of the state that are mutated in place.
func (s AppState) clone() AppState {
	out := s
	if s.WeatherInfo != nil {
		snap := *s.WeatherInfo
		out.WeatherInfo = &snap
	}
	out.ForecastInfo.Entries = append([]weather.ForecastPoint(nil), s.ForecastInfo.Entries...)
	if out.ForecastInfo.Entries == nil {
		out.ForecastInfo.Entries = []weather.ForecastPoint{}
	}
	out.HourlyForecast = append([]weather.HourlyEntry{}, s.HourlyForecast...)
	out.SearchHistory = append([]string{}, s.SearchHistory...)
	out.Favorites = append([]string{}, s.Favorites...)
	return out
}
