package providers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-widget/internal/weather"
)

// DefaultBaseURL is the public OpenWeatherMap 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherProvider implements weather.Client for OpenWeatherMap-compatible APIs.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider creates a client against baseURL. An empty baseURL
// selects DefaultBaseURL.
func NewOpenWeatherProvider(client *http.Client, baseURL, apiKey string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: newBreaker(DefaultBreakerConfig("openweather")),
	}
}

// WithBreaker replaces the circuit breaker settings.
func (p *OpenWeatherProvider) WithBreaker(cfg BreakerConfig) *OpenWeatherProvider {
	p.circuit = newBreaker(cfg)
	return p
}

type currentPayload struct {
	Cod     apiCode `json:"cod"`
	Message any     `json:"message"`
	Name    string  `json:"name" validate:"required"`
	Sys     struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      *float64 `json:"temp" validate:"required"`
		FeelsLike *float64 `json:"feels_like" validate:"required"`
		Humidity  int      `json:"humidity" validate:"gte=0,lte=100"`
		Pressure  float64  `json:"pressure" validate:"gte=0"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed" validate:"gte=0"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather" validate:"required,min=1"`
}

type forecastPayload struct {
	Cod     apiCode `json:"cod"`
	Message any     `json:"message"`
	City    struct {
		Name string `json:"name"`
	} `json:"city"`
	List []forecastItem `json:"list" validate:"dive"`
}

type forecastItem struct {
	Dt   int64 `json:"dt" validate:"required"`
	Main struct {
		Temp      *float64 `json:"temp" validate:"required"`
		FeelsLike *float64 `json:"feels_like" validate:"required"`
		Humidity  int      `json:"humidity" validate:"gte=0,lte=100"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather" validate:"required,min=1"`
	Wind struct {
		Speed float64 `json:"speed" validate:"gte=0"`
	} `json:"wind"`
	Pop float64 `json:"pop" validate:"gte=0,lte=1"`
}

// Current fetches current conditions. Success requires a numeric cod of 200.
func (p *OpenWeatherProvider) Current(ctx context.Context, loc weather.Location, units weather.Units) (*weather.WeatherSnapshot, error) {
	resp, err := p.get(ctx, "weather", loc, units)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload currentPayload
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	if !payload.Cod.numeric("200") {
		msg := messageText(payload.Message)
		if msg == "" {
			msg = "City not found"
		}
		return nil, &weather.APIError{Code: payload.Cod.String(), Message: msg}
	}
	if err := validateShape(payload); err != nil {
		return nil, err
	}

	return &weather.WeatherSnapshot{
		City:        payload.Name,
		Country:     payload.Sys.Country,
		Temperature: *payload.Main.Temp,
		FeelsLike:   *payload.Main.FeelsLike,
		Description: payload.Weather[0].Description,
		Icon:        payload.Weather[0].Icon,
		Humidity:    payload.Main.Humidity,
		Pressure:    payload.Main.Pressure,
		WindSpeed:   payload.Wind.Speed,
		Status:      weather.StatusOK,
	}, nil
}

// Forecast fetches the 5-day/3-hour forecast. Success requires the string cod "200".
func (p *OpenWeatherProvider) Forecast(ctx context.Context, loc weather.Location, units weather.Units) (*weather.Forecast, error) {
	resp, err := p.get(ctx, "forecast", loc, units)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload forecastPayload
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	if !payload.Cod.text("200") {
		msg := messageText(payload.Message)
		if msg == "" {
			msg = "Failed to fetch forecast"
		}
		return nil, &weather.APIError{Code: payload.Cod.String(), Message: msg}
	}
	if err := validateShape(payload); err != nil {
		return nil, err
	}

	forecast := &weather.Forecast{
		City:    payload.City.Name,
		Entries: make([]weather.ForecastPoint, 0, len(payload.List)),
	}
	for _, item := range payload.List {
		forecast.Entries = append(forecast.Entries, weather.ForecastPoint{
			Time:        time.Unix(item.Dt, 0).UTC(),
			Temperature: *item.Main.Temp,
			FeelsLike:   *item.Main.FeelsLike,
			Description: item.Weather[0].Description,
			Icon:        item.Weather[0].Icon,
			Humidity:    item.Main.Humidity,
			WindSpeed:   item.Wind.Speed,
			Pop:         item.Pop,
		})
	}
	return forecast, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, endpoint string, loc weather.Location, units weather.Units) (*http.Response, error) {
	values := url.Values{}
	if loc.HasCoords() {
		values.Set("lat", strconv.FormatFloat(*loc.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(*loc.Lon, 'f', -1, 64))
	} else {
		values.Set("q", loc.City)
	}
	values.Set("units", string(units))
	values.Set("appid", p.apiKey)

	u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	log.Printf("DEBUG: %s %s request for %s (%s)", p.name, endpoint, loc.Key(), units)
	return doRequest(ctx, p.client, p.circuit, req)
}
