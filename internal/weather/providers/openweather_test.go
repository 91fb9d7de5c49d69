package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-widget/internal/weather"
)

const currentOK = `{
	"cod": 200,
	"name": "Kauniainen",
	"sys": {"country": "FI"},
	"main": {"temp": 12.3, "feels_like": 11.1, "humidity": 71, "pressure": 1013},
	"wind": {"speed": 4.2},
	"weather": [{"description": "light rain", "icon": "10d"}]
}`

const forecastOK = `{
	"cod": "200",
	"message": 0,
	"city": {"name": "Kauniainen"},
	"list": [
		{"dt": 1717243200, "main": {"temp": 10.6, "feels_like": 9.4, "humidity": 80}, "weather": [{"description": "overcast clouds", "icon": "04d"}], "wind": {"speed": 3.1}, "pop": 0.42},
		{"dt": 1717254000, "main": {"temp": 11.2, "feels_like": 10.5, "humidity": 78}, "weather": [{"description": "light rain", "icon": "10d"}], "wind": {"speed": 3.4}, "pop": 0.8}
	]
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenWeatherProvider {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewOpenWeatherProvider(&http.Client{Timeout: 5 * time.Second}, ts.URL, "test-key")
}

func TestCurrent_ByCity(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("expected /weather, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "Kauniainen" {
			t.Errorf("expected q=Kauniainen, got %s", q.Get("q"))
		}
		if q.Get("units") != "metric" {
			t.Errorf("expected units=metric, got %s", q.Get("units"))
		}
		if q.Get("appid") != "test-key" {
			t.Errorf("expected appid=test-key, got %s", q.Get("appid"))
		}
		if q.Has("lat") || q.Has("lon") {
			t.Errorf("city lookup should not send coordinates")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, currentOK)
	})

	snap, err := p.Current(context.Background(), weather.CityLocation("Kauniainen"), weather.UnitsMetric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.Valid() {
		t.Fatalf("expected valid snapshot, got status %d", snap.Status)
	}
	if snap.City != "Kauniainen" || snap.Country != "FI" {
		t.Errorf("unexpected place: %s, %s", snap.City, snap.Country)
	}
	if snap.Temperature != 12.3 || snap.FeelsLike != 11.1 {
		t.Errorf("unexpected temperatures: %v / %v", snap.Temperature, snap.FeelsLike)
	}
	if snap.Humidity != 71 || snap.Pressure != 1013 || snap.WindSpeed != 4.2 {
		t.Errorf("unexpected readings: %+v", snap)
	}
	if snap.Description != "light rain" || snap.Icon != "10d" {
		t.Errorf("unexpected description: %q %q", snap.Description, snap.Icon)
	}
}

func TestCurrent_ByCoords(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("lat") != "60.1699" || q.Get("lon") != "24.9384" {
			t.Errorf("unexpected coordinates: lat=%s lon=%s", q.Get("lat"), q.Get("lon"))
		}
		if q.Get("units") != "imperial" {
			t.Errorf("expected units=imperial, got %s", q.Get("units"))
		}
		if q.Has("q") {
			t.Errorf("coordinate lookup should not send q")
		}
		fmt.Fprint(w, currentOK)
	})

	if _, err := p.Current(context.Background(), weather.CoordsLocation(60.1699, 24.9384), weather.UnitsImperial); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCurrent_StringCodIsAPIError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"cod": "200", "name": "X", "main": {"temp": 1, "feels_like": 1}, "weather": [{"description": "x"}]}`)
	})

	_, err := p.Current(context.Background(), weather.CityLocation("X"), weather.UnitsMetric)
	var apiErr *weather.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError for string cod on current endpoint, got %v", err)
	}
}

func TestCurrent_CityNotFoundWithOKStatus(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"cod": 404, "message": "city not found"}`)
	})

	_, err := p.Current(context.Background(), weather.CityLocation("Nowhere"), weather.UnitsMetric)
	var apiErr *weather.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "city not found" || apiErr.Code != "404" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}

func TestCurrent_ShapeMismatch(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"cod": 200, "name": "Kauniainen", "main": {"humidity": 50}, "weather": []}`)
	})

	_, err := p.Current(context.Background(), weather.CityLocation("Kauniainen"), weather.UnitsMetric)
	var apiErr *weather.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError for shape mismatch, got %v", err)
	}
}

func TestCurrent_MalformedJSON(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not json`)
	})

	_, err := p.Current(context.Background(), weather.CityLocation("Kauniainen"), weather.UnitsMetric)
	var apiErr *weather.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError for malformed body, got %v", err)
	}
}

func TestCurrent_HTTPError(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusUnauthorized, http.StatusBadGateway} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				fmt.Fprint(w, `{"cod": "404", "message": "city not found"}`)
			})

			_, err := p.Current(context.Background(), weather.CityLocation("Nowhere"), weather.UnitsMetric)
			var httpErr *weather.HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected HTTPError, got %v", err)
			}
			if httpErr.StatusCode != status {
				t.Errorf("expected status %d, got %d", status, httpErr.StatusCode)
			}
		})
	}
}

func TestCurrent_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	p := NewOpenWeatherProvider(&http.Client{Timeout: time.Second}, url, "k")
	_, err := p.Current(context.Background(), weather.CityLocation("Kauniainen"), weather.UnitsMetric)

	var netErr *weather.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestCurrent_ContextDeadline(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Current(ctx, weather.CityLocation("Kauniainen"), weather.UnitsMetric)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestCircuitOpensAfterServerErrors(t *testing.T) {
	var hits atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	p.WithBreaker(BreakerConfig{Name: "test", Timeout: time.Minute, ConsecutiveFailures: 2})

	for i := 0; i < 2; i++ {
		_, err := p.Current(context.Background(), weather.CityLocation("X"), weather.UnitsMetric)
		var httpErr *weather.HTTPError
		if !errors.As(err, &httpErr) {
			t.Fatalf("attempt %d: expected HTTPError, got %v", i, err)
		}
	}

	_, err := p.Current(context.Background(), weather.CityLocation("X"), weather.UnitsMetric)
	var netErr *weather.NetworkError
	if !errors.As(err, &netErr) || !errors.Is(err, errCircuitOpen) {
		t.Fatalf("expected open circuit NetworkError, got %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("expected no request while open, server saw %d", hits.Load())
	}
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	p.WithBreaker(BreakerConfig{Name: "test", Timeout: time.Minute, ConsecutiveFailures: 1})

	for i := 0; i < 3; i++ {
		_, err := p.Current(context.Background(), weather.CityLocation("X"), weather.UnitsMetric)
		var httpErr *weather.HTTPError
		if !errors.As(err, &httpErr) {
			t.Fatalf("attempt %d: expected HTTPError, got %v", i, err)
		}
	}
}

func TestForecast_OK(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("expected /forecast, got %s", r.URL.Path)
		}
		fmt.Fprint(w, forecastOK)
	})

	f, err := p.Forecast(context.Background(), weather.CityLocation("Kauniainen"), weather.UnitsMetric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.City != "Kauniainen" {
		t.Errorf("expected city Kauniainen, got %q", f.City)
	}
	if len(f.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(f.Entries))
	}
	first := f.Entries[0]
	if !first.Time.Equal(time.Unix(1717243200, 0)) {
		t.Errorf("unexpected time: %v", first.Time)
	}
	if first.Pop != 0.42 || first.Temperature != 10.6 || first.Description != "overcast clouds" {
		t.Errorf("unexpected first entry: %+v", first)
	}
}

func TestForecast_NumericCodIsAPIError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"cod": 200, "list": []}`)
	})

	_, err := p.Forecast(context.Background(), weather.CityLocation("Kauniainen"), weather.UnitsMetric)
	var apiErr *weather.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError for numeric cod on forecast endpoint, got %v", err)
	}
	if apiErr.Message != "Failed to fetch forecast" {
		t.Errorf("unexpected message: %q", apiErr.Message)
	}
}

func TestForecast_InvalidPop(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"cod": "200", "list": [{"dt": 1, "main": {"temp": 1, "feels_like": 1}, "weather": [{"description": "x"}], "pop": 3}]}`)
	})

	_, err := p.Forecast(context.Background(), weather.CityLocation("Kauniainen"), weather.UnitsMetric)
	var apiErr *weather.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError for out-of-range pop, got %v", err)
	}
}
