package weather

import (
	"context"
)

// Client abstracts the remote weather API: a current-conditions endpoint and
// a 5-day/3-hour forecast endpoint, each queried by city name or coordinates.
type Client interface {
	Current(ctx context.Context, loc Location, units Units) (*WeatherSnapshot, error)
	Forecast(ctx context.Context, loc Location, units Units) (*Forecast, error)
}
