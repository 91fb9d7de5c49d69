package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-widget/internal/weather"
	"github.com/i474232898/weather-widget/internal/widget"
)

var validate = validator.New()

// Widget is the set of orchestrator actions exposed over HTTP.
type Widget interface {
	State() widget.AppState
	FetchWeatherByCity(ctx context.Context, city string) error
	FetchWeatherByCoords(ctx context.Context, lat, lon float64) error
	LocateAndFetch(ctx context.Context) error
	ToggleUnitSystem(ctx context.Context) error
	ToggleFavorite()
	ClearCache() error
}

// Nudger schedules a refresh of the displayed city.
type Nudger interface {
	Nudge()
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. nudger may be nil.
func RegisterRoutes(app *fiber.App, w Widget, nudger Nudger) {
	v1 := app.Group("/api/v1")

	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-widget",
		})
	})

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(newStateView(w.State()))
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		return c.JSON(w.State().SearchHistory)
	})

	v1.Get("/favorites", func(c *fiber.Ctx) error {
		return c.JSON(w.State().Favorites)
	})

	v1.Post("/search", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		err := w.FetchWeatherByCity(c.UserContext(), req.City)
		if errors.Is(err, weather.ErrEmptyCity) {
			return c.Status(fiber.StatusBadRequest).JSON(newStateView(w.State()))
		}
		return c.JSON(newStateView(w.State()))
	})

	v1.Post("/coords", func(c *fiber.Ctx) error {
		var req coordsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		_ = w.FetchWeatherByCoords(c.UserContext(), *req.Lat, *req.Lon)
		return c.JSON(newStateView(w.State()))
	})

	v1.Post("/locate", func(c *fiber.Ctx) error {
		err := w.LocateAndFetch(c.UserContext())
		if errors.Is(err, widget.ErrGeolocationUnsupported) {
			return c.Status(fiber.StatusNotImplemented).JSON(newStateView(w.State()))
		}
		return c.JSON(newStateView(w.State()))
	})

	v1.Post("/units/toggle", func(c *fiber.Ctx) error {
		_ = w.ToggleUnitSystem(c.UserContext())
		return c.JSON(newStateView(w.State()))
	})

	v1.Post("/favorites/toggle", func(c *fiber.Ctx) error {
		w.ToggleFavorite()
		return c.JSON(newStateView(w.State()))
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		if nudger == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "refresh is not available")
		}
		nudger.Nudge()
		return c.SendStatus(fiber.StatusAccepted)
	})

	v1.Delete("/cache", func(c *fiber.Ctx) error {
		if err := w.ClearCache(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to clear cache")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// searchRequest is the body of POST /search. An empty city is accepted so
// the widget can report it the same way the UI does.
type searchRequest struct {
	City string `json:"city" validate:"max=100"`
}

// coordsRequest is the body of POST /coords.
type coordsRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

// stateView adds the derived flags a client would otherwise compute.
type stateView struct {
	widget.AppState
	IsError     bool `json:"isError"`
	IsCelsius   bool `json:"isCelsius"`
	IsFavorited bool `json:"isFavorited"`
}

func newStateView(s widget.AppState) stateView {
	return stateView{
		AppState:    s,
		IsError:     s.IsError(),
		IsCelsius:   s.IsCelsius(),
		IsFavorited: s.IsFavorited(),
	}
}
