package widget

import (
	"context"
	"errors"

	"github.com/i474232898/weather-widget/internal/common"
	"github.com/i474232898/weather-widget/internal/geolocation"
	"github.com/i474232898/weather-widget/internal/weather"
)

// User-facing messages.
const (
	MsgEnterCity         = "Enter the city name!"
	MsgNetwork           = "Network error. Please check your internet connection."
	MsgCityNotFound      = "City not found. Please try another name."
	MsgServer            = "Server error. Please try again later."
	MsgTimeout           = "Request timed out. Please try again later."
	MsgFetchFailed       = "Failed to fetch weather data"
	MsgFetchFailedCoords = "Failed to fetch weather data for your location"
	MsgGeoUnsupported    = "Geolocation is not supported on this device"
	MsgGeoPermission     = "Location permission denied"
	MsgGeoUnavailable    = "Location information unavailable"
	MsgGeoTimeout        = "Location request timed out"
	MsgGeoUnknown        = "An unknown error occurred"
)

// ErrGeolocationUnsupported is returned by LocateAndFetch without a Locator.
var ErrGeolocationUnsupported = errors.New("geolocation is not supported")

type lookupMode int

const (
	byCity lookupMode = iota
	byCoords
)

// lookupMessage turns a current-conditions failure into the text shown to
// the user. City lookups recognise "city not found"; coordinate lookups show
// the API message as-is.
func lookupMessage(err error, mode lookupMode) string {
	var (
		netErr  *weather.NetworkError
		httpErr *weather.HTTPError
		apiErr  *weather.APIError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout
	case errors.As(err, &netErr):
		return MsgNetwork
	case errors.As(err, &apiErr):
		if mode == byCity && common.HasAnyFold(apiErr.Message, "city not found") {
			return MsgCityNotFound
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	case errors.As(err, &httpErr):
		return MsgServer
	case err != nil && err.Error() != "":
		return err.Error()
	}

	if mode == byCoords {
		return MsgFetchFailedCoords
	}
	return MsgFetchFailed
}

// geolocationMessage maps a Locator failure to one of four messages.
func geolocationMessage(err error) string {
	var geoErr *geolocation.Error
	if !errors.As(err, &geoErr) {
		return MsgGeoUnknown
	}
	switch geoErr.Kind {
	case geolocation.KindPermissionDenied:
		return MsgGeoPermission
	case geolocation.KindPositionUnavailable:
		return MsgGeoUnavailable
	case geolocation.KindTimeout:
		return MsgGeoTimeout
	default:
		return MsgGeoUnknown
	}
}
