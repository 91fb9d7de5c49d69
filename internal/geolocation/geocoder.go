package geolocation

import (
	"context"
	"errors"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-widget/internal/common"
)

// AddressLocator resolves a configured street address to coordinates through
// the Google geocoding API. It stands in for a device position source on
// hosts that have none.
type AddressLocator struct {
	address geocoder.Address
	// geocode is swapped out in tests.
	geocode func(geocoder.Address) (geocoder.Location, error)
}

// NewAddressLocator configures the geocoder key and the address to resolve.
func NewAddressLocator(apiKey, street, city, country string) *AddressLocator {
	geocoder.ApiKey = apiKey
	return &AddressLocator{
		address: geocoder.Address{
			Street:  street,
			City:    city,
			Country: country,
		},
		geocode: geocoder.Geocoding,
	}
}

// Locate runs the geocoding call and waits for it or for ctx.
func (l *AddressLocator) Locate(ctx context.Context) (Position, error) {
	if l.address.City == "" && l.address.Street == "" {
		return Position{}, &Error{Kind: KindPositionUnavailable, Err: errors.New("no address configured")}
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		loc, err := l.geocode(l.address)
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return Position{}, fromContext(ctx.Err())
	case r := <-done:
		if r.err != nil {
			return Position{}, classify(r.err)
		}
		return Position{Latitude: r.loc.Latitude, Longitude: r.loc.Longitude}, nil
	}
}

// classify maps geocoding API failures onto the four error kinds.
func classify(err error) *Error {
	msg := err.Error()
	switch {
	case common.HasAnyFold(msg, "REQUEST_DENIED", "denied", "api key"):
		return &Error{Kind: KindPermissionDenied, Err: err}
	case common.HasAnyFold(msg, "ZERO_RESULTS", "not found", "no results"):
		return &Error{Kind: KindPositionUnavailable, Err: err}
	case common.HasAnyFold(msg, "timeout", "deadline"):
		return &Error{Kind: KindTimeout, Err: err}
	default:
		return &Error{Kind: KindUnknown, Err: err}
	}
}
