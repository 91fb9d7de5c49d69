// Package geolocation models the platform "where am I" capability as a
// single blocking call that returns a position or a typed Error.
package geolocation

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind enumerates why a position could not be obtained.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindPermissionDenied
	KindPositionUnavailable
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission denied"
	case KindPositionUnavailable:
		return "position unavailable"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is returned by a Locator when it cannot produce a position.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geolocation %s: %v", e.Kind, e.Err)
	}
	return "geolocation " + e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Position is a resolved latitude/longitude pair.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locator resolves the user's current position.
type Locator interface {
	Locate(ctx context.Context) (Position, error)
}

// Static always returns a fixed, configured position.
type Static struct {
	Position Position
}

// NewStatic creates a Locator for fixed coordinates.
func NewStatic(lat, lon float64) *Static {
	return &Static{Position: Position{Latitude: lat, Longitude: lon}}
}

func (s *Static) Locate(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, fromContext(err)
	}
	if s.Position.Latitude < -90 || s.Position.Latitude > 90 ||
		s.Position.Longitude < -180 || s.Position.Longitude > 180 {
		return Position{}, &Error{Kind: KindPositionUnavailable, Err: errors.New("configured coordinates out of range")}
	}
	return s.Position, nil
}

// fromContext maps a context failure to a typed Error.
func fromContext(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindUnknown, Err: err}
}
