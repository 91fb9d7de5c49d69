package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCity is returned when a lookup is requested with a blank city.
	ErrEmptyCity = errors.New("city name is empty")
)

// NetworkError wraps a transport-level failure: the request never produced
// an HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// APIError is a 2xx response whose payload reports failure or does not match
// the expected schema.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error: cod %s", e.Code)
}
