package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-widget/internal/weather"
)

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

var validate = validator.New()

// BreakerConfig controls when the circuit opens around the weather API.
type BreakerConfig struct {
	Name string
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval clears failure counts while closed.
	Interval time.Duration
	// Timeout is how long the circuit stays open.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig mirrors the settings used for the other providers.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:                name,
		MaxRequests:         5,
		Interval:            1 * time.Minute,
		Timeout:             2 * time.Minute,
		ConsecutiveFailures: 5,
	}
}

func newBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
}

// doRequest executes req once through the circuit breaker. There are no
// retries: every failure is returned to the caller.
//
// Transport failures and an open circuit come back as *weather.NetworkError,
// non-2xx statuses as *weather.HTTPError. Only transport failures and 5xx
// count against the breaker.
func doRequest(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) (*http.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}

	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, &weather.HTTPError{StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.NetworkError{Err: fmt.Errorf("%w: %v", errCircuitOpen, err)}
		}
		var httpErr *weather.HTTPError
		if errors.As(err, &httpErr) {
			return nil, err
		}
		return nil, &weather.NetworkError{Err: err}
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &weather.HTTPError{StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// apiCode holds the "cod" field, which the API sends as a number on the
// current-conditions endpoint and as a string on the forecast endpoint.
type apiCode struct {
	value    string
	isString bool
	present  bool
}

func (c *apiCode) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	c.present = true
	if len(b) > 0 && b[0] == '"' {
		c.isString = true
		return json.Unmarshal(b, &c.value)
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	c.value = n.String()
	return nil
}

// numeric reports whether the code is the number want.
func (c apiCode) numeric(want string) bool {
	return c.present && !c.isString && c.value == want
}

// text reports whether the code is the string want.
func (c apiCode) text(want string) bool {
	return c.present && c.isString && c.value == want
}

func (c apiCode) String() string {
	if !c.present {
		return "<missing>"
	}
	return c.value
}

// messageText extracts "message" when it is a string; the forecast endpoint
// sends a number there on success.
func messageText(m any) string {
	if s, ok := m.(string); ok {
		return s
	}
	return ""
}

// decodeJSON decodes the response body into v. Any decode
// failure fails closed into *weather.APIError.
func decodeJSON(resp *http.Response, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &weather.APIError{Message: fmt.Sprintf("malformed response: %v", err)}
	}
	return nil
}

func validateShape(v any) error {
	if err := validate.Struct(v); err != nil {
		return &weather.APIError{Message: fmt.Sprintf("unexpected response shape: %v", err)}
	}
	return nil
}
