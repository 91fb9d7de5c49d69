package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/i474232898/weather-widget/internal/weather"
)

type AppConfig struct {
	APIKey  string
	BaseURL string

	// DefaultCity is shown on startup when nothing is cached.
	DefaultCity string
	Units       weather.Units

	// StorePath selects the SQLite store; empty keeps everything in memory.
	StorePath string

	RequestTimeout time.Duration
	CacheMaxAge    time.Duration
	// RefreshInterval re-fetches the displayed city (0 = disabled).
	RefreshInterval time.Duration

	// Fixed position for locate; both nil when unset.
	Latitude  *float64
	Longitude *float64

	// Address geocoded for locate when no fixed position is configured.
	GeocoderAPIKey  string
	LocationStreet  string
	LocationCity    string
	LocationCountry string

	TimeZone *time.Location

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.APIKey = os.Getenv("WEATHER_API_KEY")
	cfg.BaseURL = os.Getenv("WEATHER_BASE_URL")
	cfg.DefaultCity = getenvDefault("DEFAULT_CITY", "Kauniainen")

	cfg.Units = weather.ParseUnits(getenvDefault("UNITS", string(weather.UnitsMetric)))
	cfg.StorePath = os.Getenv("STORE_PATH")

	var err error
	if cfg.RequestTimeout, err = getenvDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheMaxAge, err = getenvDuration("CACHE_MAX_AGE", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 0); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 || cfg.CacheMaxAge <= 0 || cfg.RefreshInterval < 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT and CACHE_MAX_AGE must be positive, REFRESH_INTERVAL non-negative")
	}

	if err := loadPosition(cfg); err != nil {
		return nil, err
	}
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.LocationStreet = os.Getenv("LOCATION_STREET")
	cfg.LocationCity = os.Getenv("LOCATION_CITY")
	cfg.LocationCountry = os.Getenv("LOCATION_COUNTRY")

	tz, err := time.LoadLocation(getenvDefault("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.TimeZone = tz

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// HasPosition reports whether a fixed position is configured.
func (c *AppConfig) HasPosition() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// HasAddress reports whether an address can be geocoded for locate.
func (c *AppConfig) HasAddress() bool {
	return c.GeocoderAPIKey != "" && (c.LocationStreet != "" || c.LocationCity != "")
}

func loadPosition(cfg *AppConfig) error {
	lat, lon := os.Getenv("LOCATION_LAT"), os.Getenv("LOCATION_LON")
	if lat == "" && lon == "" {
		return nil
	}
	if lat == "" || lon == "" {
		return fmt.Errorf("LOCATION_LAT and LOCATION_LON must be set together")
	}

	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return fmt.Errorf("invalid LOCATION_LAT: %w", err)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return fmt.Errorf("invalid LOCATION_LON: %w", err)
	}
	cfg.Latitude, cfg.Longitude = &la, &lo
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
