// Package widget owns the weather widget's application state and the
// actions a presentation layer invokes on it: lookups by city or position,
// the forecast that follows each lookup, the local cache, search history,
// favorites and the unit system.
package widget

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-widget/internal/geolocation"
	"github.com/i474232898/weather-widget/internal/store"
	"github.com/i474232898/weather-widget/internal/weather"
)

// DefaultRequestTimeout bounds every remote call.
const DefaultRequestTimeout = 10 * time.Second

// Options configures an Orchestrator. Client and Store are required.
type Options struct {
	Client weather.Client
	Store  store.KV
	// Locator is nil when no position source exists.
	Locator geolocation.Locator

	DefaultCity    string
	Units          weather.Units
	CacheMaxAge    time.Duration
	RequestTimeout time.Duration
	// TimeZone is used for forecast time labels.
	TimeZone *time.Location
	// Now is swapped out in tests.
	Now func() time.Time
}

// Orchestrator sequences the current-conditions and forecast calls and
// publishes their results into AppState.
//
// Actions are safe to call from several goroutines. Each lookup family
// carries a monotonic sequence number; only the most recently issued request
// may commit to state, so a slow stale response never overwrites a newer one.
type Orchestrator struct {
	client  weather.Client
	store   store.KV
	locator geolocation.Locator

	cacheMaxAge    time.Duration
	requestTimeout time.Duration
	tz             *time.Location
	now            func() time.Time

	mu          sync.Mutex
	state       AppState
	weatherSeq  uint64
	forecastSeq uint64
}

// New creates an Orchestrator with defaults filled in.
func New(opts Options) *Orchestrator {
	units := opts.Units
	if !units.Valid() {
		units = weather.UnitsMetric
	}
	maxAge := opts.CacheMaxAge
	if maxAge <= 0 {
		maxAge = DefaultCacheMaxAge
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	tz := opts.TimeZone
	if tz == nil {
		tz = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		client:         opts.Client,
		store:          opts.Store,
		locator:        opts.Locator,
		cacheMaxAge:    maxAge,
		requestTimeout: timeout,
		tz:             tz,
		now:            now,
		state:          newAppState(opts.DefaultCity, units),
	}
}

// State returns a copy of the current state.
func (o *Orchestrator) State() AppState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Initialize loads persisted lists and the cache, then always fetches the
// current city live. A cache hit only pre-populates the view and marks it
// offline until the live result lands.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	o.LoadSearchHistory()
	o.LoadFavorites()

	if o.LoadCachedSnapshot() {
		o.mu.Lock()
		o.state.IsOffline = true
		o.mu.Unlock()
	}

	o.mu.Lock()
	city := o.state.City
	o.mu.Unlock()

	return o.FetchWeatherByCity(ctx, city)
}

// LoadSearchHistory replaces the history with the persisted list.
func (o *Orchestrator) LoadSearchHistory() {
	list := o.loadList(KeySearchHistory)
	o.mu.Lock()
	o.state.SearchHistory = list
	o.mu.Unlock()
}

// LoadFavorites replaces the favorites with the persisted list.
func (o *Orchestrator) LoadFavorites() {
	list := o.loadList(KeyFavorites)
	o.mu.Lock()
	o.state.Favorites = list
	o.mu.Unlock()
}

// LoadCachedSnapshot republishes the cached snapshot and forecast if the
// cache is younger than the max age. Read and parse failures count as a miss.
func (o *Orchestrator) LoadCachedSnapshot() bool {
	entry, err := o.readCache()
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("ERROR: Failed to load cached data: %v", err)
		}
		return false
	}
	if !entry.Fresh(o.now(), o.cacheMaxAge) {
		log.Printf("DEBUG: cache written at %s is stale", entry.Timestamp.Format(time.RFC3339))
		return false
	}

	snap := entry.Weather
	forecast := entry.Forecast
	if forecast.Entries == nil {
		forecast.Entries = []weather.ForecastPoint{}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.WeatherInfo = &snap
	o.state.ForecastInfo = forecast
	o.state.HourlyForecast = weather.DeriveHourlyForecast(&forecast, o.tz)
	o.state.City = snap.City
	return true
}

// RecordSearch puts city at the front of the history and persists it.
func (o *Orchestrator) RecordSearch(city string) {
	if city == "" {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recordSearchLocked(city)
}

func (o *Orchestrator) recordSearchLocked(city string) {
	o.state.SearchHistory = weather.PushHistory(o.state.SearchHistory, city)
	o.saveList(KeySearchHistory, o.state.SearchHistory)
}

// ToggleFavorite adds or removes the displayed city from favorites. It does
// nothing unless a valid snapshot is displayed.
func (o *Orchestrator) ToggleFavorite() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.state.WeatherInfo.Valid() {
		return
	}
	o.state.Favorites, _ = weather.ToggleFavorite(o.state.Favorites, o.state.WeatherInfo.City)
	o.saveList(KeyFavorites, o.state.Favorites)
}

// ToggleUnitSystem flips metric/imperial. If a valid snapshot is displayed
// it is fetched again under the new units.
func (o *Orchestrator) ToggleUnitSystem(ctx context.Context) error {
	o.mu.Lock()
	o.state.Units = o.state.Units.Toggle()
	refetch := o.state.WeatherInfo.Valid()
	city := o.state.City
	o.mu.Unlock()

	if !refetch {
		return nil
	}
	return o.FetchWeatherByCity(ctx, city)
}

// Refresh fetches the displayed city again. It does nothing unless a valid
// snapshot is displayed.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	o.mu.Lock()
	if !o.state.WeatherInfo.Valid() {
		o.mu.Unlock()
		return nil
	}
	city := o.state.City
	o.mu.Unlock()

	return o.FetchWeatherByCity(ctx, city)
}

// FetchWeatherByCity looks up current conditions for city and, on success,
// its forecast. The returned error is already reflected in state.
func (o *Orchestrator) FetchWeatherByCity(ctx context.Context, city string) error {
	o.mu.Lock()
	o.state.City = city
	if strings.TrimSpace(city) == "" {
		o.state.ErrorMessage = MsgEnterCity
		o.mu.Unlock()
		return weather.ErrEmptyCity
	}
	seq := o.beginLookupLocked()
	units := o.state.Units
	o.mu.Unlock()

	return o.lookup(ctx, seq, weather.CityLocation(strings.TrimSpace(city)), units, byCity)
}

// FetchWeatherByCoords looks up current conditions for a position and, on
// success, its forecast. City is set to the name the API resolves.
func (o *Orchestrator) FetchWeatherByCoords(ctx context.Context, lat, lon float64) error {
	o.mu.Lock()
	seq := o.beginLookupLocked()
	units := o.state.Units
	o.mu.Unlock()

	return o.lookup(ctx, seq, weather.CoordsLocation(lat, lon), units, byCoords)
}

// beginLookupLocked issues a new lookup sequence number and enters Loading.
func (o *Orchestrator) beginLookupLocked() uint64 {
	o.weatherSeq++
	o.state.ErrorMessage = ""
	o.state.IsLoading = true
	return o.weatherSeq
}

func (o *Orchestrator) lookup(ctx context.Context, seq uint64, loc weather.Location, units weather.Units, mode lookupMode) error {
	trace := uuid.NewString()
	defer o.endLookup(seq)

	log.Printf("INFO: [%s] lookup #%d for %s (%s)", trace, seq, loc.Key(), units)

	callCtx, cancel := context.WithTimeout(ctx, o.requestTimeout)
	snap, err := o.client.Current(callCtx, loc, units)
	cancel()

	o.mu.Lock()
	if seq != o.weatherSeq {
		o.mu.Unlock()
		log.Printf("DEBUG: [%s] dropping stale lookup #%d", trace, seq)
		return nil
	}
	if err != nil {
		log.Printf("ERROR: [%s] Weather API error: %v", trace, err)
		o.state.ErrorMessage = lookupMessage(err, mode)
		o.state.WeatherInfo = weather.FailedSnapshot()
		o.mu.Unlock()
		return err
	}

	o.state.WeatherInfo = snap
	o.state.IsOffline = false
	if mode == byCoords {
		o.state.City = snap.City
	}
	o.recordSearchLocked(snap.City)
	o.mu.Unlock()

	if err := o.fetchForecast(ctx, loc, seq); err != nil {
		log.Printf("DEBUG: [%s] forecast unavailable: %v", trace, err)
	}
	return nil
}

// endLookup leaves Loading unless a newer lookup has started since.
func (o *Orchestrator) endLookup(seq uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if seq == o.weatherSeq {
		o.state.IsLoading = false
	}
}

// FetchForecastByCity refreshes the forecast for city under the current units.
func (o *Orchestrator) FetchForecastByCity(ctx context.Context, city string) error {
	return o.fetchForecast(ctx, weather.CityLocation(strings.TrimSpace(city)), 0)
}

// FetchForecastByCoords refreshes the forecast for a position.
func (o *Orchestrator) FetchForecastByCoords(ctx context.Context, lat, lon float64) error {
	return o.fetchForecast(ctx, weather.CoordsLocation(lat, lon), 0)
}

// fetchForecast replaces the forecast and writes the cache. Failure empties
// the forecast but never touches the snapshot or the error message.
//
// A non-zero lookupSeq ties the forecast to the lookup that started it; the
// result is dropped once a newer lookup has been issued.
func (o *Orchestrator) fetchForecast(ctx context.Context, loc weather.Location, lookupSeq uint64) error {
	o.mu.Lock()
	o.forecastSeq++
	seq := o.forecastSeq
	o.state.IsForecastLoading = true
	units := o.state.Units
	o.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, o.requestTimeout)
	forecast, err := o.client.Forecast(callCtx, loc, units)
	cancel()

	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.forecastSeq {
		log.Printf("DEBUG: dropping stale forecast #%d for %s", seq, loc.Key())
		return nil
	}
	o.state.IsForecastLoading = false

	if lookupSeq != 0 && lookupSeq != o.weatherSeq {
		log.Printf("DEBUG: dropping forecast for superseded lookup #%d (%s)", lookupSeq, loc.Key())
		return nil
	}

	if err != nil {
		log.Printf("ERROR: Forecast API error: %v", err)
		o.state.ForecastInfo = weather.EmptyForecast()
		o.state.HourlyForecast = []weather.HourlyEntry{}
		return err
	}

	if forecast.Entries == nil {
		forecast.Entries = []weather.ForecastPoint{}
	}
	o.state.ForecastInfo = *forecast
	o.state.HourlyForecast = weather.DeriveHourlyForecast(forecast, o.tz)
	o.writeCache(o.state.WeatherInfo, *forecast)
	return nil
}

// LocateAndFetch asks the Locator for a position and looks it up.
func (o *Orchestrator) LocateAndFetch(ctx context.Context) error {
	if o.locator == nil {
		o.mu.Lock()
		o.state.ErrorMessage = MsgGeoUnsupported
		o.mu.Unlock()
		return ErrGeolocationUnsupported
	}

	o.mu.Lock()
	seq := o.beginLookupLocked()
	o.mu.Unlock()

	locCtx, cancel := context.WithTimeout(ctx, o.requestTimeout)
	pos, err := o.locator.Locate(locCtx)
	cancel()

	o.mu.Lock()
	if seq != o.weatherSeq {
		o.mu.Unlock()
		log.Printf("DEBUG: dropping position for superseded lookup #%d", seq)
		return nil
	}
	if err != nil {
		o.state.IsLoading = false
		o.state.ErrorMessage = geolocationMessage(err)
		o.mu.Unlock()
		log.Printf("ERROR: geolocation failed: %v", err)
		return err
	}
	units := o.state.Units
	o.mu.Unlock()

	return o.lookup(ctx, seq, weather.CoordsLocation(pos.Latitude, pos.Longitude), units, byCoords)
}
