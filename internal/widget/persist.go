package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/i474232898/weather-widget/internal/store"
	"github.com/i474232898/weather-widget/internal/weather"
)

// Store keys.
const (
	KeyWeatherCache   = "weatherCache"
	KeyForecastCache  = "forecastCache"
	KeyCacheTimestamp = "cacheTimestamp"
	KeySearchHistory  = "weatherSearchHistory"
	KeyFavorites      = "weatherFavorites"
)

// DefaultCacheMaxAge is how long a cached snapshot counts as fresh.
const DefaultCacheMaxAge = 30 * time.Minute

func (o *Orchestrator) loadList(key string) []string {
	raw, err := o.store.Get(key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("ERROR: failed to read %s: %v", key, err)
		}
		return []string{}
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		log.Printf("ERROR: failed to parse %s: %v", key, err)
		return []string{}
	}
	if list == nil {
		list = []string{}
	}
	return list
}

func (o *Orchestrator) saveList(key string, list []string) {
	data, err := json.Marshal(list)
	if err != nil {
		log.Printf("ERROR: failed to encode %s: %v", key, err)
		return
	}
	if err := o.store.Set(key, string(data)); err != nil {
		log.Printf("ERROR: failed to persist %s: %v", key, err)
	}
}

// writeCache stores the snapshot/forecast pair with the current time.
// Write failures are logged only.
func (o *Orchestrator) writeCache(snap *weather.WeatherSnapshot, forecast weather.Forecast) {
	if !snap.Valid() {
		return
	}

	weatherJSON, err := json.Marshal(snap)
	if err != nil {
		log.Printf("ERROR: Failed to cache weather data: %v", err)
		return
	}
	forecastJSON, err := json.Marshal(forecast)
	if err != nil {
		log.Printf("ERROR: Failed to cache weather data: %v", err)
		return
	}

	ts := strconv.FormatInt(o.now().UnixMilli(), 10)
	for _, kv := range [][2]string{
		{KeyWeatherCache, string(weatherJSON)},
		{KeyForecastCache, string(forecastJSON)},
		{KeyCacheTimestamp, ts},
	} {
		if err := o.store.Set(kv[0], kv[1]); err != nil {
			log.Printf("ERROR: Failed to cache weather data: %v", err)
			return
		}
	}
}

// readCache returns the cached entry if all keys are present and parse.
func (o *Orchestrator) readCache() (weather.CacheEntry, error) {
	var entry weather.CacheEntry

	weatherJSON, err := o.store.Get(KeyWeatherCache)
	if err != nil {
		return entry, err
	}
	forecastJSON, err := o.store.Get(KeyForecastCache)
	if err != nil {
		return entry, err
	}
	rawTS, err := o.store.Get(KeyCacheTimestamp)
	if err != nil {
		return entry, err
	}

	ms, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return entry, fmt.Errorf("invalid cache timestamp %q: %w", rawTS, err)
	}
	entry.Timestamp = time.UnixMilli(ms)

	if err := json.Unmarshal([]byte(weatherJSON), &entry.Weather); err != nil {
		return entry, fmt.Errorf("invalid cached weather: %w", err)
	}
	if err := json.Unmarshal([]byte(forecastJSON), &entry.Forecast); err != nil {
		return entry, fmt.Errorf("invalid cached forecast: %w", err)
	}
	return entry, nil
}

// ClearCache removes the cached snapshot and forecast.
func (o *Orchestrator) ClearCache() error {
	var errs []error
	for _, key := range []string{KeyWeatherCache, KeyForecastCache, KeyCacheTimestamp} {
		if err := o.store.Remove(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
