package weather

import (
	"time"

	"github.com/i474232898/weather-widget/internal/format"
)

// HourlyLimit is the number of 3-hour steps shown (about 24 hours).
const HourlyLimit = 8

// DeriveHourlyForecast maps the first HourlyLimit forecast entries to
// display-ready rows. A nil or empty forecast yields an empty, non-nil slice.
func DeriveHourlyForecast(f *Forecast, loc *time.Location) []HourlyEntry {
	if f == nil || len(f.Entries) == 0 {
		return []HourlyEntry{}
	}

	n := len(f.Entries)
	if n > HourlyLimit {
		n = HourlyLimit
	}

	out := make([]HourlyEntry, 0, n)
	for _, p := range f.Entries[:n] {
		out = append(out, HourlyEntry{
			Time:        format.ClockTime(p.Time, loc),
			Temp:        format.Round(p.Temperature),
			FeelsLike:   format.Round(p.FeelsLike),
			Description: p.Description,
			Icon:        p.Icon,
			Humidity:    p.Humidity,
			WindSpeed:   p.WindSpeed,
			Pop:         format.Percent(p.Pop),
		})
	}
	return out
}
