package format

import (
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// hPa to mmHg.
const pressureMmFactor = 0.750062

// CapitalizeFirstLetter upper-cases the first rune of s.
func CapitalizeFirstLetter(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// PressureMm converts a pressure in hPa to mmHg, rounded to the nearest integer.
func PressureMm(hpa float64) int {
	return int(math.Round(hpa * pressureMmFactor))
}

// ClockTime renders t as a 24h "HH:MM" label in loc.
// A nil loc falls back to the process local zone.
func ClockTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("15:04")
}

// Round returns v rounded half away from zero as an int.
func Round(v float64) int {
	return int(math.Round(v))
}

// Percent turns a 0..1 probability into a whole percent.
func Percent(p float64) int {
	return int(math.Round(p * 100))
}

// TemperatureUnit returns the display suffix for a unit system name.
func TemperatureUnit(units string) string {
	if strings.EqualFold(units, "imperial") {
		return "°F"
	}
	return "°C"
}

// WindUnit returns the wind speed suffix for a unit system name.
func WindUnit(units string) string {
	if strings.EqualFold(units, "imperial") {
		return "mph"
	}
	return "m/s"
}
