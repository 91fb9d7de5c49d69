package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/i474232898/weather-widget/internal/format"
	"github.com/i474232898/weather-widget/internal/widget"
)

func printState(w io.Writer, s widget.AppState, output string) error {
	if output == "json" {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	info := s.WeatherInfo
	if !info.Valid() {
		return fmt.Errorf("no weather data for %s", s.City)
	}
	units := string(s.Units)
	deg := format.TemperatureUnit(units)

	title := info.City
	if info.Country != "" {
		title += ", " + info.Country
	}
	if s.IsFavorited() {
		title += " ★"
	}

	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintf(w, "Temperature: %d%s (feels like %d%s)\n", format.Round(info.Temperature), deg, format.Round(info.FeelsLike), deg)
	fmt.Fprintf(w, "Conditions:  %s\n", format.CapitalizeFirstLetter(info.Description))
	fmt.Fprintf(w, "Humidity:    %d%%\n", info.Humidity)
	fmt.Fprintf(w, "Pressure:    %d mm Hg\n", format.PressureMm(info.Pressure))
	fmt.Fprintf(w, "Wind:        %.1f %s\n", info.WindSpeed, format.WindUnit(units))

	if len(s.HourlyForecast) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Next hours:")
		for _, h := range s.HourlyForecast {
			fmt.Fprintf(w, "  %s  %3d%s  %-20s  %3d%%\n", h.Time, h.Temp, deg, format.CapitalizeFirstLetter(h.Description), h.Pop)
		}
	}
	return nil
}

func printList(w io.Writer, title string, items []string) {
	fmt.Fprintln(w, title+":")
	if len(items) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for i, item := range items {
		fmt.Fprintf(w, "  %d. %s\n", i+1, item)
	}
}
