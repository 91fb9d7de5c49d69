package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-widget/internal/api/http"
	"github.com/i474232898/weather-widget/internal/config"
	"github.com/i474232898/weather-widget/internal/geolocation"
	"github.com/i474232898/weather-widget/internal/scheduler"
	"github.com/i474232898/weather-widget/internal/store"
	"github.com/i474232898/weather-widget/internal/weather"
	"github.com/i474232898/weather-widget/internal/weather/providers"
	"github.com/i474232898/weather-widget/internal/widget"
)

var cfg *config.AppConfig

func main() {
	rootCmd := &cobra.Command{
		Use:           "weather-widget",
		Short:         "Weather widget backend",
		Long:          "Fetches current conditions and forecast, caches them and keeps search history and favorites.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return nil
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	getCmd := &cobra.Command{
		Use:   "get [city]",
		Short: "Show weather for a city (default city when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			units, _ := cmd.Flags().GetString("units")
			output, _ := cmd.Flags().GetString("output")
			city := cfg.DefaultCity
			if len(args) == 1 {
				city = args[0]
			}
			return runLookup(cmd.Context(), units, output, func(ctx context.Context, o *widget.Orchestrator) error {
				return o.FetchWeatherByCity(ctx, city)
			})
		},
	}
	getCmd.Flags().StringP("units", "u", "", "Unit system (metric, imperial)")
	getCmd.Flags().StringP("output", "o", "text", "Output format (text, json)")

	locateCmd := &cobra.Command{
		Use:   "locate",
		Short: "Show weather for the configured position",
		RunE: func(cmd *cobra.Command, args []string) error {
			units, _ := cmd.Flags().GetString("units")
			output, _ := cmd.Flags().GetString("output")
			return runLookup(cmd.Context(), units, output, func(ctx context.Context, o *widget.Orchestrator) error {
				return o.LocateAndFetch(ctx)
			})
		},
	}
	locateCmd.Flags().StringP("units", "u", "", "Unit system (metric, imperial)")
	locateCmd.Flags().StringP("output", "o", "text", "Output format (text, json)")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWidget(func(o *widget.Orchestrator) error {
				o.LoadSearchHistory()
				printList(os.Stdout, "Recent searches", o.State().SearchHistory)
				return nil
			})
		},
	}

	favoritesCmd := &cobra.Command{
		Use:   "favorites",
		Short: "List favorite cities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWidget(func(o *widget.Orchestrator) error {
				o.LoadFavorites()
				printList(os.Stdout, "Favorites", o.State().Favorites)
				return nil
			})
		},
	}

	clearCacheCmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Remove the cached snapshot and forecast",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWidget(func(o *widget.Orchestrator) error {
				if err := o.ClearCache(); err != nil {
					return err
				}
				fmt.Println("Cache cleared")
				return nil
			})
		},
	}

	rootCmd.AddCommand(serveCmd, getCmd, locateCmd, historyCmd, favoritesCmd, clearCacheCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runLookup loads persisted lists, runs action and prints the resulting state.
func runLookup(ctx context.Context, units, output string, action func(context.Context, *widget.Orchestrator) error) error {
	if units != "" {
		cfg.Units = weather.ParseUnits(units)
	}
	return withWidget(func(o *widget.Orchestrator) error {
		o.LoadSearchHistory()
		o.LoadFavorites()

		err := action(ctx, o)
		s := o.State()
		if err != nil {
			return errors.New(s.ErrorMessage)
		}
		return printState(os.Stdout, s, output)
	})
}

func withWidget(fn func(o *widget.Orchestrator) error) error {
	kv, closeStore, err := openStore(cfg.StorePath)
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(newOrchestrator(kv))
}

func openStore(path string) (store.KV, func(), error) {
	if path == "" {
		return store.NewMemoryStore(0), func() {}, nil
	}
	db, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	return db, func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: closing store: %v", err)
		}
	}, nil
}

func newOrchestrator(kv store.KV) *widget.Orchestrator {
	if cfg.APIKey == "" {
		log.Printf("INFO: WEATHER_API_KEY is not set; the weather API will reject requests")
	}

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{
		Timeout: cfg.RequestTimeout,
	}
	client := providers.NewOpenWeatherProvider(httpClient, cfg.BaseURL, cfg.APIKey)

	return widget.New(widget.Options{
		Client:         client,
		Store:          kv,
		Locator:        newLocator(),
		DefaultCity:    cfg.DefaultCity,
		Units:          cfg.Units,
		CacheMaxAge:    cfg.CacheMaxAge,
		RequestTimeout: cfg.RequestTimeout,
		TimeZone:       cfg.TimeZone,
	})
}

// newLocator prefers fixed coordinates, then a geocoded address. It returns
// nil when neither is configured.
func newLocator() geolocation.Locator {
	switch {
	case cfg.HasPosition():
		return geolocation.NewStatic(*cfg.Latitude, *cfg.Longitude)
	case cfg.HasAddress():
		return geolocation.NewAddressLocator(cfg.GeocoderAPIKey, cfg.LocationStreet, cfg.LocationCity, cfg.LocationCountry)
	default:
		return nil
	}
}

func serve() error {
	kv, closeStore, err := openStore(cfg.StorePath)
	if err != nil {
		return err
	}
	defer closeStore()

	o := newOrchestrator(kv)

	// Scheduler that periodically refreshes the displayed city.
	sched := scheduler.New(o, cfg.RefreshInterval, 3*cfg.RequestTimeout)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	go func() {
		if err := o.Initialize(context.Background()); err != nil {
			log.Printf("ERROR: initial lookup failed: %v", err)
		}
	}()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-widget",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          3*cfg.RequestTimeout + 5*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, o, sched)

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	return nil
}
