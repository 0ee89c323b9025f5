package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/i474232898/weather-map/internal/config"
	"github.com/i474232898/weather-map/internal/scheduler"
	"github.com/i474232898/weather-map/internal/store"
	"github.com/i474232898/weather-map/internal/weather"
	"github.com/i474232898/weather-map/internal/weather/providers"
)

var once = flag.Bool("once", false, "fetch every location once and exit")

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.Fatalf("ERROR: %v", err)
	}
}

// run owns every resource the collector opens so deferred cleanup always
// happens before main exits.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker).
	var provs []weather.Provider
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}
	// Open-Meteo needs no API key, but locations must be geocoded first.
	if cfg.GeocoderAPIKey != "" {
		provs = append(provs, providers.NewOpenMeteoProvider(httpClient, providers.GoogleGeocoder(cfg.GeocoderAPIKey)))
	}
	if len(provs) == 0 {
		return errors.New("no providers configured; set OPENWEATHER_API_KEY, WEATHERAPI_API_KEY or GEOCODER_API_KEY")
	}

	src, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}()

	sqlSink, err := store.NewSQLSink(ctx, src, cfg.DBTable)
	if err != nil {
		return fmt.Errorf("failed to prepare %s: %w", cfg.DBTable, err)
	}
	sinks := []weather.Sink{sqlSink}

	if cfg.S3.Enabled() {
		archive, err := store.NewS3Archive(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to set up S3 archive: %w", err)
		}
		sinks = append(sinks, archive)
	}

	if cfg.HasKafka() {
		publisher := store.NewKafkaPublisher(cfg.KafkaBroker, cfg.KafkaTopic)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Printf("failed to close kafka publisher: %v", err)
			}
		}()
		sinks = append(sinks, publisher)
	}

	service := weather.NewService(provs, sinks)
	sched := scheduler.New(cfg.Locations, cfg.FetchInterval, service)

	if *once {
		sched.RunOnce(ctx)
		return nil
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	log.Printf("INFO: collecting %d locations every %s", len(cfg.Locations), cfg.FetchInterval)
	<-ctx.Done()
	log.Println("INFO: shutting down collector")
	return nil
}
