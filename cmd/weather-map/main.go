package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-map/internal/api/http"
	"github.com/i474232898/weather-map/internal/config"
	"github.com/i474232898/weather-map/internal/store"
	"github.com/i474232898/weather-map/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Load the weather table once; nothing writes to it afterwards.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 2*time.Minute)
	src, err := store.Open(loadCtx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	records, err := src.LoadRecords(loadCtx, cfg.DBTable, cfg.RowLimit)
	cancelLoad()
	if cerr := src.Close(); cerr != nil {
		log.Printf("error closing database: %v", cerr)
	}
	if err != nil {
		log.Fatalf("failed to load %s: %v", cfg.DBTable, err)
	}

	data := store.NewMemoryStore(records)
	log.Printf("INFO: loaded %d records (%d countries, %d timestamps) from %s",
		data.Len(), len(data.CountryCodes()), len(data.Timestamps()), src.Driver())

	opts := view.DefaultOptions()
	opts.MapStyle = cfg.MapStyle
	opts.Zoom = cfg.MapZoom
	opts.EmptySelection = cfg.EmptySelection
	opts.Animate = cfg.MapAnimate
	renderer := view.NewRenderer(data, opts)

	app := fiber.New(fiber.Config{
		AppName:               "weather-map",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-map",
			"records": data.Len(),
		})
	})

	httpapi.RegisterRoutes(app, renderer, data)

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: serving weather map on %s", cfg.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
