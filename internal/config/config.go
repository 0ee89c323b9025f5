package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-map/internal/store"
	"github.com/i474232898/weather-map/internal/weather"
)

var validate = validator.New()

type AppConfig struct {
	Port string `validate:"required,numeric"`

	// Database holding the weather table.
	DBDriver string `validate:"omitempty,oneof=sqlite sqlite3 pgx postgres postgresql"`
	DBDSN    string `validate:"required"`
	DBTable  string `validate:"required"`

	// RowLimit caps how many rows are loaded at startup (0 = all).
	RowLimit int `validate:"gte=0"`

	EmptySelection weather.EmptySelection
	MapStyle       string  `validate:"required"`
	MapZoom        float64 `validate:"gte=0,lte=22"`
	MapAnimate     bool

	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string

	// FetchInterval controls how often the collector fetches each location.
	// The scheduler works in whole minutes.
	FetchInterval time.Duration `validate:"gte=1m"`
	HTTPTimeout   time.Duration `validate:"gt=0"`

	// Locations tracked by the collector.
	Locations []weather.Location

	S3 store.S3Config

	KafkaBroker string
	KafkaTopic  string `validate:"required_with=KafkaBroker"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.DBDriver = os.Getenv("DB_DRIVER")
	cfg.DBDSN = getenvDefault("DB_DSN", "weather.db")
	cfg.DBTable = getenvDefault("DB_TABLE", "all_weather_data")
	if err := store.ValidateTable(cfg.DBTable); err != nil {
		return nil, fmt.Errorf("invalid DB_TABLE: %w", err)
	}
	cfg.RowLimit = getenvInt("ROW_LIMIT", 0)

	policy, err := weather.ParseEmptySelection(os.Getenv("EMPTY_SELECTION"))
	if err != nil {
		return nil, fmt.Errorf("invalid EMPTY_SELECTION: %w", err)
	}
	cfg.EmptySelection = policy
	cfg.MapStyle = getenvDefault("MAP_STYLE", "carto-positron")
	cfg.MapZoom = getenvFloat("MAP_ZOOM", 2)
	cfg.MapAnimate = getenvBool("MAP_ANIMATE", false)

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	// Collector interval: default 15 minutes.
	cfg.FetchInterval, err = time.ParseDuration(getenvDefault("FETCH_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.HTTPTimeout, err = time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	locs, err := loadLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	cfg.S3 = store.S3Config{
		Endpoint:  os.Getenv("MINIO_ENDPOINT"),
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		Bucket:    getenvDefault("MINIO_BUCKET", "weather"),
	}

	cfg.KafkaBroker = os.Getenv("KAFKA_BROKER")
	cfg.KafkaTopic = os.Getenv("KAFKA_TOPIC")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadLocations pairs WEATHER_LOCATION_CITY and WEATHER_LOCATION_COUNTRY
// entries by position.
func loadLocations() ([]weather.Location, error) {
	city := os.Getenv("WEATHER_LOCATION_CITY")
	country := os.Getenv("WEATHER_LOCATION_COUNTRY")
	if strings.TrimSpace(city) == "" && strings.TrimSpace(country) == "" {
		return nil, nil
	}

	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}
	var locs []weather.Location
	for i := range cities {
		c := strings.TrimSpace(cities[i])
		cc := strings.TrimSpace(countries[i])
		if c == "" || cc == "" {
			return nil, fmt.Errorf("location %d: city and country are required", i+1)
		}
		locs = append(locs, weather.Location{
			City:    c,
			Country: strings.ToUpper(cc),
		})
	}

	return locs, nil
}

// HasKafka reports whether the collector should publish to Kafka.
func (c *AppConfig) HasKafka() bool {
	return c.KafkaBroker != "" && c.KafkaTopic != ""
}

// Addr returns the listen address for the HTTP server.
func (c *AppConfig) Addr() string {
	return ":" + c.Port
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
