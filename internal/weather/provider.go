package weather

import (
	"context"
	"time"
)

// ProviderReading represents a single provider's normalized reading
// that can be reduced into a Record.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	// Coordinates and names as reported by the provider, if any.
	Lat         *float64
	Lon         *float64
	City        string
	CountryCode string

	TemperatureMaxC float64
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// Sink is a destination for records produced by the collector.
type Sink interface {
	Name() string
	Write(ctx context.Context, rec Record) error
}
