package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-map/internal/weather"
)

// GeocodeFunc resolves a city and country to coordinates.
type GeocodeFunc func(city, country string) (lat, lon float64, err error)

var geocoderKeyOnce sync.Once

// GoogleGeocoder returns a GeocodeFunc backed by the Google Geocoding API.
func GoogleGeocoder(apiKey string) GeocodeFunc {
	geocoderKeyOnce.Do(func() {
		geocoder.ApiKey = apiKey
	})
	return func(city, country string) (float64, float64, error) {
		loc, err := geocoder.Geocoding(geocoder.Address{City: city, Country: country})
		if err != nil {
			return 0, 0, fmt.Errorf("geocode %s,%s: %w", city, country, err)
		}
		return loc.Latitude, loc.Longitude, nil
	}
}

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo only accepts coordinates, so locations without them are geocoded
// once and cached.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	geocode GeocodeFunc

	mu     sync.Mutex
	coords map[string][2]float64
}

func NewOpenMeteoProvider(client *http.Client, geocode GeocodeFunc) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuit("openmeteo"),
		geocode: geocode,
		coords:  make(map[string][2]float64),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) resolve(loc weather.Location) (float64, float64, error) {
	if loc.HasCoordinates() {
		return *loc.Lat, *loc.Lon, nil
	}
	if p.geocode == nil {
		return 0, 0, errors.New("openmeteo requires latitude and longitude")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.coords[loc.Key()]; ok {
		return c[0], c[1], nil
	}
	lat, lon, err := p.geocode(loc.City, loc.Country)
	if err != nil {
		return 0, 0, err
	}
	p.coords[loc.Key()] = [2]float64{lat, lon}
	return lat, lon, nil
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	lat, lon, err := p.resolve(loc)
	if err != nil {
		return weather.ProviderReading{}, err
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", lat))
		values.Set("longitude", fmt.Sprintf("%f", lon))
		values.Set("current_weather", "true")
		values.Set("daily", "temperature_2m_max")
		values.Set("forecast_days", "1")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.ProviderReading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			Time        string  `json:"time"`
		} `json:"current_weather"`
		Daily struct {
			TemperatureMax []float64 `json:"temperature_2m_max"`
		} `json:"daily"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.ProviderReading{}, err
	}

	// Open-Meteo reports ISO8601 without seconds or zone.
	ts, err := time.ParseInLocation("2006-01-02T15:04", payload.CurrentWeather.Time, time.UTC)
	if err != nil {
		ts = time.Now().UTC()
	}

	tempMax := payload.CurrentWeather.Temperature
	if len(payload.Daily.TemperatureMax) > 0 {
		tempMax = payload.Daily.TemperatureMax[0]
	}

	return weather.ProviderReading{
		ProviderName:    p.name,
		Timestamp:       ts,
		Lat:             float64Ptr(lat),
		Lon:             float64Ptr(lon),
		TemperatureMaxC: tempMax,
	}, nil
}
