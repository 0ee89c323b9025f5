package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-map/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
// The daily maximum comes from the one-day forecast endpoint.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuit("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("days", "1")
		// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
		if loc.HasCoordinates() {
			values.Set("q", fmt.Sprintf("%f,%f", *loc.Lat, *loc.Lon))
		} else {
			q := loc.City
			if loc.Country != "" {
				q = fmt.Sprintf("%s,%s", loc.City, loc.Country)
			}
			values.Set("q", q)
		}

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.ProviderReading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Location struct {
			Name      string  `json:"name"`
			Lat       float64 `json:"lat"`
			Lon       float64 `json:"lon"`
			EpochTime int64   `json:"localtime_epoch"`
		} `json:"location"`
		Current struct {
			EpochTime int64   `json:"last_updated_epoch"`
			TempC     float64 `json:"temp_c"`
		} `json:"current"`
		Forecast struct {
			Days []struct {
				Day struct {
					MaxTempC float64 `json:"maxtemp_c"`
				} `json:"day"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.ProviderReading{}, err
	}
	if payload.Location.Name == "" {
		return weather.ProviderReading{}, errors.New("weatherapi response has no location")
	}

	var ts time.Time
	switch {
	case payload.Current.EpochTime > 0:
		ts = time.Unix(payload.Current.EpochTime, 0).UTC()
	case payload.Location.EpochTime > 0:
		ts = time.Unix(payload.Location.EpochTime, 0).UTC()
	default:
		ts = time.Now().UTC()
	}

	tempMax := payload.Current.TempC
	if len(payload.Forecast.Days) > 0 {
		tempMax = payload.Forecast.Days[0].Day.MaxTempC
	}

	// WeatherAPI reports full country names, so the country code is left to
	// the configured location.
	return weather.ProviderReading{
		ProviderName:    p.name,
		Timestamp:       ts,
		Lat:             float64Ptr(payload.Location.Lat),
		Lon:             float64Ptr(payload.Location.Lon),
		City:            payload.Location.Name,
		TemperatureMaxC: tempMax,
	}, nil
}
