package weather

import (
	"math"
	"time"
)

// Record is one row of the weather table. Records are loaded once and never
// mutated afterwards.
type Record struct {
	Latitude       float64 `json:"lat"`
	Longitude      float64 `json:"long"`
	City           string  `json:"city"`
	Timestamp      int64   `json:"datetime"` // epoch seconds
	TemperatureMax float64 `json:"tempMax"`
	CountryCode    string  `json:"countryCode"`
}

// Time returns the record timestamp as UTC time.
func (r Record) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// Plottable reports whether the coordinates and temperature are finite
// numbers that can be placed and colored on the map.
func (r Record) Plottable() bool {
	return finite(r.Latitude) && finite(r.Longitude) && finite(r.TemperatureMax)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Location represents a logical place for which the collector fetches weather.
// City/Country must be provided; Lat/Lon are optional.
type Location struct {
	City    string   `json:"city"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// Key returns a canonical string key for this location.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// HasCoordinates reports whether both Lat and Lon are set.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}
