package weather

import (
	"strings"
	"time"
)

// AggregateReadings reduces multiple provider readings for one location into a
// single Record. Temperature is averaged, the newest timestamp wins and the
// coordinates come from the location or, failing that, the first reading that
// reports them. It returns false when no coordinates are known.
func AggregateReadings(loc Location, readings []ProviderReading) (Record, bool) {
	if len(readings) == 0 {
		return Record{}, false
	}

	var (
		sumTemp  float64
		newestTS time.Time
		lat, lon *float64
		city     = loc.City
		country  = strings.ToUpper(loc.Country)
	)

	if loc.HasCoordinates() {
		lat, lon = loc.Lat, loc.Lon
	}

	for _, r := range readings {
		sumTemp += r.TemperatureMaxC

		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}
		if lat == nil && r.Lat != nil && r.Lon != nil {
			lat, lon = r.Lat, r.Lon
		}
		if city == "" && r.City != "" {
			city = r.City
		}
		if country == "" && r.CountryCode != "" {
			country = strings.ToUpper(r.CountryCode)
		}
	}

	if lat == nil || lon == nil {
		return Record{}, false
	}
	if newestTS.IsZero() {
		newestTS = time.Now().UTC()
	}

	return Record{
		Latitude:       *lat,
		Longitude:      *lon,
		City:           city,
		Timestamp:      newestTS.Unix(),
		TemperatureMax: sumTemp / float64(len(readings)),
		CountryCode:    country,
	}, true
}
