package store

import (
	"log"
	"slices"

	"github.com/dolthub/swiss"

	"github.com/i474232898/weather-map/internal/weather"
)

// MemoryStore is the read-only, ordered record collection loaded once at
// startup. It is safe for concurrent readers because nothing writes to it
// after construction.
type MemoryStore struct {
	records    []weather.Record
	countries  []string
	timestamps []int64
}

// NewMemoryStore takes ownership of records and indexes their distinct
// country codes (first-seen order) and timestamps (ascending). Records that
// cannot be plotted (NaN or infinite values) are dropped.
func NewMemoryStore(records []weather.Record) *MemoryStore {
	kept := records[:0]
	for _, r := range records {
		if r.Plottable() {
			kept = append(kept, r)
		}
	}
	if dropped := len(records) - len(kept); dropped > 0 {
		log.Printf("INFO: dropped %d records with non-finite values", dropped)
	}
	records = kept

	seenCountry := swiss.NewMap[string, struct{}](64)
	seenTS := swiss.NewMap[int64, struct{}](uint32(len(records)/8 + 1))

	s := &MemoryStore{records: records}
	for _, r := range records {
		if r.CountryCode != "" && !seenCountry.Has(r.CountryCode) {
			seenCountry.Put(r.CountryCode, struct{}{})
			s.countries = append(s.countries, r.CountryCode)
		}
		if !seenTS.Has(r.Timestamp) {
			seenTS.Put(r.Timestamp, struct{}{})
			s.timestamps = append(s.timestamps, r.Timestamp)
		}
	}
	slices.Sort(s.timestamps)

	return s
}

// Records returns the full collection. Callers must not modify it.
func (s *MemoryStore) Records() []weather.Record {
	return s.records
}

// Len returns the number of loaded records.
func (s *MemoryStore) Len() int {
	return len(s.records)
}

// CountryCodes returns the distinct country codes in first-seen order.
func (s *MemoryStore) CountryCodes() []string {
	return s.countries
}

// Timestamps returns the distinct timestamps in ascending order.
func (s *MemoryStore) Timestamps() []int64 {
	return s.timestamps
}
