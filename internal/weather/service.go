package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

var (
	// ErrNoProviders is returned when the collector has nothing to fetch from.
	ErrNoProviders = errors.New("no weather providers configured")
	// ErrNoCoordinates is returned when no provider could place a location on the map.
	ErrNoCoordinates = errors.New("no coordinates for location")
)

// Service orchestrates fetching from multiple providers and writing records to sinks.
type Service struct {
	providers []Provider
	sinks     []Sink
}

// NewService creates a new Service.
func NewService(providers []Provider, sinks []Sink) *Service {
	return &Service{
		providers: providers,
		sinks:     sinks,
	}
}

// FetchAndStore fetches data from all providers concurrently for the given location,
// reduces successful readings to a record and writes it to every sink.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	if len(s.providers) == 0 {
		log.Printf("ERROR: No providers available to fetch weather data for %s", loc.Key())
		return ErrNoProviders
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []ProviderReading
	)

	log.Printf("DEBUG: FetchAndStore called for %s with %d providers", loc.Key(), len(s.providers))

	for _, p := range s.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Printf("provider %s fetch failed for %s: %v", p.Name(), loc.Key(), err)
				return
			}

			mu.Lock()
			readings = append(readings, r)
			mu.Unlock()
		}(p)
	}

	wg.Wait()

	if len(readings) == 0 {
		log.Printf("no successful provider readings for %s; nothing written", loc.Key())
		return nil
	}

	rec, ok := AggregateReadings(loc, readings)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoCoordinates, loc.Key())
	}

	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Write(ctx, rec); err != nil {
			log.Printf("ERROR: sink %s failed for %s: %v", sink.Name(), loc.Key(), err)
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
