package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/weather-map/internal/weather"
)

type countingFetcher struct {
	mu   sync.Mutex
	seen map[string]int
}

func (f *countingFetcher) FetchAndStore(ctx context.Context, loc weather.Location) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[loc.Key()]++
	if loc.City == "Fail" {
		return errors.New("boom")
	}
	return nil
}

func TestRunOnceFetchesEveryLocation(t *testing.T) {
	f := &countingFetcher{seen: make(map[string]int)}
	locs := []weather.Location{{City: "Paris", Country: "FR"}, {City: "Fail", Country: "XX"}, {City: "Oslo", Country: "NO"}}

	New(locs, time.Minute, f).RunOnce(context.Background())

	for _, loc := range locs {
		if f.seen[loc.Key()] != 1 {
			t.Fatalf("expected one fetch for %s, got %d", loc.Key(), f.seen[loc.Key()])
		}
	}
}

func TestStartWithoutLocations(t *testing.T) {
	s := New(nil, time.Minute, &countingFetcher{seen: make(map[string]int)})
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Stop()
}

func TestEveryMinutes(t *testing.T) {
	tests := []struct {
		interval time.Duration
		want     int
	}{
		{15 * time.Minute, 15},
		{time.Minute, 1},
		{90 * time.Second, 1},
		{30 * time.Second, defaultIntervalMinutes},
		{0, defaultIntervalMinutes},
	}

	for _, tt := range tests {
		if got := everyMinutes(tt.interval); got != tt.want {
			t.Errorf("everyMinutes(%s) = %d, want %d", tt.interval, got, tt.want)
		}
	}
}
