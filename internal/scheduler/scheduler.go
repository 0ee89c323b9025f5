package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-map/internal/weather"
)

const defaultIntervalMinutes = 15

// Fetcher collects and stores one record for a location.
type Fetcher interface {
	FetchAndStore(ctx context.Context, loc weather.Location) error
}

// Scheduler periodically collects weather records for configured locations.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	fetcher    Fetcher
	locations  []weather.Location
	interval   time.Duration
	jobTimeout time.Duration
}

// New creates a new Scheduler.
func New(locations []weather.Location, interval time.Duration, fetcher Fetcher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:  s,
		fetcher:    fetcher,
		locations:  locations,
		interval:   interval,
		jobTimeout: 30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(everyMinutes(s.interval)).Minutes().Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// everyMinutes converts the interval to whole minutes. Intervals under a
// minute fall back to the default of 15 minutes.
func everyMinutes(interval time.Duration) int {
	minutes := int(interval / time.Minute)
	if minutes <= 0 {
		log.Printf("ERROR: fetch interval %s is under one minute; using %dm", interval, defaultIntervalMinutes)
		return defaultIntervalMinutes
	}
	if interval%time.Minute != 0 {
		log.Printf("INFO: fetch interval %s truncated to %dm", interval, minutes)
	}
	return minutes
}

// RunOnce fetches every location concurrently and waits for all of them.
func (s *Scheduler) RunOnce(ctx context.Context) {
	log.Println("scheduler: running weather fetch job")

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		wg.Add(1)
		go func(loc weather.Location) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
			defer cancel()

			if err := s.fetcher.FetchAndStore(ctx, loc); err != nil {
				log.Printf("scheduler: fetch failed for %s: %v", loc.Key(), err)
			}
		}(loc)
	}
	wg.Wait()
	log.Println("scheduler: completed weather fetch job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
