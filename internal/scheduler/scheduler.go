package scheduler

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron"

	"github.com/austindatascientist/weather-graph/internal/ingest"
)

// Scheduler periodically re-ingests forecasts for the configured locations,
// keeping both the relational rows and the graph current.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *ingest.Service
	locations []string
	interval  time.Duration
}

// New creates a Scheduler.
func New(locations []string, interval time.Duration, service *ingest.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		locations: locations,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Info("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		log.Info("scheduler: running ingestion job", "locations", len(s.locations))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := s.service.IngestAll(ctx, s.locations); err != nil {
			log.Error("scheduler: ingestion job finished with errors", "err", err)
			return
		}
		log.Info("scheduler: completed ingestion job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
