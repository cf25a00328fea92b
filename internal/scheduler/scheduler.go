package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/eco-ops-dashboard/internal/external"
	"github.com/i474232898/eco-ops-dashboard/internal/logger"
)

// jobTimeout bounds one background sync run.
const jobTimeout = 30 * time.Second

// Fetcher is the part of the multi-source fetcher the job needs.
type Fetcher interface {
	Fetch(ctx context.Context, p external.Params) external.Bundle
}

// Publisher receives every synced bundle.
type Publisher interface {
	Publish(ctx context.Context, b external.Bundle) error
}

// LastSync summarizes the most recent background run.
type LastSync struct {
	At           time.Time               `json:"at"`
	UsedFallback bool                    `json:"usedFallback"`
	Sources      []external.SourceStatus `json:"sources"`
	Published    bool                    `json:"published"`
}

// Scheduler periodically syncs external data for the default location.
type Scheduler struct {
	scheduler *gocron.Scheduler
	fetcher   Fetcher
	publisher Publisher
	location  string
	interval  time.Duration
	log       *logger.Logger

	mu   sync.RWMutex
	last *LastSync
}

// New creates a Scheduler. publisher may be nil.
func New(fetcher Fetcher, publisher Publisher, location string, interval time.Duration, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		fetcher:   fetcher,
		publisher: publisher,
		location:  location,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the sync job and starts the underlying scheduler.
// A non-positive interval disables the job.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.log.Infow("scheduler_disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.Infow("scheduler_started", "interval", s.interval.String(), "location", s.location)
	return nil
}

// RunOnce performs one sync: fetch, record, publish. Publish failures are
// logged only.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.log.Debugw("scheduler_sync_started", "location", s.location)
	b := s.fetcher.Fetch(ctx, external.Params{Location: s.location})

	published := false
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, b); err != nil {
			s.log.Warnw("scheduler_publish_failed", "error", err)
		} else {
			published = true
		}
	}

	s.mu.Lock()
	s.last = &LastSync{
		At:           b.SyncedAt,
		UsedFallback: b.UsedFallback,
		Sources:      b.Sources,
		Published:    published,
	}
	s.mu.Unlock()

	s.log.Infow("scheduler_sync_completed", "location", s.location, "used_fallback", b.UsedFallback)
}

// Last returns the most recent run, if any.
func (s *Scheduler) Last() (LastSync, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return LastSync{}, false
	}
	return *s.last, true
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
