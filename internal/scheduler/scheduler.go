package scheduler

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/mrwolf/hallmark-server/internal/archive"
	"github.com/mrwolf/hallmark-server/internal/logger"
	"github.com/mrwolf/hallmark-server/internal/models"
	"github.com/mrwolf/hallmark-server/internal/selection"
)

// BatchSource produces a selected batch of movies.
type BatchSource interface {
	Batch(n int) []selection.Pick
}

// Pinger reports whether the lexicon is reachable.
type Pinger interface {
	Ping() error
}

// Featured holds the latest featured batch for concurrent readers.
type Featured struct {
	mu    sync.RWMutex
	batch *models.FeaturedBatch
}

// Get returns the current batch, or false before the first one is made.
func (f *Featured) Get() (models.FeaturedBatch, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.batch == nil {
		return models.FeaturedBatch{}, false
	}
	return *f.batch, true
}

func (f *Featured) Set(batch models.FeaturedBatch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batch = &batch
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	scheduler gocron.Scheduler
	source    BatchSource
	store     Pinger
	archive   *archive.Archive
	featured  *Featured
	timezone  *time.Location
	hour      uint
	log       *logger.Logger
}

// Config holds scheduler configuration
type Config struct {
	Timezone     string
	FeaturedHour int
}

// New creates a new scheduler. arch may be nil to skip archiving.
func New(source BatchSource, store Pinger, arch *archive.Archive, featured *Featured, cfg Config, log *logger.Logger) (*Scheduler, error) {
	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		tz = time.UTC
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(tz))
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		scheduler: s,
		source:    source,
		store:     store,
		archive:   arch,
		featured:  featured,
		timezone:  tz,
		hour:      uint(cfg.FeaturedHour),
		log:       log,
	}, nil
}

// Start produces a first featured batch, then registers all jobs and
// starts the scheduler.
func (s *Scheduler) Start() error {
	s.generateFeatured()

	// Featured batch once a day
	_, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(s.hour, 0, 0))),
		gocron.NewTask(s.generateFeatured),
		gocron.WithName("featured-batch"),
	)
	if err != nil {
		return err
	}

	// Check the lexicon every 5 minutes
	_, err = s.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(s.healthCheck),
		gocron.WithName("lexicon-health"),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	s.log.Info("scheduler started", "featured_hour", s.hour, "timezone", s.timezone.String())
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

// Jobs lists the names of registered jobs.
func (s *Scheduler) Jobs() []string {
	var names []string
	for _, j := range s.scheduler.Jobs() {
		names = append(names, j.Name())
	}
	return names
}

// GenerateFeaturedNow makes a new featured batch immediately. The batch is
// published even if archiving it fails.
func (s *Scheduler) GenerateFeaturedNow() (models.FeaturedBatch, error) {
	batch := models.FeaturedBatch{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().In(s.timezone),
		Movies:      models.MoviesFromPicks(s.source.Batch(selection.MaxBatch)),
	}
	s.featured.Set(batch)

	if s.archive != nil {
		if err := s.archive.Record(batch); err != nil {
			return batch, err
		}
	}
	return batch, nil
}

func (s *Scheduler) generateFeatured() {
	batch, err := s.GenerateFeaturedNow()
	if err != nil {
		s.log.Error("archiving featured batch failed", "id", batch.ID, "error", err)
		return
	}
	s.log.Info("featured batch generated", "id", batch.ID, "movies", len(batch.Movies))
}

func (s *Scheduler) healthCheck() {
	if err := s.store.Ping(); err != nil {
		s.log.Warn("lexicon health check failed", "error", err)
	}
}
