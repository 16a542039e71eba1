// Package scheduler runs the nightly demand overview.
package scheduler

import (
	"context"
	"time"

	"github.com/andresuchdata/stockcast/internal/cache"
	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const overviewLockKey = "stockcast:scheduler:demand-overview"

// OverviewRunner computes a demand overview over every product.
type OverviewRunner interface {
	DemandOverview(ctx context.Context, productIDs []string, days int) (*domain.DemandOverview, error)
}

// OverviewPublisher stores a rendered overview and returns its key.
type OverviewPublisher interface {
	PublishOverview(ctx context.Context, overview *domain.DemandOverview) (string, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	runner    OverviewRunner
	publisher OverviewPublisher
	locker    cache.Locker
	cfg       config.SchedulerConfig
}

// NewScheduler creates a new scheduler. A nil publisher only warms the
// cache; a nil locker guards the job within this process only.
func NewScheduler(cfg config.SchedulerConfig, loc *time.Location, runner OverviewRunner, publisher OverviewPublisher, locker cache.Locker) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if locker == nil {
		locker = cache.NewLocalLocker()
	}
	if cfg.OverviewDays <= 0 {
		cfg.OverviewDays = 30
	}
	if cfg.LockTTLSeconds <= 0 {
		cfg.LockTTLSeconds = 600
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		runner:    runner,
		publisher: publisher,
		locker:    locker,
		cfg:       cfg,
	}
}

// Start registers the overview job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Spec, s.runScheduled); err != nil {
		return errors.Wrapf(err, "invalid scheduler spec %q", s.cfg.Spec)
	}

	s.cron.Start()
	log.Info().Str("spec", s.cfg.Spec).Int("days", s.cfg.OverviewDays).Msg("scheduler started")
	return nil
}

// Stop stops the cron loop. The returned context is done once a running
// job has finished.
func (s *Scheduler) Stop() context.Context {
	log.Info().Msg("stopping scheduler")
	return s.cron.Stop()
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTTL())
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("scheduled demand overview failed")
	}
}

// RunOnce computes and publishes the demand overview unless another
// instance holds the job lock, in which case it returns nil.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	lock, err := s.locker.Obtain(ctx, overviewLockKey, s.lockTTL())
	if errors.Is(err, cache.ErrLockHeld) {
		log.Info().Msg("demand overview already running elsewhere, skipping")
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("failed to release scheduler lock")
		}
	}()

	started := time.Now()
	overview, err := s.runner.DemandOverview(ctx, nil, s.cfg.OverviewDays)
	if err != nil {
		return errors.Wrap(err, "failed to compute demand overview")
	}

	event := log.Info().
		Int("products", len(overview.Items)).
		Int("days", overview.PeriodDays).
		Dur("duration", time.Since(started))

	if s.publisher != nil {
		key, err := s.publisher.PublishOverview(ctx, overview)
		if err != nil {
			return err
		}
		event = event.Str("report", key)
	}

	event.Msg("demand overview refreshed")
	return nil
}

func (s *Scheduler) lockTTL() time.Duration {
	return time.Duration(s.cfg.LockTTLSeconds) * time.Second
}
