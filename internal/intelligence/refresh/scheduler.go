package refresh

import (
	"context"
	"time"

	"mlengine/config"

	"go.uber.org/zap"
)

const day = 24 * time.Hour

// Scheduler re-hydrates the in-memory snapshot on a fixed cadence,
// optionally anchored to UTC midnight.
type Scheduler struct {
	Interval      time.Duration
	AlignMidnight bool
	RunAtStart    bool
	Hydrate       func(ctx context.Context) error
	Logger        *zap.Logger

	now func() time.Time
}

func New(cfg config.RefreshConfig, hydrate func(ctx context.Context) error, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Interval:      cfg.Interval,
		AlignMidnight: cfg.AlignMidnight,
		Hydrate:       hydrate,
		Logger:        logger,
	}
}

// Enabled reports whether Run would ever re-hydrate after start.
func (s *Scheduler) Enabled() bool {
	return s.Interval > 0 || s.AlignMidnight
}

// Start runs the scheduler on its own goroutine. The returned channel is
// closed once it has stopped.
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return done
}

// Run blocks until ctx is cancelled. A failed re-hydration is logged and
// the previous snapshot stays in place.
func (s *Scheduler) Run(ctx context.Context) {
	if s.RunAtStart {
		s.runOnce(ctx)
	}
	if !s.Enabled() {
		return
	}

	interval := s.Interval
	if interval <= 0 {
		interval = day
	}

	wait := interval
	if s.AlignMidnight {
		wait = untilNextMidnight(s.clock())
	}
	s.Logger.Info("refresh scheduled", zap.Duration("first_in", wait), zap.Duration("interval", interval))

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("refresh scheduler stopped")
			return
		case <-timer.C:
			s.runOnce(ctx)
			timer.Reset(interval)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	if err := s.Hydrate(ctx); err != nil {
		s.Logger.Error("re-hydration failed, keeping previous snapshot", zap.Error(err))
		return
	}
	s.Logger.Info("re-hydration complete", zap.Duration("elapsed", time.Since(start)))
}

func (s *Scheduler) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func untilNextMidnight(now time.Time) time.Duration {
	now = now.UTC()
	next := now.Truncate(day).Add(day)
	return next.Sub(now)
}
