package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rpggio/defectlog/internal/export"
)

// DefaultPollInterval matches the minute granularity of trigger times.
const DefaultPollInterval = time.Minute

// Exporter runs an export.
type Exporter interface {
	Export(ctx context.Context, req export.Request) (export.Result, error)
}

// Config configures a Scheduler.
type Config struct {
	Triggers     []string
	PollInterval time.Duration
	Now          func() time.Time
}

// Scheduler polls the wall clock and runs a scheduled export when the
// current minute equals a trigger time. Each trigger fires at most once per
// calendar minute however often Tick runs.
type Scheduler struct {
	exporter Exporter
	triggers []Trigger
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu        sync.Mutex
	lastFired map[string]string
}

// New validates the configuration and creates a scheduler.
func New(exporter Exporter, cfg Config, logger *slog.Logger) (*Scheduler, error) {
	triggers, err := ParseTriggers(cfg.Triggers)
	if err != nil {
		return nil, err
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollInterval < 0 || cfg.PollInterval > time.Minute {
		return nil, fmt.Errorf("poll interval %s outside (0, 1m]", cfg.PollInterval)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		exporter:  exporter,
		triggers:  triggers,
		interval:  cfg.PollInterval,
		now:       cfg.Now,
		logger:    logger,
		lastFired: make(map[string]string, len(triggers)),
	}, nil
}

// Triggers returns the configured trigger labels in order.
func (s *Scheduler) Triggers() []string {
	labels := make([]string, len(s.triggers))
	for i, t := range s.triggers {
		labels[i] = t.Label
	}
	return labels
}

// Next returns the next scheduled export instant after now.
func (s *Scheduler) Next(now time.Time) time.Time {
	return NextOccurrence(s.triggers, now)
}

// NextRun is Next against the scheduler's own clock.
func (s *Scheduler) NextRun() time.Time {
	return s.Next(s.now())
}

// Tick compares the current minute against every trigger and runs a
// scheduled export for each match not yet fired this minute. It returns the
// results of the exports it ran. Export errors are logged and joined; there
// is no retry within the minute.
func (s *Scheduler) Tick(ctx context.Context) ([]export.Result, error) {
	now := s.now()
	current := now.Format("15:04")
	minute := now.Format("2006-01-02 15:04")

	var (
		results []export.Result
		errs    []error
	)
	for _, t := range s.triggers {
		if t.Label != current || !s.markFired(t.Label, minute) {
			continue
		}

		s.logger.Info("trigger reached, exporting", "trigger", t.Label)
		res, err := s.exporter.Export(ctx, export.Scheduled(t.Label))
		if err != nil {
			s.logger.Error("scheduled export failed", "trigger", t.Label, "error", err)
			errs = append(errs, fmt.Errorf("trigger %s: %w", t.Label, err))
			continue
		}
		results = append(results, res)
	}

	s.logger.Debug("scheduler tick", "now", current, "fired", len(results)+len(errs), "next", s.Next(now).Format("02/01/2006 15:04"))
	return results, errors.Join(errs...)
}

// Run ticks immediately, then re-arms a timer for the poll interval after
// each tick until ctx is done. Drift of the tick's own duration accumulates.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "triggers", s.Triggers(), "interval", s.interval, "next", s.Next(s.now()).Format("02/01/2006 15:04"))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-timer.C:
		}

		_, _ = s.Tick(ctx)
		timer.Reset(s.interval)
	}
}

func (s *Scheduler) markFired(label, minute string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFired[label] == minute {
		return false
	}
	s.lastFired[label] = minute
	return true
}
