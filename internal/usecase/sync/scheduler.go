package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
)

// Schedule binds a named pass to its cadence.
type Schedule struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

// schedulerTick is the resolution of the scheduler loop.
const schedulerTick = time.Second

// Scheduler drives the pass schedule table. Distinct passes run concurrently;
// a pass never overlaps itself, a due run that finds the previous one still
// going is skipped.
type Scheduler struct {
	schedules []Schedule
	metrics   PassMetrics
	logger    *zap.Logger
	now       func() time.Time

	mu      gosync.Mutex
	running map[string]bool
	nextRun map[string]time.Time
}

// NewScheduler creates a scheduler over the given schedule table.
func NewScheduler(schedules []Schedule, metrics PassMetrics, logger *zap.Logger) *Scheduler {
	if metrics == nil {
		metrics = NopPassMetrics{}
	}
	return &Scheduler{
		schedules: schedules,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		running:   make(map[string]bool),
		nextRun:   make(map[string]time.Time),
	}
}

// SetClock overrides the time source for tests.
func (s *Scheduler) SetClock(now func() time.Time) { s.now = now }

// Run blocks until the context is canceled, launching due passes. The first
// tick of each schedule fires one interval after start; a fresh deployment
// triggers its initial full pass explicitly.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	start := s.now()
	for _, sch := range s.schedules {
		s.nextRun[sch.Name] = start.Add(sch.Every)
	}
	s.mu.Unlock()

	ticker := time.NewTicker(schedulerTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.launchDue(ctx)
		}
	}
}

func (s *Scheduler) launchDue(ctx context.Context) {
	now := s.now()
	for _, sch := range s.schedules {
		s.mu.Lock()
		due := !now.Before(s.nextRun[sch.Name])
		if due {
			s.nextRun[sch.Name] = now.Add(sch.Every)
		}
		s.mu.Unlock()
		if !due {
			continue
		}

		sch := sch
		// Outcome is logged and counted inside runPass.
		go func() { _ = s.runPass(ctx, sch) }()
	}
}

// Trigger runs a named pass immediately, synchronously. It returns
// domain.ErrUnknownPass for unregistered names and domain.ErrPassRunning if
// the pass is already in progress.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	for _, sch := range s.schedules {
		if sch.Name == name {
			return s.runPass(ctx, sch)
		}
	}
	return fmt.Errorf("%q: %w", name, domain.ErrUnknownPass)
}

// Passes returns the registered pass names.
func (s *Scheduler) Passes() []string {
	names := make([]string, len(s.schedules))
	for i, sch := range s.schedules {
		names[i] = sch.Name
	}
	return names
}

func (s *Scheduler) runPass(ctx context.Context, sch Schedule) error {
	s.mu.Lock()
	if s.running[sch.Name] {
		s.mu.Unlock()
		s.metrics.PassCompleted(sch.Name, "skipped", 0)
		return fmt.Errorf("%q: %w", sch.Name, domain.ErrPassRunning)
	}
	s.running[sch.Name] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running[sch.Name] = false
		s.mu.Unlock()
	}()

	started := s.now()
	s.logger.Info("sync pass started", zap.String("pass", sch.Name))

	err := sch.Run(ctx)
	duration := s.now().Sub(started)
	if err != nil {
		s.metrics.PassCompleted(sch.Name, "error", duration)
		s.logger.Error("sync pass failed",
			zap.String("pass", sch.Name),
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	s.metrics.PassCompleted(sch.Name, "ok", duration)
	s.logger.Info("sync pass completed",
		zap.String("pass", sch.Name),
		zap.Duration("duration", duration))
	return nil
}
