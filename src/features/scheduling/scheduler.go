package scheduling

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// State is the scheduler's position in its two-state machine.
type State string

const (
	// StateIdle means the scheduler is waiting for the next matching tick.
	StateIdle State = "idle"
	// StateRunning means a reconciliation tick is in progress.
	StateRunning State = "running"
)

// TickFunc is one complete reconciliation tick. Errors are tick-fatal:
// logged, then retried at the next scheduled match.
type TickFunc func(ctx context.Context) error

// Scheduler fires a TickFunc at every wall-clock instant matching its
// Spec. At most one tick is ever in flight: matches that occur while a
// tick is running are dropped, not queued. The clock is injectable so
// the gating logic is testable without real timers.
type Scheduler struct {
	spec  *Spec
	clock clockwork.Clock
	tick  TickFunc

	mu      sync.RWMutex
	state   State
	lastRun time.Time
	nextRun time.Time
}

// NewScheduler creates an idle scheduler for the given spec.
func NewScheduler(spec *Spec, clock clockwork.Clock, tick TickFunc) *Scheduler {
	return &Scheduler{
		spec:  spec,
		clock: clock,
		tick:  tick,
		state: StateIdle,
	}
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LastRun returns when the most recent tick started (zero before the first).
func (s *Scheduler) LastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}

// NextRun returns the next scheduled tick instant.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextRun
}

// Run blocks, firing ticks until ctx is cancelled. Cancellation while
// idle returns immediately; cancellation while running lets the
// in-flight tick finish first, so a tick is never torn down mid-batch.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("Scheduler started", "schedule", s.spec.String())

	for {
		if ctx.Err() != nil {
			slog.Info("Scheduler stopped")
			return
		}

		now := s.clock.Now()
		next := s.spec.Next(now)
		s.mu.Lock()
		s.nextRun = next
		s.mu.Unlock()

		timer := s.clock.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("Scheduler stopped")
			return
		case fired := <-timer.Chan():
			s.runTick(ctx, fired)
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context, fired time.Time) {
	s.mu.Lock()
	s.state = StateRunning
	s.lastRun = fired
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
	}()

	// The in-flight tick is allowed to complete even when ctx is
	// cancelled mid-run; the loop in Run observes the cancellation at
	// the tick boundary.
	if err := s.tick(context.WithoutCancel(ctx)); err != nil {
		slog.Error("Scheduled sync tick failed", "error", err)
	}
}
