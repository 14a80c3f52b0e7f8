package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper runs the store's expiry cleanup on a cron schedule so memory is
// bounded independently of request traffic. Lazy expiry on Get still
// applies between sweeps.
type Sweeper struct {
	store    Store
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper over the given store.
//
// Common cron expressions:
//   - "0 * * * *"   - Hourly
//   - "*/15 * * * *" - Every 15 minutes
func NewSweeper(store Store, schedule string) *Sweeper {
	return &Sweeper{
		store:    store,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "conversation.sweeper"),
	}
}

// Start begins scheduled sweeping. If the schedule is empty the sweeper
// does nothing. The sweeper stops itself when the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("sweep schedule not configured, skipping sweeper")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.sweep(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("session sweeper started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// sweep executes one cleanup cycle.
func (s *Sweeper) sweep(ctx context.Context) {
	start := time.Now()

	removed, err := s.store.CleanupExpired()
	if err != nil {
		s.logger.ErrorContext(ctx, "session sweep failed", "error", err)
		return
	}

	s.logger.InfoContext(ctx, "session sweep completed",
		"removed", removed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Stop halts scheduled sweeping. The call blocks until any in-flight
// sweep completes.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false

	s.logger.Info("session sweeper stopped")
}
