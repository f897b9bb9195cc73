package journal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultPruneSchedule runs retention once an hour.
const DefaultPruneSchedule = "@hourly"

// Retention prunes journal entries older than MaxAge on a cron schedule.
type Retention struct {
	storer   Storer
	schedule string
	maxAge   time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewRetention creates a retention job. An empty schedule disables it.
func NewRetention(storer Storer, schedule string, maxAge time.Duration, logger *zap.Logger) *Retention {
	return &Retention{
		storer:   storer,
		schedule: schedule,
		maxAge:   maxAge,
		logger:   logger,
		now:      time.Now,
		cron:     cron.New(),
	}
}

// Start schedules pruning and stops it when ctx is done.
func (r *Retention) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.schedule == "" || r.maxAge <= 0 {
		r.logger.Info("journal retention disabled")
		return nil
	}

	if _, err := cron.ParseStandard(r.schedule); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", r.schedule, err)
	}

	if _, err := r.cron.AddFunc(r.schedule, func() {
		if _, err := r.PruneOnce(ctx); err != nil {
			r.logger.Error("journal pruning failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	r.cron.Start()
	r.running = true

	r.logger.Info("journal retention started",
		zap.String("schedule", r.schedule),
		zap.Duration("max_age", r.maxAge),
	)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// PruneOnce removes entries older than MaxAge.
func (r *Retention) PruneOnce(ctx context.Context) (int, error) {
	removed, err := r.storer.Prune(ctx, r.now().Add(-r.maxAge))
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		r.logger.Info("journal pruned", zap.Int("removed", removed))
	}

	return removed, nil
}

// Stop stops the schedule and waits for a running prune to finish.
func (r *Retention) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	<-r.cron.Stop().Done()
	r.running = false
	r.logger.Info("journal retention stopped")
}
