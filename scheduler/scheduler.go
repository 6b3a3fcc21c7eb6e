// Package scheduler runs the periodic maintenance jobs of the narrative service:
// rate limiter bucket sweeps, the hourly throughput summary and log retention cleanup.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/giygas/narratives-api/interfaces"
	"github.com/giygas/narratives-api/logging"
	"github.com/giygas/narratives-api/metrics"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

const (
	sweepIntervalMinutes = 30
	logCleanupTime       = "03:00"
)

// Scheduler owns the gocron scheduler and the components its jobs touch
type Scheduler struct {
	stats      interfaces.StatsStore
	sweeper    interfaces.RateLimitSweeper
	logCleaner interfaces.LogCleaner
	scheduler  *gocron.Scheduler

	mu   sync.Mutex
	last interfaces.StatsSnapshot
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// sweeper and logCleaner may be nil, their jobs are then not scheduled.
func NewScheduler(stats interfaces.StatsStore, sweeper interfaces.RateLimitSweeper, logCleaner interfaces.LogCleaner) *Scheduler {
	return &Scheduler{
		stats:      stats,
		sweeper:    sweeper,
		logCleaner: logCleaner,
		scheduler:  gocron.NewScheduler(time.Local),
	}
}

// Start registers the jobs and starts the scheduler in the background
func (s *Scheduler) Start() error {
	if s.stats != nil {
		s.last = s.stats.Snapshot()
	}

	if s.sweeper != nil {
		if _, err := s.scheduler.Every(sweepIntervalMinutes).Minutes().Do(s.sweepRateLimiter); err != nil {
			logging.Error("Failed to schedule rate limiter sweep", "error", err)
			return fmt.Errorf("failed to schedule rate limiter sweep: %w", err)
		}
	}

	if s.stats != nil {
		if _, err := s.scheduler.Every(1).Hours().Do(s.logThroughput); err != nil {
			logging.Error("Failed to schedule throughput summary", "error", err)
			return fmt.Errorf("failed to schedule throughput summary: %w", err)
		}
	}

	if s.logCleaner != nil {
		if _, err := s.scheduler.Every(1).Days().At(logCleanupTime).Do(s.cleanupLogs); err != nil {
			logging.Error("Failed to schedule log cleanup", "error", err)
			return fmt.Errorf("failed to schedule log cleanup: %w", err)
		}
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started", "jobs", len(s.scheduler.Jobs()))

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) sweepRateLimiter() {
	remaining := s.sweeper.Sweep()
	metrics.RateLimiterBucketsTotal.Set(float64(remaining))
	logging.Debug("Rate limiter buckets swept", "remaining", remaining)
}

// logThroughput logs the counters accumulated since the previous run
func (s *Scheduler) logThroughput() {
	current := s.stats.Snapshot()

	s.mu.Lock()
	previous := s.last
	s.last = current
	s.mu.Unlock()

	logging.Info("Narrative throughput",
		"batches", current.Batches-previous.Batches,
		"failed_batches", current.FailedBatches-previous.FailedBatches,
		"narratives", current.Narratives-previous.Narratives,
		"divergent_groups", current.DivergentGroups-previous.DivergentGroups,
		"total_narratives", current.Narratives,
	)
}

func (s *Scheduler) cleanupLogs() {
	removed, err := s.logCleaner.CleanupOldLogs()
	if err != nil {
		logging.Warn("Failed to clean up old logs", "error", err)
		return
	}
	if removed > 0 {
		logging.Info("Removed expired log files", "count", removed)
	}
}
