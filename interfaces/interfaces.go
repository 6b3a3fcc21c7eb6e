// Package interfaces defines the contracts between the narrative service components
// so each one can be replaced by a mock in tests.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/narratives-api/entities"
)

// BatchStats summarizes one processed batch
type BatchStats struct {
	Records         int
	Groups          int
	SkippedRecords  int // rows without a regulatory_ID
	DivergentGroups int // groups whose case-level fields differ across records
	Duration        time.Duration
}

// StatsSnapshot is a point-in-time copy of the service counters
type StatsSnapshot struct {
	Batches         int64
	FailedBatches   int64
	Records         int64
	Groups          int64
	Narratives      int64
	SkippedRecords  int64
	DivergentGroups int64
	LastBatch       time.Time
	StartTime       time.Time
}

// NarrativeGenerator builds the narrative of one case group.
// Implementations must be safe for concurrent use.
type NarrativeGenerator interface {
	Generate(group entities.CaseGroup) entities.NarrativeResult
}

// BatchProcessor groups a flat set of records and generates one narrative per group
type BatchProcessor interface {
	Process(ctx context.Context, records []entities.Record) ([]entities.NarrativeResult, error)
}

// GroupValidator checks batches and groups before generation
type GroupValidator interface {
	// ValidateRecordCount rejects batches larger than the configured limit
	ValidateRecordCount(n int) error

	// CheckGroupConsistency returns the case-level fields whose value differs from the first record
	CheckGroupConsistency(group entities.CaseGroup) []string
}

// StatsStore keeps thread-safe service counters
type StatsStore interface {
	RecordBatch(stats BatchStats)
	RecordFailure()
	Snapshot() StatsSnapshot
	GetServerStartTime() time.Time
}

// HealthChecker reports service health
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// RateLimitSweeper drops idle rate limiter buckets and returns how many remain
type RateLimitSweeper interface {
	Sweep() int
}

// LogCleaner removes expired log files and returns how many were removed
type LogCleaner interface {
	CleanupOldLogs() (int, error)
}

// Scheduler runs the periodic maintenance jobs
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the HTTP endpoints of the service
type HTTPHandler interface {
	GenerateFromJSON(w http.ResponseWriter, r *http.Request)
	GenerateFromTSV(w http.ResponseWriter, r *http.Request)
	GenerateFromXLSX(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}
