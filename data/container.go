// Package data provides the thread-safe counters the service reports in health checks and logs
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/narratives-api/interfaces"
)

// Compile-time check to ensure StatsContainer implements StatsStore
var _ interfaces.StatsStore = (*StatsContainer)(nil)

// StatsContainer holds the service counters with atomic fields so batches running
// concurrently can record without locking
type StatsContainer struct {
	batches         atomic.Int64
	failedBatches   atomic.Int64
	records         atomic.Int64
	groups          atomic.Int64
	narratives      atomic.Int64
	skippedRecords  atomic.Int64
	divergentGroups atomic.Int64
	lastBatch       atomic.Value // time.Time
	serverStartTime atomic.Value // time.Time
}

// NewStatsContainer creates a container with zeroed counters
func NewStatsContainer() *StatsContainer {
	sc := &StatsContainer{}
	sc.lastBatch.Store(time.Time{})
	sc.serverStartTime.Store(time.Now())
	return sc
}

// RecordBatch adds a successful batch to the counters
func (sc *StatsContainer) RecordBatch(stats interfaces.BatchStats) {
	sc.batches.Add(1)
	sc.records.Add(int64(stats.Records))
	sc.groups.Add(int64(stats.Groups))
	sc.narratives.Add(int64(stats.Groups))
	sc.skippedRecords.Add(int64(stats.SkippedRecords))
	sc.divergentGroups.Add(int64(stats.DivergentGroups))
	sc.lastBatch.Store(time.Now())
}

// RecordFailure counts a batch rejected before any narrative was produced
func (sc *StatsContainer) RecordFailure() {
	sc.failedBatches.Add(1)
}

// Snapshot returns a copy of the counters
func (sc *StatsContainer) Snapshot() interfaces.StatsSnapshot {
	return interfaces.StatsSnapshot{
		Batches:         sc.batches.Load(),
		FailedBatches:   sc.failedBatches.Load(),
		Records:         sc.records.Load(),
		Groups:          sc.groups.Load(),
		Narratives:      sc.narratives.Load(),
		SkippedRecords:  sc.skippedRecords.Load(),
		DivergentGroups: sc.divergentGroups.Load(),
		LastBatch:       loadTime(&sc.lastBatch),
		StartTime:       sc.GetServerStartTime(),
	}
}

// GetServerStartTime returns the server start time
func (sc *StatsContainer) GetServerStartTime() time.Time {
	return loadTime(&sc.serverStartTime)
}

func loadTime(v *atomic.Value) time.Time {
	if t, ok := v.Load().(time.Time); ok {
		return t
	}
	return time.Time{}
}
