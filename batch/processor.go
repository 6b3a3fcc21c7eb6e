// Package batch runs narrative generation over a whole set of case records
package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/giygas/narratives-api/entities"
	"github.com/giygas/narratives-api/ingest"
	"github.com/giygas/narratives-api/interfaces"
	"github.com/giygas/narratives-api/logging"
	"github.com/giygas/narratives-api/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Compile-time check to ensure Processor implements BatchProcessor
var _ interfaces.BatchProcessor = (*Processor)(nil)

// Processor groups records by case and generates the narratives in parallel
type Processor struct {
	generator interfaces.NarrativeGenerator
	validator interfaces.GroupValidator
	stats     interfaces.StatsStore
	workers   int
}

// NewProcessor creates a processor. validator and stats may be nil; workers <= 0 uses
// one worker per CPU.
func NewProcessor(
	generator interfaces.NarrativeGenerator,
	validator interfaces.GroupValidator,
	stats interfaces.StatsStore,
	workers int,
) *Processor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Processor{
		generator: generator,
		validator: validator,
		stats:     stats,
		workers:   workers,
	}
}

// Process returns one narrative per case group, sorted by regulatory identifier.
// The batch fails as a whole: on any error no results are returned.
// The deadline of ctx applies to the entire batch.
func (p *Processor) Process(ctx context.Context, records []entities.Record) ([]entities.NarrativeResult, error) {
	start := time.Now()
	batchID := uuid.NewString()

	if p.validator != nil {
		if err := p.validator.ValidateRecordCount(len(records)); err != nil {
			p.recordFailure(batchID, err)
			return nil, err
		}
	}

	groups, skipped, err := ingest.GroupByRegulatoryID(records)
	if err != nil {
		p.recordFailure(batchID, err)
		return nil, fmt.Errorf("failed to group records: %w", err)
	}

	if skipped > 0 {
		logging.Warn("Skipped records without regulatory_ID",
			"batch_id", batchID,
			"skipped", skipped,
		)
	}

	divergentGroups := p.checkConsistency(batchID, groups)

	results := make([]entities.NarrativeResult, len(groups))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers)

	for i, group := range groups {
		i, group := i, group
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			results[i] = p.generator.Generate(group)
			metrics.CaseGroupRecords.Observe(float64(len(group.Records)))
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		p.recordFailure(batchID, err)
		return nil, fmt.Errorf("batch %s aborted: %w", batchID, err)
	}
	// the loop stops scheduling once the context is done, which can leave Wait with nothing to report
	if err := ctx.Err(); err != nil {
		p.recordFailure(batchID, err)
		return nil, fmt.Errorf("batch %s aborted: %w", batchID, err)
	}

	metrics.NarrativesGenerated.Add(float64(len(results)))

	stats := interfaces.BatchStats{
		Records:         len(records),
		Groups:          len(groups),
		SkippedRecords:  skipped,
		DivergentGroups: divergentGroups,
		Duration:        time.Since(start),
	}
	if p.stats != nil {
		p.stats.RecordBatch(stats)
	}

	logging.Info("Batch processed",
		"batch_id", batchID,
		"records", stats.Records,
		"groups", stats.Groups,
		"divergent_groups", stats.DivergentGroups,
		"duration_ms", stats.Duration.Milliseconds(),
	)

	return results, nil
}

func (p *Processor) checkConsistency(batchID string, groups []entities.CaseGroup) int {
	if p.validator == nil {
		return 0
	}

	divergent := 0
	for _, group := range groups {
		fields := p.validator.CheckGroupConsistency(group)
		if len(fields) == 0 {
			continue
		}
		divergent++
		metrics.DivergentFields.Add(float64(len(fields)))
		logging.Warn("Case-level fields differ across records, using first record",
			"batch_id", batchID,
			"regulatory_id", group.RegulatoryID,
			"fields", fields,
		)
	}
	return divergent
}

func (p *Processor) recordFailure(batchID string, err error) {
	if p.stats != nil {
		p.stats.RecordFailure()
	}
	logging.Warn("Batch rejected", "batch_id", batchID, "error", err)
}
