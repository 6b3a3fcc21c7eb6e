// Package health provides health checking for the narrative service.
package health

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/giygas/narratives-api/entities"
	"github.com/giygas/narratives-api/interfaces"
)

// canary is a fixed two-record case run through the engine on every health check
var canary = entities.CaseGroup{
	RegulatoryID: "HEALTH-CHECK",
	Records: []entities.Record{
		{
			entities.FieldRegulatoryID: "HEALTH-CHECK",
			entities.FieldCaseType:     "literature",
			entities.FieldAge:          "45",
			entities.FieldGender:       "Female",
			entities.FieldSuspectDrug:  "DrugA",
			entities.FieldEvent:        "headache",
			entities.FieldIRD:          "2024-01-05",
		},
		{
			entities.FieldRegulatoryID: "HEALTH-CHECK",
			entities.FieldSuspectDrug:  "DrugB",
		},
	},
}

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	generator interfaces.NarrativeGenerator
	stats     interfaces.StatsStore
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(generator interfaces.NarrativeGenerator, stats interfaces.StatsStore) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		generator: generator,
		stats:     stats,
	}
}

// HealthCheck generates the canary narrative and reports the service counters.
// Used by /health HTTP endpoint
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	start := time.Now()
	result := h.generator.Generate(canary)
	canaryDuration := time.Since(start)

	switch {
	case strings.TrimSpace(result.Narrative) == "" || result.RegulatoryID != canary.RegulatoryID:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"canary_ms": math.Round(float64(canaryDuration.Microseconds())/10) / 100,
	}

	if h.stats != nil {
		snap := h.stats.Snapshot()
		data["uptime_seconds"] = math.Round(time.Since(snap.StartTime).Seconds())
		data["batches"] = snap.Batches
		data["failed_batches"] = snap.FailedBatches
		data["narratives"] = snap.Narratives
		data["divergent_groups"] = snap.DivergentGroups
		if !snap.LastBatch.IsZero() {
			data["last_batch"] = snap.LastBatch.Format(time.RFC3339)
		}
	}

	return status, data, httpStatus
}
