// Package handlers provides the HTTP handlers of the narrative service.
// Every generate endpoint ingests the whole body first, so a malformed input yields
// a single error response and never a partial set of narratives.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/giygas/narratives-api/entities"
	"github.com/giygas/narratives-api/ingest"
	"github.com/giygas/narratives-api/interfaces"
	"github.com/giygas/narratives-api/logging"
	"github.com/giygas/narratives-api/metrics"
	"github.com/giygas/narratives-api/render"
	"github.com/giygas/narratives-api/validation"
)

// Input sources, used as the ingest_failures_total label
const (
	SourceJSON = "json"
	SourceTSV  = "tsv"
	SourceXLSX = "xlsx"
)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	processor interfaces.BatchProcessor
	health    interfaces.HealthChecker
	timeout   time.Duration
	startTime time.Time
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies.
// timeout bounds each batch; zero leaves it to the request context.
func NewHTTPHandler(processor interfaces.BatchProcessor, health interfaces.HealthChecker, timeout time.Duration) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		processor: processor,
		health:    health,
		timeout:   timeout,
		startTime: time.Now(),
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// GenerateFromJSON handles POST /generate with an array of records or {"data": [...]}
func (h *HTTPHandlerImpl) GenerateFromJSON(w http.ResponseWriter, r *http.Request) {
	records, err := ingest.DecodeJSON(r.Body)
	if err != nil {
		h.rejectInput(w, SourceJSON, err)
		return
	}
	h.generate(w, r, records)
}

// GenerateFromTSV handles POST /generate/tsv with a pasted tab-separated grid
func (h *HTTPHandlerImpl) GenerateFromTSV(w http.ResponseWriter, r *http.Request) {
	records, err := ingest.ParseTSV(r.Body)
	if err != nil {
		h.rejectInput(w, SourceTSV, err)
		return
	}
	h.generate(w, r, records)
}

// GenerateFromXLSX handles POST /generate/xlsx with a workbook upload
func (h *HTTPHandlerImpl) GenerateFromXLSX(w http.ResponseWriter, r *http.Request) {
	// read the whole body first so an oversized upload is reported as such, not as a broken workbook
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.rejectInput(w, SourceXLSX, err)
		return
	}

	records, err := ingest.ParseXLSX(bytes.NewReader(body))
	if err != nil {
		h.rejectInput(w, SourceXLSX, err)
		return
	}
	h.generate(w, r, records)
}

func (h *HTTPHandlerImpl) generate(w http.ResponseWriter, r *http.Request, records []entities.Record) {
	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	results, err := h.processor.Process(ctx, records)
	if err != nil {
		code, message := processStatus(err)
		if code >= http.StatusInternalServerError {
			logging.Error("Narrative batch failed", "error", err, "records", len(records))
		}
		h.RespondWithError(w, code, message)
		return
	}

	if results == nil {
		results = []entities.NarrativeResult{}
	}

	if wantsText(r) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := render.TextBlocks(w, results); err != nil {
			logging.Warn("Failed to write text response", "error", err)
		}
		return
	}

	h.RespondWithJSON(w, http.StatusOK, results)
}

// rejectInput answers an ingestion failure
func (h *HTTPHandlerImpl) rejectInput(w http.ResponseWriter, source string, err error) {
	metrics.IngestFailures.WithLabelValues(source).Inc()

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.RespondWithError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", maxBytesErr.Limit))
		return
	}

	logging.Warn("Rejected input", "source", source, "error", err)
	h.RespondWithError(w, http.StatusBadRequest, err.Error())
}

// processStatus maps a batch error to a status code and client message
func processStatus(err error) (int, string) {
	switch {
	case errors.Is(err, validation.ErrTooManyRecords):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, ingest.ErrNoRecords),
		errors.Is(err, ingest.ErrMissingGroupingKey),
		errors.Is(err, ingest.ErrNotTabular):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Narrative generation timed out"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "Request cancelled"
	default:
		return http.StatusInternalServerError, "Failed to generate narratives"
	}
}

// wantsText reports whether the client asked for text blocks instead of JSON
func wantsText(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "text", "txt":
		return true
	case "json":
		return false
	}
	return strings.HasPrefix(r.Header.Get("Accept"), "text/plain")
}

// HealthCheck handles GET /health
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.startTime)

	status, data, httpStatus := h.health.HealthCheck()

	response := HealthResponse{
		Status:        status,
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
