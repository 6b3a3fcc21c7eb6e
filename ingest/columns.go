package ingest

import (
	"github.com/giygas/narratives-api/entities"
	"github.com/giygas/narratives-api/logging"
)

var knownColumns = func() map[string]bool {
	known := make(map[string]bool, len(entities.Columns))
	for _, c := range entities.Columns {
		known[c] = true
	}
	return known
}()

// unrecognizedColumns returns the non-blank headers the narrative engine never reads, in header order
func unrecognizedColumns(headers []string) []string {
	var unknown []string
	for _, h := range headers {
		if h != "" && !knownColumns[h] {
			unknown = append(unknown, h)
		}
	}
	return unknown
}

func logUnrecognizedColumns(source string, headers []string) {
	if unknown := unrecognizedColumns(headers); len(unknown) > 0 {
		logging.Debug("Ignoring unrecognized columns", "source", source, "columns", unknown)
	}
}
