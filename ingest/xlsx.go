package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/giygas/narratives-api/entities"
	"github.com/giygas/narratives-api/logging"
	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads records from the first sheet of a workbook. The first non-empty row
// names the columns, the same layout as a pasted grid.
func ParseXLSX(r io.Reader) ([]entities.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %v", ErrNotTabular, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close workbook", "error", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRecords
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	var headers []string
	var records []entities.Record

	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}

		if headers == nil {
			headers = make([]string, len(row))
			for i, cell := range row {
				headers[i] = strings.TrimSpace(cell)
			}
			continue
		}

		record := make(entities.Record, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(row) {
				record[header] = row[i]
			} else {
				record[header] = ""
			}
		}
		records = append(records, record)
	}

	if headers == nil {
		return nil, ErrNoRecords
	}
	logUnrecognizedColumns("xlsx", headers)

	logging.Debug("Workbook parsed", "sheet", sheets[0], "records_parsed", len(records))
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
