package ingest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/giygas/narratives-api/entities"
	"github.com/giygas/narratives-api/logging"
	"golang.org/x/text/encoding/charmap"
)

// maxLineSize bounds a single pasted row
const maxLineSize = 1 * 1024 * 1024

// ParseTSV reads a pasted grid: the first non-empty line names the columns and every
// following line is one record. Missing trailing cells become empty strings.
func ParseTSV(r io.Reader) ([]entities.Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read grid: %w", err)
	}

	// Grids copied from spreadsheets on Windows are not always UTF-8
	var reader io.Reader
	if utf8.Valid(raw) {
		reader = bytes.NewReader(bytes.TrimPrefix(raw, []byte("\ufeff")))
	} else {
		reader = charmap.Windows1252.NewDecoder().Reader(bytes.NewReader(raw))
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var headers []string
	var records []entities.Record
	lineCount := 0
	skippedEmptyLines := 0
	skippedExtraCells := 0

	for scanner.Scan() {
		lineCount++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			skippedEmptyLines++
			continue
		}

		cells := strings.Split(line, "\t")

		if headers == nil {
			headers = make([]string, len(cells))
			for i, cell := range cells {
				headers[i] = strings.TrimSpace(cell)
			}
			continue
		}

		if len(cells) > len(headers) {
			skippedExtraCells++
		}

		record := make(entities.Record, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(cells) {
				record[header] = cells[i]
			} else {
				record[header] = ""
			}
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan grid: %w", err)
	}

	if headers == nil {
		return nil, ErrNoRecords
	}
	if len(headers) < 2 {
		return nil, fmt.Errorf("%w: header row has no tab-separated columns", ErrNotTabular)
	}
	logUnrecognizedColumns("tsv", headers)

	if skippedEmptyLines > 0 || skippedExtraCells > 0 {
		logging.Debug("Grid parse statistics",
			"empty_lines", skippedEmptyLines,
			"rows_with_extra_cells", skippedExtraCells,
			"total_lines", lineCount,
			"records_parsed", len(records))
	}

	return records, nil
}
