// Package ingest turns request bodies, pasted grids and workbooks into case records and
// partitions them into case groups. Every failure is reported for the input as a whole;
// callers never receive a partial set of records.
package ingest

import "errors"

var (
	// ErrNoRecords is returned when the input holds no data rows
	ErrNoRecords = errors.New("no records supplied")
	// ErrMissingGroupingKey is returned when no record carries a regulatory_ID column
	ErrMissingGroupingKey = errors.New("regulatory_ID column is missing")
	// ErrNotTabular is returned when the input is not a flat list of rows
	ErrNotTabular = errors.New("input is not tabular")
)
