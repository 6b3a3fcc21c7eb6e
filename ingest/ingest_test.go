package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/giygas/narratives-api/entities"
	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectedLen int
		expectedErr error
	}{
		{"bare array", `[{"regulatory_ID":"A"},{"regulatory_ID":"B"}]`, 2, nil},
		{"data envelope", `{"data":[{"regulatory_ID":"A","age":34}]}`, 1, nil},
		{"null values", `[{"regulatory_ID":"A","dose":null}]`, 1, nil},
		{"empty array", `[]`, 0, ErrNoRecords},
		{"empty data", `{"data":[]}`, 0, ErrNoRecords},
		{"null data", `{"data":null}`, 0, ErrNoRecords},
		{"missing data field", `{"rows":[]}`, 0, ErrNotTabular},
		{"scalar body", `"hello"`, 0, ErrNotTabular},
		{"row is not an object", `[1, 2]`, 0, ErrNotTabular},
		{"nested value", `[{"regulatory_ID":"A","dose":{"amount":5}}]`, 0, ErrNotTabular},
		{"array value", `[{"regulatory_ID":["A"]}]`, 0, ErrNotTabular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := DecodeJSON(strings.NewReader(tt.body))
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("Expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(records) != tt.expectedLen {
				t.Errorf("Expected %d records, got %d", tt.expectedLen, len(records))
			}
		})
	}
}

func TestDecodeJSONInvalidSyntax(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"truncated", `[{"regulatory_ID":`},
		{"trailing partial value", `[{"regulatory_ID":"A"}] {"oops"`},
		{"second array", `[{"regulatory_ID":"A"}][{"regulatory_ID":"B"}]`},
		{"trailing garbage", `{"data":[{"regulatory_ID":"A"}]} x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := DecodeJSON(strings.NewReader(tt.body))
			if err == nil {
				t.Fatalf("Expected an error, got %d records", len(records))
			}
			if !strings.Contains(err.Error(), "invalid JSON body") {
				t.Errorf("Expected an invalid JSON body error, got %v", err)
			}
		})
	}
}

func TestDecodeJSONAllowsTrailingWhitespace(t *testing.T) {
	records, err := DecodeJSON(strings.NewReader("[{\"regulatory_ID\":\"A\"}]\n\t "))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}
}

func TestDecodeJSONKeepsNumberText(t *testing.T) {
	records, err := DecodeJSON(strings.NewReader(`[{"regulatory_ID":"A","age":34.0}]`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	age, ok := records[0]["age"].(json.Number)
	if !ok {
		t.Fatalf("Expected json.Number, got %T", records[0]["age"])
	}
	if age.String() != "34.0" {
		t.Errorf("Expected 34.0, got %s", age)
	}
}

func TestParseTSV(t *testing.T) {
	grid := "regulatory_ID\tsuspect_drug\tdose\r\n" +
		"CASE-1\tDrugX\t10 mg\r\n" +
		"\r\n" +
		"CASE-1\tDrugY\r\n"

	records, err := ParseTSV(strings.NewReader(grid))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := []entities.Record{
		{"regulatory_ID": "CASE-1", "suspect_drug": "DrugX", "dose": "10 mg"},
		{"regulatory_ID": "CASE-1", "suspect_drug": "DrugY", "dose": ""},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Errorf("Records mismatch (-expected +got):\n%s", diff)
	}
}

func TestParseTSVWindows1252(t *testing.T) {
	// "Réunion" encoded as Windows-1252
	grid := []byte("regulatory_ID\tcountry\nCASE-1\tR\xe9union\n")

	records, err := ParseTSV(bytes.NewReader(grid))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := records[0]["country"]; got != "Réunion" {
		t.Errorf("Expected Réunion, got %q", got)
	}
}

func TestParseTSVErrors(t *testing.T) {
	tests := []struct {
		name        string
		grid        string
		expectedErr error
	}{
		{"empty", "", ErrNoRecords},
		{"whitespace", "  \n\n", ErrNoRecords},
		{"single column", "just some text\nmore text", ErrNotTabular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTSV(strings.NewReader(tt.grid))
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("Expected error %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestUnrecognizedColumns(t *testing.T) {
	tests := []struct {
		name     string
		headers  []string
		expected []string
	}{
		{"all known", []string{"regulatory_ID", "age", "gender", "suspect_drug"}, nil},
		{"extra columns", []string{"regulatory_ID", "Notes", "age", "internal_ref"}, []string{"Notes", "internal_ref"}},
		{"blank headers ignored", []string{"regulatory_ID", "", "event"}, nil},
		{"case sensitive", []string{"Regulatory_ID", "AGE"}, []string{"Regulatory_ID", "AGE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, unrecognizedColumns(tt.headers)); diff != "" {
				t.Errorf("Unrecognized columns mismatch (-expected +got):\n%s", diff)
			}
		})
	}
}

func TestKnownColumnsCoverRecordFields(t *testing.T) {
	for _, c := range entities.Columns {
		if !knownColumns[c] {
			t.Errorf("Column %q missing from the known set", c)
		}
	}
	if len(knownColumns) != len(entities.Columns) {
		t.Errorf("Expected %d known columns, got %d", len(entities.Columns), len(knownColumns))
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"regulatory_ID", "suspect_drug", "age"},
		{"CASE-1", "DrugX", "34"},
		{},
		{"CASE-2", "DrugZ"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("Failed to build cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("Failed to write row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}

	records, err := ParseXLSX(buf)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := []entities.Record{
		{"regulatory_ID": "CASE-1", "suspect_drug": "DrugX", "age": "34"},
		{"regulatory_ID": "CASE-2", "suspect_drug": "DrugZ", "age": ""},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Errorf("Records mismatch (-expected +got):\n%s", diff)
	}
}

func TestParseXLSXRejectsNonWorkbook(t *testing.T) {
	_, err := ParseXLSX(strings.NewReader("regulatory_ID\tsuspect_drug"))
	if !errors.Is(err, ErrNotTabular) {
		t.Errorf("Expected ErrNotTabular, got %v", err)
	}
}

func TestGroupByRegulatoryID(t *testing.T) {
	records := []entities.Record{
		{"regulatory_ID": "CASE-B", "suspect_drug": "B1"},
		{"regulatory_ID": " CASE-A ", "suspect_drug": "A1"},
		{"regulatory_ID": "", "suspect_drug": "orphan"},
		{"regulatory_ID": "CASE-B", "suspect_drug": "B2"},
		{"suspect_drug": "no key"},
		{"regulatory_ID": "CASE-A", "suspect_drug": "A2"},
	}

	groups, skipped, err := GroupByRegulatoryID(records)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if skipped != 2 {
		t.Errorf("Expected 2 skipped rows, got %d", skipped)
	}

	var ids []string
	var drugs [][]any
	for _, g := range groups {
		ids = append(ids, g.RegulatoryID)
		var d []any
		for _, r := range g.Records {
			d = append(d, r["suspect_drug"])
		}
		drugs = append(drugs, d)
	}

	if diff := cmp.Diff([]string{"CASE-A", "CASE-B"}, ids); diff != "" {
		t.Errorf("Group order mismatch (-expected +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]any{{"A1", "A2"}, {"B1", "B2"}}, drugs); diff != "" {
		t.Errorf("Row order mismatch (-expected +got):\n%s", diff)
	}
}

func TestGroupByRegulatoryIDOrder(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{"numeric ids", `[{"regulatory_ID":10},{"regulatory_ID":2},{"regulatory_ID":1.5}]`, []string{"1.5", "2", "10"}},
		{"numeric strings", `[{"regulatory_ID":"100"},{"regulatory_ID":"20"}]`, []string{"20", "100"}},
		{"mixed ids sort as text", `[{"regulatory_ID":10},{"regulatory_ID":"2"},{"regulatory_ID":"CASE-1"}]`, []string{"10", "2", "CASE-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := DecodeJSON(strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			groups, _, err := GroupByRegulatoryID(records)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}

			var ids []string
			for _, g := range groups {
				ids = append(ids, g.RegulatoryID)
			}
			if diff := cmp.Diff(tt.expected, ids); diff != "" {
				t.Errorf("Group order mismatch (-expected +got):\n%s", diff)
			}
		})
	}
}

func TestGroupByRegulatoryIDErrors(t *testing.T) {
	if _, _, err := GroupByRegulatoryID(nil); !errors.Is(err, ErrNoRecords) {
		t.Errorf("Expected ErrNoRecords, got %v", err)
	}

	records := []entities.Record{{"suspect_drug": "DrugX"}}
	if _, _, err := GroupByRegulatoryID(records); !errors.Is(err, ErrMissingGroupingKey) {
		t.Errorf("Expected ErrMissingGroupingKey, got %v", err)
	}
}
