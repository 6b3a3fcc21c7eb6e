package narrative

import "testing"

func TestFormatDate(t *testing.T) {
	tests := []struct {
		raw      string
		fallback string
		expected string
	}{
		{"2023-01-05", UnknownReceiptDate, "05-JAN-2023"},
		{"2023-01-05T10:30:00Z", UnknownReceiptDate, "05-JAN-2023"},
		{"January 5, 2023", UnknownReceiptDate, "05-JAN-2023"},
		{"2022-12-31", UnknownAdministrationDate, "31-DEC-2022"},
		{"5th January 2023", UnknownReceiptDate, "05-JAN-2023"},
		{"1st Feb 2023", UnknownReceiptDate, "01-FEB-2023"},
		{"22nd March 2021", UnknownReceiptDate, "22-MAR-2021"},
		{"January 3rd, 2023", UnknownReceiptDate, "03-JAN-2023"},
		{"5TH JANUARY 2023", UnknownReceiptDate, "05-JAN-2023"},
		{"Jan 2023", UnknownReceiptDate, "01-JAN-2023"},
		{"September 2022", UnknownAdministrationDate, "01-SEP-2022"},
		{"Mar-2020", UnknownReceiptDate, "01-MAR-2020"},
		{"not a date", UnknownReceiptDate, "unknown"},
		{"not a date", UnknownAdministrationDate, "unknown date"},
		{"", UnknownAdministrationDate, "unknown date"},
		{"unknown", UnknownReceiptDate, "unknown"},
		{"UNKNOWN", UnknownAdministrationDate, "unknown date"},
	}

	for _, tt := range tests {
		if got := FormatDate(tt.raw, tt.fallback); got != tt.expected {
			t.Errorf("FormatDate(%q, %q) = %q, expected %q", tt.raw, tt.fallback, got, tt.expected)
		}
	}
}

func TestParseDateReportsFailure(t *testing.T) {
	if _, ok := ParseDate("not a date"); ok {
		t.Error("Expected parse failure for free text")
	}

	parsed, ok := ParseDate("2023-01-05")
	if !ok {
		t.Fatal("Expected ISO date to parse")
	}
	if parsed.Year() != 2023 || parsed.Month() != 1 || parsed.Day() != 5 {
		t.Errorf("Unexpected parsed date: %v", parsed)
	}
}
