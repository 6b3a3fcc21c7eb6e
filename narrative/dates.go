package narrative

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Fallback texts used when a date cannot be parsed
const (
	UnknownReceiptDate        = "unknown"
	UnknownAdministrationDate = "unknown date"
)

// displayDateLayout renders dates as DD-MON-YYYY once upper-cased
const displayDateLayout = "02-Jan-2006"

// ordinalDay matches day numbers written as 1st, 22nd, 3rd or 5th
var ordinalDay = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)

// fallbackLayouts are tried in order when dateparse rejects the input.
// Month-year dates resolve to the first day of the month.
var fallbackLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
	"January 2006",
	"Jan 2006",
	"Jan-2006",
}

// ParseDate parses a loosely formatted date. The boolean reports whether raw held a date;
// blank input and the unknown placeholder are reported as not parsed.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, Unknown) {
		return time.Time{}, false
	}

	raw = ordinalDay.ReplaceAllString(raw, "$1")
	if t, err := dateparse.ParseIn(raw, time.UTC); err == nil {
		return t, true
	}

	normalized := strings.Join(strings.Fields(strings.ReplaceAll(raw, ",", " ")), " ")
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, normalized, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders raw as e.g. 05-JAN-2023, or returns fallback when it does not parse
func FormatDate(raw, fallback string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return fallback
	}
	return strings.ToUpper(t.Format(displayDateLayout))
}
