package narrative

import (
	"math"
	"strconv"
	"strings"
)

// maxAge bounds the float to int conversion; anything above is not an age
const maxAge = 1e15

// isKnown reports whether a demographic value carries information
func isKnown(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", Unknown, "nan":
		return false
	}
	return true
}

// parseAge truncates a numeric age to whole years
func parseAge(raw string) (int64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.Abs(f) > maxAge {
		return 0, false
	}
	return int64(math.Trunc(f)), true
}

// agePhrase returns e.g. "an 8-year-old", or "" when the age is not a number
func agePhrase(raw string) string {
	years, ok := parseAge(raw)
	if !ok {
		return ""
	}
	return withArticle(strconv.FormatInt(years, 10) + "-year-old")
}

// DescribePatient builds the demographic phrase of paragraph 1:
//
//	both known   "a 34-year-old male patient"
//	age only     "an 8-year-old patient (unknown gender)"
//	gender only  "a female patient (unknown age)"
//	neither      "patient (unknown demographics)"
//
// An age that is present but not numeric contributes no words.
func DescribePatient(ageRaw, genderRaw string) string {
	ageKnown := isKnown(ageRaw)
	genderKnown := isKnown(genderRaw)
	gender := strings.ToLower(strings.TrimSpace(genderRaw))

	switch {
	case ageKnown && genderKnown:
		return joinWords(agePhrase(ageRaw), gender, "patient")
	case ageKnown:
		return joinWords(agePhrase(ageRaw), "patient (unknown gender)")
	case genderKnown:
		return withArticle(gender) + " patient (unknown age)"
	default:
		return "patient (unknown demographics)"
	}
}

// joinWords joins the non-empty words with single spaces
func joinWords(words ...string) string {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
