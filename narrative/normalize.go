package narrative

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unknown is the placeholder substituted for any missing or blank field
const Unknown = "unknown"

// Normalize returns the trimmed string form of value, or def when the value is nil, NaN
// or blank after trimming. It never fails.
func Normalize(value any, def string) string {
	var s string

	switch v := value.(type) {
	case nil:
		return def
	case string:
		s = v
	case json.Number:
		s = v.String()
	case float64:
		if math.IsNaN(v) {
			return def
		}
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		if math.IsNaN(float64(v)) {
			return def
		}
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// JoinItems joins items the way a sentence lists them: "a", "a and b", "a, b, and c".
// Empty items are dropped first and the input order is kept.
func JoinItems(items []string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if item != "" {
			kept = append(kept, item)
		}
	}

	switch len(kept) {
	case 0:
		return ""
	case 1:
		return kept[0]
	case 2:
		return kept[0] + " and " + kept[1]
	default:
		return strings.Join(kept[:len(kept)-1], ", ") + ", and " + kept[len(kept)-1]
	}
}
