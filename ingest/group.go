package ingest

import (
	"math"
	"sort"
	"strconv"

	"github.com/giygas/narratives-api/entities"
	"github.com/giygas/narratives-api/narrative"
)

// GroupByRegulatoryID partitions records into case groups keyed by the trimmed regulatory_ID.
// Records keep their input order inside a group and groups are sorted by identifier,
// numerically when every identifier is a number.
// Rows with a null or blank identifier are left out and counted in skipped.
func GroupByRegulatoryID(records []entities.Record) (groups []entities.CaseGroup, skipped int, err error) {
	if len(records) == 0 {
		return nil, 0, ErrNoRecords
	}

	hasKey := false
	index := make(map[string]int)

	for _, r := range records {
		raw, ok := r[entities.FieldRegulatoryID]
		if ok {
			hasKey = true
		}

		id := narrative.Normalize(raw, "")
		if id == "" {
			skipped++
			continue
		}

		i, exists := index[id]
		if !exists {
			i = len(groups)
			index[id] = i
			groups = append(groups, entities.CaseGroup{RegulatoryID: id})
		}
		groups[i].Records = append(groups[i].Records, r)
	}

	if !hasKey {
		return nil, 0, ErrMissingGroupingKey
	}

	if keys, ok := numericIDs(groups); ok {
		sort.SliceStable(groups, func(a, b int) bool {
			return keys[groups[a].RegulatoryID] < keys[groups[b].RegulatoryID]
		})
	} else {
		sort.SliceStable(groups, func(a, b int) bool {
			return groups[a].RegulatoryID < groups[b].RegulatoryID
		})
	}

	return groups, skipped, nil
}

// numericIDs returns the parsed value of every group identifier, or false if any is not a number
func numericIDs(groups []entities.CaseGroup) (map[string]float64, bool) {
	keys := make(map[string]float64, len(groups))
	for _, g := range groups {
		v, err := strconv.ParseFloat(g.RegulatoryID, 64)
		if err != nil || math.IsNaN(v) {
			return nil, false
		}
		keys[g.RegulatoryID] = v
	}
	return keys, true
}
