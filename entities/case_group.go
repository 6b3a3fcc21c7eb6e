package entities

// CaseGroup is the ordered set of records sharing one regulatory_ID.
// Groups are never empty: the grouping step only creates a group when it has a record for it.
type CaseGroup struct {
	RegulatoryID string   `json:"regulatory_ID"`
	Records      []Record `json:"records"`
}

// First returns the record case-level facts (demographics, event, receipt date...) are read from.
// Later records are only consulted for field-level data like drugs and history.
func (g CaseGroup) First() Record {
	if len(g.Records) == 0 {
		return Record{}
	}
	return g.Records[0]
}

// NarrativeResult pairs a case identifier with its generated narrative
type NarrativeResult struct {
	RegulatoryID string `json:"regulatory_ID"`
	Narrative    string `json:"narrative"`
}
