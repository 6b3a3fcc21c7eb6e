// Package validation checks case batches before narratives are generated
package validation

import (
	"errors"
	"fmt"

	"github.com/giygas/narratives-api/entities"
	"github.com/giygas/narratives-api/interfaces"
	"github.com/giygas/narratives-api/narrative"
)

// ErrTooManyRecords is returned when a batch exceeds the configured record limit
var ErrTooManyRecords = errors.New("too many records in batch")

// GroupValidatorImpl implements the interfaces.GroupValidator interface
type GroupValidatorImpl struct {
	maxRecords int
}

// NewGroupValidator creates a validator; maxRecords <= 0 disables the batch limit
func NewGroupValidator(maxRecords int) interfaces.GroupValidator {
	return &GroupValidatorImpl{maxRecords: maxRecords}
}

// ValidateRecordCount rejects batches over the record limit
func (v *GroupValidatorImpl) ValidateRecordCount(n int) error {
	if v.maxRecords > 0 && n > v.maxRecords {
		return fmt.Errorf("%w: %d records, maximum is %d", ErrTooManyRecords, n, v.maxRecords)
	}
	return nil
}

// CheckGroupConsistency compares the case-level fields of every record with the first one.
// Narratives only read the first record, so a divergence is reported, never corrected.
// Fields are returned in column order, each at most once.
func (v *GroupValidatorImpl) CheckGroupConsistency(group entities.CaseGroup) []string {
	if len(group.Records) < 2 {
		return nil
	}

	first := group.First()
	var divergent []string

	for _, field := range entities.CaseLevelFields {
		expected := narrative.Normalize(first.Get(field), narrative.Unknown)

		for _, r := range group.Records[1:] {
			value := narrative.Normalize(r.Get(field), narrative.Unknown)
			// rows that leave a case-level cell blank are continuation rows, not disagreements
			if value == narrative.Unknown {
				continue
			}
			if value != expected {
				divergent = append(divergent, field)
				break
			}
		}
	}

	return divergent
}
