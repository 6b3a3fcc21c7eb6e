// Package narrative turns a case group into the three-paragraph narrative used in
// pharmacovigilance case reports: case overview, patient history and drug administration.
//
// Everything in this package is a pure function of its input. An Engine holds only
// immutable options, so one value can be shared by any number of goroutines.
package narrative

import (
	"strings"

	"github.com/giygas/narratives-api/entities"
)

// DefaultReceiver is the organization named as receiving the case in paragraph 1
const DefaultReceiver = "Alkem"

const paragraphSeparator = "\n\n"

// Engine builds narratives
type Engine struct {
	receiver string
}

// Option configures an Engine
type Option func(*Engine)

// WithReceiver sets the receiving organization. Blank names keep the default.
func WithReceiver(name string) Option {
	return func(e *Engine) {
		if name = strings.TrimSpace(name); name != "" {
			e.receiver = name
		}
	}
}

// New creates an engine
func New(opts ...Option) *Engine {
	e := &Engine{receiver: DefaultReceiver}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Receiver returns the receiving organization used in paragraph 1
func (e *Engine) Receiver() string {
	return e.receiver
}

// Build returns the narrative text of group: the three paragraphs separated by blank lines.
// Case-level fields are read from the first record only; divergent values in later records
// are ignored here (see validation.CheckGroupConsistency).
func (e *Engine) Build(group entities.CaseGroup) string {
	return e.caseOverview(group) +
		paragraphSeparator + patientHistory(group) +
		paragraphSeparator + drugAdministration(group)
}

// Generate builds the narrative of group and pairs it with the case identifier
func (e *Engine) Generate(group entities.CaseGroup) entities.NarrativeResult {
	return entities.NarrativeResult{
		RegulatoryID: group.RegulatoryID,
		Narrative:    e.Build(group),
	}
}

// BuildNarrative builds a narrative with the default options
func BuildNarrative(group entities.CaseGroup) string {
	return New().Build(group)
}
