package narrative

import (
	"fmt"
	"strings"

	"github.com/giygas/narratives-api/entities"
)

const noSuspectDrugs = "(no suspect drugs listed)"

// historyField pairs a paragraph 2 label (plural form) with its source column
type historyField struct {
	label string
	field string
}

var historyFields = []historyField{
	{label: "medical history", field: entities.FieldMedicalHistory},
	{label: "past drug therapy", field: entities.FieldPastDrugTherapy},
	{label: "concurrent conditions", field: entities.FieldConcurrentCondition},
	{label: "concomitant medications", field: entities.FieldConcomitantMedication},
}

// field normalizes a column of r with the unknown placeholder
func field(r entities.Record, name string) string {
	return Normalize(r.Get(name), Unknown)
}

// suspectDrugs returns the distinct known suspect drugs of the group in first-seen order
func suspectDrugs(group entities.CaseGroup) []string {
	seen := make(map[string]bool)
	var drugs []string

	for _, r := range group.Records {
		drug := field(r, entities.FieldSuspectDrug)
		if drug == Unknown || seen[drug] {
			continue
		}
		seen[drug] = true
		drugs = append(drugs, drug)
	}

	return drugs
}

// caseOverview builds paragraph 1 from the first record plus the group's suspect drugs
func (e *Engine) caseOverview(group entities.CaseGroup) string {
	row := group.First()

	justification := field(row, entities.FieldCaseJustification)
	caseType := field(row, entities.FieldCaseType)
	reporter := strings.ToLower(field(row, entities.FieldReporterType))
	title := field(row, entities.FieldPublicationTitle)
	country := field(row, entities.FieldCountry)
	receiptDate := FormatDate(field(row, entities.FieldIRD), UnknownReceiptDate)
	regulatoryID := field(row, entities.FieldRegulatoryID)
	coSuspect := field(row, entities.FieldCoSuspectDrug)
	event := field(row, entities.FieldEvent)

	patient := DescribePatient(
		Normalize(row.Get(entities.FieldAge), ""),
		Normalize(row.Get(entities.FieldGender), ""),
	)

	drugs := suspectDrugs(group)
	suspectText := noSuspectDrugs
	if len(drugs) > 0 {
		suspectText = JoinItems(drugs)
	}
	manufacturerText := "(unknown manufacturer)"
	if len(drugs) > 1 {
		manufacturerText = "(unknown manufacturers)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "This %s case was reported by a %s with medical literature %s, from %s. ",
		justification, reporter, title, country)
	fmt.Fprintf(&b, "This case was received by %s on %s from %s with %s. ",
		e.receiver, receiptDate, caseType, regulatoryID)
	fmt.Fprintf(&b, "It concerns %s, who was administered %s %s. ", patient, suspectText, manufacturerText)
	fmt.Fprintf(&b, "The co-suspect drug was %s. The patient experienced %s.", coSuspect, event)

	return b.String()
}

// patientHistory builds paragraph 2. Every record of the group contributes values;
// labels without any value end up in the closing "were not reported" sentence.
func patientHistory(group entities.CaseGroup) string {
	var clauses []string
	var notReported []string

	for _, hf := range historyFields {
		var values []string
		for _, r := range group.Records {
			if v := field(r, hf.field); v != Unknown {
				values = append(values, v)
			}
		}

		if len(values) == 0 {
			notReported = append(notReported, hf.label)
			continue
		}

		label := hf.label
		if len(values) == 1 {
			label = strings.TrimRight(label, "s")
		}
		clauses = append(clauses, label+" included "+JoinItems(values))
	}

	var sentences []string
	if len(clauses) > 0 {
		sentences = append(sentences, "The patient's "+strings.Join(clauses, ". ")+".")
	}
	if len(notReported) > 0 {
		sentences = append(sentences, "The "+JoinItems(notReported)+" were not reported.")
	}

	return strings.Join(sentences, " ")
}

// drugAdministration builds paragraph 3: one sentence per record, in input order,
// then the batch/expiration sentence.
func drugAdministration(group entities.CaseGroup) string {
	lines := make([]string, 0, len(group.Records)+1)

	for _, r := range group.Records {
		date := FormatDate(field(r, entities.FieldSuspectDrugStartDate), UnknownAdministrationDate)
		lines = append(lines, fmt.Sprintf(
			"On %s, the patient was administered %s at the dose of %s, frequency %s, via %s for %s.",
			date,
			field(r, entities.FieldSuspectDrug),
			field(r, entities.FieldDose),
			field(r, entities.FieldFrequency),
			field(r, entities.FieldRoute),
			Normalize(r.Get(entities.FieldIndication), "an unknown indication"),
		))
	}

	switch {
	case len(group.Records) == 1:
		lines = append(lines, "The batch number and expiration date were not reported.")
	case len(group.Records) > 1:
		lines = append(lines, "The batch numbers and expiration dates were not reported.")
	}

	return strings.Join(lines, " ")
}
