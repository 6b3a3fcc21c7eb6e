// Package entities holds the case record types shared by ingestion, the narrative engine
// and the HTTP boundary.
package entities

// Recognized case record columns
const (
	FieldRegulatoryID          = "regulatory_ID"
	FieldCaseJustification     = "case_justification"
	FieldCaseType              = "case_type"
	FieldReporterType          = "reporter_type"
	FieldPublicationTitle      = "publication_title"
	FieldCountry               = "country"
	FieldIRD                   = "IRD" // initial receipt date
	FieldAge                   = "age"
	FieldGender                = "gender"
	FieldSuspectDrug           = "suspect_drug"
	FieldCoSuspectDrug         = "co_suspect_drug"
	FieldEvent                 = "event"
	FieldMedicalHistory        = "medical_history"
	FieldPastDrugTherapy       = "past_drug_therapy"
	FieldConcurrentCondition   = "concurrent_condition"
	FieldConcomitantMedication = "concomitant_medication"
	FieldDose                  = "dose"
	FieldFrequency             = "frequency"
	FieldRoute                 = "route"
	FieldIndication            = "indication"
	FieldSuspectDrugStartDate  = "suspect_drug_start_date"
)

// Columns lists the recognized columns in the order the paste grid shows them
var Columns = []string{
	FieldRegulatoryID,
	FieldCaseJustification,
	FieldCaseType,
	FieldReporterType,
	FieldPublicationTitle,
	FieldCountry,
	FieldIRD,
	FieldAge,
	FieldGender,
	FieldSuspectDrug,
	FieldCoSuspectDrug,
	FieldEvent,
	FieldMedicalHistory,
	FieldPastDrugTherapy,
	FieldConcurrentCondition,
	FieldConcomitantMedication,
	FieldDose,
	FieldFrequency,
	FieldRoute,
	FieldIndication,
	FieldSuspectDrugStartDate,
}

// CaseLevelFields are read from the first record of a group only
var CaseLevelFields = []string{
	FieldCaseJustification,
	FieldCaseType,
	FieldReporterType,
	FieldPublicationTitle,
	FieldCountry,
	FieldIRD,
	FieldAge,
	FieldGender,
	FieldCoSuspectDrug,
	FieldEvent,
}

// Record is one row of case data. Values are scalars (string, json.Number, float64, int, bool)
// or nil; a missing key and a nil value mean the same thing.
type Record map[string]any

// Get returns the raw value of a field, nil when absent
func (r Record) Get(field string) any {
	if r == nil {
		return nil
	}
	return r[field]
}
