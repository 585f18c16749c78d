package model

import "time"

// FindingType classifies a clinical finding extracted from a document.
type FindingType string

const (
	FindingDiagnosis FindingType = "diagnosis"
	FindingLabResult FindingType = "lab_result"
	FindingProcedure FindingType = "procedure"
)

// AllFindingTypes lists the supported finding types in canonical order.
var AllFindingTypes = []FindingType{FindingDiagnosis, FindingLabResult, FindingProcedure}

// Valid reports whether t is one of the supported finding types.
func (t FindingType) Valid() bool {
	for _, ft := range AllFindingTypes {
		if t == ft {
			return true
		}
	}
	return false
}

// CandidateCode is one scored terminology match for a finding.
type CandidateCode struct {
	System      string  `json:"system"`
	Code        string  `json:"code"`
	Display     string  `json:"display"`
	Score       float64 `json:"score"`
	Specificity int     `json:"specificity"`
}

// ClinicalFinding is a single coded (or uncodable) clinical statement.
// It is immutable once produced by the coding engine except for the lazy
// Chosen assignment; uncertainty is carried in Candidates/NeedsReview
// rather than errors.
type ClinicalFinding struct {
	Type           FindingType     `json:"type"`
	RawText        string          `json:"raw_text"`
	NormalizedText string          `json:"normalized_text"`
	Candidates     []CandidateCode `json:"candidate_codes,omitempty"`
	Chosen         *CandidateCode  `json:"chosen_code,omitempty"`
	NeedsReview    bool            `json:"needs_manual_review,omitempty"`

	// Lab result payload, empty for diagnoses and procedures.
	Value          string `json:"value,omitempty"`
	Unit           string `json:"unit,omitempty"`
	ReferenceRange string `json:"reference_range,omitempty"`
	AbnormalFlag   string `json:"abnormal_flag,omitempty"`

	SourceDocumentID string    `json:"source_document_id,omitempty"`
	Timestamp        time.Time `json:"timestamp,omitzero"`
}

// Coded reports whether the finding carries a resolved code.
func (f *ClinicalFinding) Coded() bool {
	return f.Chosen != nil
}

// Medication is a prescribed or discharge medication line.
type Medication struct {
	Name      string `json:"name"`
	Dose      string `json:"dose,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}
