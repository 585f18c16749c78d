package model

import "time"

// Demographics holds the cardinality-1 patient fields reconciled by fusion.
// Empty string means unknown; fusion may null a field rather than guess.
type Demographics struct {
	Name      string `json:"name,omitempty"`
	Gender    string `json:"gender,omitempty"`
	BirthDate string `json:"birth_date,omitempty"` // ISO 8601 date
	PatientID string `json:"patient_id,omitempty"`
}

// Encounter carries per-document encounter metadata from extraction.
type Encounter struct {
	Date          *time.Time `json:"date,omitempty"` // authoritative encounter date, used for recency
	AdmissionDate *time.Time `json:"admission_date,omitempty"`
	DischargeDate *time.Time `json:"discharge_date,omitempty"`
	Facility      string     `json:"facility,omitempty"`
	FacilityID    string     `json:"facility_id,omitempty"`
	Physician     string     `json:"physician,omitempty"`
	HITypeHint    string     `json:"hi_type_hint,omitempty"`
}

// ExtractedDocument is the structured extraction of one source document.
// It is produced by the extraction collaborator and read-only to the core;
// the coding engine returns a copy with coded findings.
type ExtractedDocument struct {
	ID           string            `json:"id"`
	FileName     string            `json:"file_name,omitempty"`
	Demographics Demographics      `json:"demographics"`
	Encounter    Encounter         `json:"encounter"`
	Findings     []ClinicalFinding `json:"findings,omitempty"`
	Medications  []Medication      `json:"medications,omitempty"`
	Sections     map[string]string `json:"sections,omitempty"`

	// Original document bytes, embedded into the DocumentReference node
	// when source embedding is enabled.
	Source      []byte `json:"source,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// PartialFailure names a document that failed extraction or coding within
// a multi-document request. The remaining documents still proceed.
type PartialFailure struct {
	DocumentID string `json:"document_id"`
	Reason     string `json:"reason"`
}
