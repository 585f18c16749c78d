package model

// ConflictValue is one document's value for a disputed field or concept.
type ConflictValue struct {
	DocumentID string `json:"document_id"`
	Value      string `json:"value"`
}

// Resolution records how a conflict was settled and by which rule.
type Resolution struct {
	Value string `json:"value"`
	Rule  string `json:"rule"`
}

// Conflict resolution rules.
const (
	RuleMostRecentEncounter = "most-recent-encounter"
	RuleMajority            = "majority"
	RuleDisputedCode        = "disputed-code"
)

// Conflict is a detected disagreement between source documents over the
// same logical field or concept. Resolution is nil when unresolved.
type Conflict struct {
	FieldPath  string          `json:"field_path"`
	Values     []ConflictValue `json:"values"`
	Resolution *Resolution     `json:"resolution,omitempty"`
}

// Resolved reports whether the conflict carries a resolution.
func (c *Conflict) Resolved() bool {
	return c.Resolution != nil
}

// FusedFinding is a finding in the fused record together with every source
// document that contributed it.
type FusedFinding struct {
	ClinicalFinding
	SourceDocumentIDs []string `json:"source_document_ids"`
}

// FusedRecord is the canonical merge of N coded documents: reconciled
// demographics, deduplicated findings, and the conflicts surfaced while
// merging.
type FusedRecord struct {
	Demographics      Demographics   `json:"demographics"`
	Encounter         Encounter      `json:"encounter"`
	Findings          []FusedFinding `json:"findings,omitempty"`
	Medications       []Medication   `json:"medications,omitempty"`
	Conflicts         []Conflict     `json:"conflicts,omitempty"`
	SourceDocumentIDs []string       `json:"source_document_ids"`
}

// UnresolvedConflicts returns the conflicts fusion could not settle.
func (r *FusedRecord) UnresolvedConflicts() []Conflict {
	var out []Conflict
	for _, c := range r.Conflicts {
		if !c.Resolved() {
			out = append(out, c)
		}
	}
	return out
}
