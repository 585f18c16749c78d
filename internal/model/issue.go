package model

// Severity grades a validation issue. Errors block downstream submission;
// warnings and information do not.
type Severity string

const (
	SeverityError       Severity = "error"
	SeverityWarning     Severity = "warning"
	SeverityInformation Severity = "information"
)

// ValidationIssue is one finding from the validator. Validation never
// raises; every problem is reported as data.
type ValidationIssue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Location string   `json:"location,omitempty"`
}

// CountBySeverity tallies issues per severity.
func CountBySeverity(issues []ValidationIssue) (errors, warnings, infos int) {
	for _, i := range issues {
		switch i.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	return
}

// Score categories. Weights sum to 100.
const (
	CategoryRequiredResources      = "required_resources"
	CategoryCodingCoverage         = "coding_coverage"
	CategoryStructuralCompleteness = "structural_completeness"
	CategoryReferentialIntegrity   = "referential_integrity"
)

// ReadinessScore is the 0-100 submission-readiness composite with its
// per-category breakdown.
type ReadinessScore struct {
	Total     int            `json:"total"`
	Breakdown map[string]int `json:"breakdown"`
}
