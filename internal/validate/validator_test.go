package validate

import (
	"testing"
	"time"

	"github.com/gyeh/fhirbridge/internal/bundle"
	"github.com/gyeh/fhirbridge/internal/model"
)

func buildGraph(t *testing.T, hiType string, docs []model.ExtractedDocument, rec *model.FusedRecord) *bundle.Graph {
	t.Helper()
	b := &bundle.Builder{Clock: func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}}
	g, err := b.Build(rec, docs, hiType, bundle.ModeSingle)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func fullRecord() *model.FusedRecord {
	return &model.FusedRecord{
		Demographics: model.Demographics{Name: "Asha Rao", Gender: "female", BirthDate: "1975-06-01"},
		Findings: []model.FusedFinding{
			{ClinicalFinding: model.ClinicalFinding{
				Type: model.FindingDiagnosis, RawText: "Type 2 diabetes mellitus",
				Chosen: &model.CandidateCode{System: "icd10", Code: "E11.9", Display: "Type 2 diabetes mellitus"},
			}},
		},
		SourceDocumentIDs: []string{"doc-a"},
	}
}

func sourceDocs() []model.ExtractedDocument {
	return []model.ExtractedDocument{{ID: "doc-a", FileName: "discharge.json", ContentType: "application/json"}}
}

func findIssue(issues []model.ValidationIssue, code string) *model.ValidationIssue {
	for i := range issues {
		if issues[i].Code == code {
			return &issues[i]
		}
	}
	return nil
}

func TestValidate_CompleteBundleScoresFull(t *testing.T) {
	g := buildGraph(t, "discharge_summary", sourceDocs(), fullRecord())

	issues, score := Validate(g)
	if errs, _, _ := model.CountBySeverity(issues); errs != 0 {
		t.Fatalf("errors = %d, issues = %+v", errs, issues)
	}
	if score.Total != 100 {
		t.Errorf("total = %d, breakdown = %v", score.Total, score.Breakdown)
	}
	for _, cat := range []string{
		model.CategoryRequiredResources,
		model.CategoryCodingCoverage,
		model.CategoryStructuralCompleteness,
		model.CategoryReferentialIntegrity,
	} {
		if _, ok := score.Breakdown[cat]; !ok {
			t.Errorf("breakdown missing %s", cat)
		}
	}
}

func TestValidate_LabBundleScoresFull(t *testing.T) {
	rec := fullRecord()
	rec.Findings = append(rec.Findings, model.FusedFinding{
		ClinicalFinding: model.ClinicalFinding{
			Type: model.FindingLabResult, RawText: "Haemoglobin", Value: "11.2", Unit: "g/dL",
			Chosen: &model.CandidateCode{System: "loinc", Code: "718-7", Display: "Hemoglobin"},
		},
	})
	g := buildGraph(t, "discharge_summary", sourceDocs(), rec)

	issues, score := Validate(g)
	if issue := findIssue(issues, CodeSectionUnlinked); issue != nil {
		t.Errorf("unexpected unlinked clinical node: %+v", issue)
	}
	if errs, _, _ := model.CountBySeverity(issues); errs != 0 {
		t.Errorf("errors = %d, issues = %+v", errs, issues)
	}
	if score.Breakdown[model.CategoryStructuralCompleteness] != 20 {
		t.Errorf("structural = %d, breakdown = %v", score.Breakdown[model.CategoryStructuralCompleteness], score.Breakdown)
	}
	if score.Total != 100 {
		t.Errorf("total = %d", score.Total)
	}
}

func TestValidate_MissingCategoryZeroesStructural(t *testing.T) {
	g := buildGraph(t, "unknown", sourceDocs(), fullRecord())

	issues, score := Validate(g)
	issue := findIssue(issues, CodeCompositionCategoryMissing)
	if issue == nil {
		t.Fatalf("no %s issue in %+v", CodeCompositionCategoryMissing, issues)
	}
	if issue.Severity != model.SeverityError {
		t.Errorf("severity = %s", issue.Severity)
	}
	if score.Breakdown[model.CategoryStructuralCompleteness] != 0 {
		t.Errorf("structural = %d, want 0", score.Breakdown[model.CategoryStructuralCompleteness])
	}
	if score.Total >= 100 {
		t.Errorf("total = %d", score.Total)
	}
}

func TestValidate_UncodedFindingsLowerCoverage(t *testing.T) {
	coded := fullRecord()
	mixed := fullRecord()
	mixed.Findings = append(mixed.Findings, model.FusedFinding{
		ClinicalFinding: model.ClinicalFinding{Type: model.FindingDiagnosis, RawText: "vague pain", NeedsReview: true},
	})

	_, codedScore := Validate(buildGraph(t, "discharge_summary", sourceDocs(), coded))
	issues, mixedScore := Validate(buildGraph(t, "discharge_summary", sourceDocs(), mixed))

	if mixedScore.Breakdown[model.CategoryCodingCoverage] >= codedScore.Breakdown[model.CategoryCodingCoverage] {
		t.Errorf("coverage did not drop: %d vs %d",
			mixedScore.Breakdown[model.CategoryCodingCoverage], codedScore.Breakdown[model.CategoryCodingCoverage])
	}
	issue := findIssue(issues, CodeUncodedFinding)
	if issue == nil || issue.Severity != model.SeverityWarning {
		t.Errorf("uncoded finding issue = %+v", issue)
	}
	// Uncoded content is a quality problem, not a blocker.
	if errs, _, _ := model.CountBySeverity(issues); errs != 0 {
		t.Errorf("errors = %d", errs)
	}
}

func TestValidate_NoClinicalContent(t *testing.T) {
	rec := fullRecord()
	rec.Findings = nil
	g := buildGraph(t, "discharge_summary", sourceDocs(), rec)

	issues, score := Validate(g)
	if findIssue(issues, CodeNoClinicalContent) == nil {
		t.Fatalf("no %s issue in %+v", CodeNoClinicalContent, issues)
	}
	if score.Breakdown[model.CategoryRequiredResources] != 24 {
		t.Errorf("required = %d, want 4 of 5 kinds", score.Breakdown[model.CategoryRequiredResources])
	}
	// No clinical entries to code: coverage is vacuously full.
	if score.Breakdown[model.CategoryCodingCoverage] != 30 {
		t.Errorf("coverage = %d", score.Breakdown[model.CategoryCodingCoverage])
	}
}

func TestValidate_DuplicateLocalID(t *testing.T) {
	g := buildGraph(t, "discharge_summary", sourceDocs(), fullRecord())
	g.Nodes[2].LocalID = g.Nodes[1].LocalID

	issues, score := Validate(g)
	if findIssue(issues, CodeDuplicateLocalID) == nil {
		t.Fatalf("no %s issue in %+v", CodeDuplicateLocalID, issues)
	}
	if score.Breakdown[model.CategoryReferentialIntegrity] >= 20 {
		t.Errorf("referential = %d", score.Breakdown[model.CategoryReferentialIntegrity])
	}
}

func TestValidate_UnresolvedReference(t *testing.T) {
	g := buildGraph(t, "discharge_summary", sourceDocs(), fullRecord())
	g.Nodes[2].Refs = append(g.Nodes[2].Refs, "r99")

	issues, score := Validate(g)
	issue := findIssue(issues, CodeUnresolvedReference)
	if issue == nil {
		t.Fatalf("no %s issue in %+v", CodeUnresolvedReference, issues)
	}
	if issue.Severity != model.SeverityError {
		t.Errorf("severity = %s", issue.Severity)
	}
	if score.Breakdown[model.CategoryReferentialIntegrity] >= 20 {
		t.Errorf("referential = %d", score.Breakdown[model.CategoryReferentialIntegrity])
	}
}

func TestValidate_CompositionNotFirst(t *testing.T) {
	g := buildGraph(t, "discharge_summary", sourceDocs(), fullRecord())
	g.Nodes[0], g.Nodes[1] = g.Nodes[1], g.Nodes[0]

	issues, _ := Validate(g)
	if findIssue(issues, CodeCompositionNotFirst) == nil {
		t.Fatalf("no %s issue in %+v", CodeCompositionNotFirst, issues)
	}
}

func TestValidate_MissingPatientAndComposition(t *testing.T) {
	g := &bundle.Graph{Nodes: []*bundle.ResourceNode{
		{Type: bundle.TypeCondition, LocalID: "r1", Condition: &bundle.Condition{Text: "fever"}},
	}}

	issues, score := Validate(g)
	if findIssue(issues, CodeCompositionMissing) == nil || findIssue(issues, CodePatientMissing) == nil {
		t.Fatalf("issues = %+v", issues)
	}
	if score.Breakdown[model.CategoryStructuralCompleteness] != 0 {
		t.Errorf("structural = %d", score.Breakdown[model.CategoryStructuralCompleteness])
	}
}

func TestValidate_EmptyGraph(t *testing.T) {
	for _, g := range []*bundle.Graph{nil, {}} {
		issues, score := Validate(g)
		if len(issues) != 1 || issues[0].Code != CodeEmptyGraph {
			t.Errorf("issues = %+v", issues)
		}
		if score.Total != 0 {
			t.Errorf("total = %d", score.Total)
		}
	}
}
