package convert

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gyeh/fhirbridge/internal/bundle"
	"github.com/gyeh/fhirbridge/internal/config"
	"github.com/gyeh/fhirbridge/internal/model"
	"github.com/gyeh/fhirbridge/internal/terminology"
)

func testConverter(t *testing.T) *Converter {
	t.Helper()
	store, err := terminology.NewStore(terminology.DefaultSet())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return New(store, zerolog.Nop(), config.Default())
}

func dischargeDoc() model.ExtractedDocument {
	return model.ExtractedDocument{
		ID:           "doc-a",
		FileName:     "discharge.json",
		ContentType:  "application/json",
		Demographics: model.Demographics{Name: "Asha Rao", Gender: "F", BirthDate: "1975-06-01"},
		Findings: []model.ClinicalFinding{
			{Type: model.FindingDiagnosis, RawText: "Type 2 Diabetes Mellitus"},
			{Type: model.FindingDiagnosis, RawText: "Hypertension"},
		},
		Medications: []model.Medication{{Name: "Metformin", Dose: "500 mg", Frequency: "BD"}},
		Source:      []byte(`{"id":"doc-a"}`),
	}
}

func TestConvert_EndToEnd(t *testing.T) {
	c := testConverter(t)

	res, err := c.Convert(context.Background(), dischargeDoc(), "discharge_summary")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !res.Valid() {
		t.Errorf("invalid result, issues = %+v", res.Issues)
	}
	if res.Score.Total < 90 {
		t.Errorf("score = %d, breakdown = %v", res.Score.Total, res.Score.Breakdown)
	}
	if res.HIType != "DischargeSummary" {
		t.Errorf("hi type = %q", res.HIType)
	}
	if res.Graph.Nodes[0].Type != bundle.TypeComposition {
		t.Errorf("entry 0 = %s", res.Graph.Nodes[0].Type)
	}

	conds := res.Graph.NodesOfType(bundle.TypeCondition)
	if len(conds) != 2 {
		t.Fatalf("conditions = %d", len(conds))
	}
	if conds[0].Condition.Code.Code != "E11.9" {
		t.Errorf("condition code = %+v", conds[0].Condition.Code)
	}
	if len(res.Documents) != 1 || res.Record == nil {
		t.Errorf("documents = %d, record = %v", len(res.Documents), res.Record)
	}
}

func TestConvert_UnknownFindingType(t *testing.T) {
	c := testConverter(t)
	doc := dischargeDoc()
	doc.Findings = append(doc.Findings, model.ClinicalFinding{Type: "vitals", RawText: "BP 120/80"})

	_, err := c.Convert(context.Background(), doc, "discharge_summary")
	if err == nil {
		t.Fatal("want error for unsupported finding type")
	}
	var pe *PipelineError
	if !errors.As(err, &pe) || pe.Phase != "code" {
		t.Errorf("err = %v", err)
	}
	if !errors.Is(err, terminology.ErrUnknownFindingType) {
		t.Errorf("err = %v, want ErrUnknownFindingType in chain", err)
	}
}

func TestConvertClaim_PartialFailure(t *testing.T) {
	c := testConverter(t)

	good := []byte(`{
		"id": "doc-a",
		"demographics": {"name": "Asha Rao", "gender": "F"},
		"encounter": {"hi_type_hint": "discharge_summary"},
		"findings": [{"type": "diagnosis", "raw_text": "Dengue fever"}]
	}`)
	sources := []Source{
		{ID: "src-1", FileName: "a.json", Data: good},
		{ID: "src-2", FileName: "b.json", Data: []byte(`{broken`)},
	}

	res, err := c.ConvertClaim(context.Background(), sources, JSONExtractor{}, HintDetector{}, "")
	if err != nil {
		t.Fatalf("ConvertClaim: %v", err)
	}
	if len(res.Failures) != 1 || res.Failures[0].DocumentID != "src-2" {
		t.Fatalf("failures = %+v", res.Failures)
	}
	if len(res.Documents) != 1 {
		t.Errorf("documents = %d", len(res.Documents))
	}
	if res.HIType != "DischargeSummary" {
		t.Errorf("hi type = %q, want hint-detected classification", res.HIType)
	}
	if res.Graph.Mode != bundle.ModeClaim {
		t.Errorf("mode = %q", res.Graph.Mode)
	}
	if len(res.Graph.NodesOfType(bundle.TypeCoverage)) != 1 {
		t.Error("claim bundle has no Coverage")
	}
}

func TestConvertClaim_AllFailed(t *testing.T) {
	c := testConverter(t)
	sources := []Source{{ID: "src-1", Data: []byte(`{broken`)}}

	_, err := c.ConvertClaim(context.Background(), sources, JSONExtractor{}, nil, "")
	var pe *PipelineError
	if !errors.As(err, &pe) || pe.Phase != "extract" {
		t.Fatalf("err = %v", err)
	}
}

func TestConvertClaim_Limits(t *testing.T) {
	c := testConverter(t)

	if _, err := c.ConvertClaim(context.Background(), nil, JSONExtractor{}, nil, ""); err == nil {
		t.Error("want error for empty source list")
	}

	over := make([]Source, c.cfg.MaxClaimDocuments+1)
	for i := range over {
		over[i] = Source{ID: "src", Data: []byte(`{}`)}
	}
	if _, err := c.ConvertClaim(context.Background(), over, JSONExtractor{}, nil, ""); err == nil {
		t.Error("want error above document limit")
	}
}

func TestValidateBundle_RoundTrip(t *testing.T) {
	c := testConverter(t)

	res, err := c.Convert(context.Background(), dischargeDoc(), "discharge_summary")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	raw, err := bundle.Encode(res.Graph)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	checked, err := c.ValidateBundle(raw)
	if err != nil {
		t.Fatalf("ValidateBundle: %v", err)
	}
	if !checked.Valid() {
		t.Errorf("issues = %+v", checked.Issues)
	}
	if checked.Score.Total != res.Score.Total {
		t.Errorf("score = %d, want %d", checked.Score.Total, res.Score.Total)
	}

	if _, err := c.ValidateBundle([]byte(`{"resourceType":"Patient"}`)); err == nil {
		t.Error("want error for non-bundle input")
	}
}

func TestSearch(t *testing.T) {
	c := testConverter(t)
	matches, err := c.Search(terminology.SystemLOINC, "HbA1c")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 || matches[0].Code != "4548-4" {
		t.Errorf("matches = %+v", matches)
	}
}

func TestJSONExtractor_Defaults(t *testing.T) {
	src := Source{ID: "src-7", FileName: "doc.json", ContentType: "application/json", Data: []byte(`{}`)}

	doc, err := JSONExtractor{}.Extract(context.Background(), src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.ID != "src-7" || doc.FileName != "doc.json" || doc.ContentType != "application/json" {
		t.Errorf("doc = %+v", doc)
	}

	doc, err = JSONExtractor{}.Extract(context.Background(), Source{Data: []byte(`{}`)})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.ID == "" {
		t.Error("no id generated")
	}
}

func TestHintDetector(t *testing.T) {
	d := HintDetector{}
	if ht, conf := d.Detect(nil); ht != "" || conf != 0 {
		t.Errorf("nil doc = %q %v", ht, conf)
	}
	doc := &model.ExtractedDocument{}
	if ht, conf := d.Detect(doc); ht != "" || conf != 0 {
		t.Errorf("no hint = %q %v", ht, conf)
	}
	doc.Encounter.HITypeHint = "prescription"
	if ht, conf := d.Detect(doc); ht != "prescription" || conf != 1 {
		t.Errorf("hint = %q %v", ht, conf)
	}
}
