package bundle

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/gyeh/fhirbridge/internal/model"
)

func claimGraph(t *testing.T) *Graph {
	t.Helper()
	adm := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	rec := dischargeRecord()
	rec.Encounter = model.Encounter{AdmissionDate: &adm, Facility: "City Hospital", Physician: "Dr. Mehta"}
	rec.Findings = append(rec.Findings, model.FusedFinding{
		ClinicalFinding: model.ClinicalFinding{
			Type: model.FindingLabResult, RawText: "Haemoglobin", Value: "11.2", Unit: "g/dL", ReferenceRange: "12-15",
			Chosen: &model.CandidateCode{System: "loinc", Code: "718-7", Display: "Hemoglobin"},
		},
	})
	rec.Medications = []model.Medication{{Name: "Metformin", Dose: "500 mg", Frequency: "BD"}}

	b := &Builder{EmbedSource: true, Clock: fixedClock}
	g, err := b.Build(rec, dischargeDocs(), "discharge_summary", ModeClaim)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	g := claimGraph(t)

	raw, err := Encode(g)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(got.Nodes) != len(g.Nodes) {
		t.Fatalf("nodes = %d, want %d", len(got.Nodes), len(g.Nodes))
	}
	for i := range g.Nodes {
		if got.Nodes[i].Type != g.Nodes[i].Type || got.Nodes[i].LocalID != g.Nodes[i].LocalID {
			t.Errorf("entry %d = %s %s, want %s %s",
				i, got.Nodes[i].Type, got.Nodes[i].LocalID, g.Nodes[i].Type, g.Nodes[i].LocalID)
		}
	}
	if got.Mode != ModeClaim {
		t.Errorf("mode = %q", got.Mode)
	}
	if got.HIType != "DischargeSummary" {
		t.Errorf("hi type = %q", got.HIType)
	}
	if err := got.CheckInvariants(); err != nil {
		t.Errorf("invariants after round trip: %v", err)
	}

	p := got.NodesOfType(TypePatient)[0].Patient
	if p.Name != "Asha Rao" || p.Gender != "female" || p.BirthDate != "1975-06-01" || p.Identifier != "MRN-001" {
		t.Errorf("patient = %+v", p)
	}

	cond := got.NodesOfType(TypeCondition)[0].Condition
	if cond.Code.Code != "E11.9" || cond.ClinicalStatus != "active" {
		t.Errorf("condition = %+v", cond)
	}

	obs := got.NodesOfType(TypeObservation)[0].Observation
	if obs.Value != "11.2" || obs.Unit != "g/dL" || obs.ReferenceRange != "12-15" {
		t.Errorf("observation = %+v", obs)
	}

	ref := got.NodesOfType(TypeDocumentReference)[0].DocumentReference
	want := g.NodesOfType(TypeDocumentReference)[0].DocumentReference
	if ref.Title != want.Title || ref.Data != want.Data || ref.Hash != want.Hash || ref.DocumentID != want.DocumentID {
		t.Errorf("document reference = %+v, want %+v", ref, want)
	}

	cer := got.NodesOfType(TypeCoverageEligibilityRequest)[0].CoverageEligibilityRequest
	if len(cer.Purposes) != 2 || cer.Coverage == "" || cer.Priority != "normal" {
		t.Errorf("eligibility request = %+v", cer)
	}

	prov := got.NodesOfType(TypeProvenance)[0].Provenance
	if prov.AgentType != "assembler" || prov.AgentName != "fhirbridge" {
		t.Errorf("provenance agent = %q %q", prov.AgentType, prov.AgentName)
	}
	if len(prov.Targets) != len(g.Nodes)-1 {
		t.Errorf("provenance targets = %d", len(prov.Targets))
	}
}

func TestEncode_BundleEnvelope(t *testing.T) {
	g := claimGraph(t)
	raw, err := Encode(g)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var bundle map[string]any
	if err := json.Unmarshal(raw, &bundle); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if bundle["resourceType"] != "Bundle" || bundle["type"] != "document" {
		t.Errorf("envelope = %v %v", bundle["resourceType"], bundle["type"])
	}
	if bundle["timestamp"] != fixedClock().Format(time.RFC3339) {
		t.Errorf("timestamp = %v", bundle["timestamp"])
	}

	meta := bundle["meta"].(map[string]any)
	profiles := meta["profile"].([]any)
	if len(profiles) != 1 || profiles[0] != hiTypes["DischargeSummary"].BundleProfile {
		t.Errorf("profile = %v", profiles)
	}

	entries := bundle["entry"].([]any)
	first := entries[0].(map[string]any)
	if first["fullUrl"] != "urn:local:r1" {
		t.Errorf("entry 0 fullUrl = %v", first["fullUrl"])
	}
	res := first["resource"].(map[string]any)
	if res["resourceType"] != "Composition" {
		t.Errorf("entry 0 resource = %v", res["resourceType"])
	}
}

func TestEncode_EmptyGraph(t *testing.T) {
	if _, err := Encode(nil); err == nil {
		t.Fatal("want error for nil graph")
	}
	if _, err := Encode(&Graph{}); err == nil {
		t.Fatal("want error for empty graph")
	}
}

func TestDecode_RejectsNonBundle(t *testing.T) {
	if _, err := Decode([]byte(`{"resourceType":"Patient"}`)); err == nil {
		t.Fatal("want error for non-bundle resource")
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Fatal("want error for malformed input")
	}
}

func TestDecode_UnknownResourceTypeKept(t *testing.T) {
	raw := []byte(`{
		"resourceType": "Bundle",
		"type": "document",
		"entry": [
			{"fullUrl": "urn:local:r1", "resource": {"resourceType": "Device", "id": "r1",
				"status": "active", "patient": {"reference": "urn:local:r2"}}}
		]
	}`)

	g, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(g.Nodes) != 1 {
		t.Fatalf("nodes = %d", len(g.Nodes))
	}
	n := g.Nodes[0]
	if n.Type != "Device" || n.LocalID != "r1" {
		t.Errorf("node = %s %s", n.Type, n.LocalID)
	}
	if n.Ext["status"] != "active" {
		t.Errorf("ext = %v", n.Ext)
	}
	if len(n.Refs) != 1 || n.Refs[0] != "r2" {
		t.Errorf("refs = %v", n.Refs)
	}
}
