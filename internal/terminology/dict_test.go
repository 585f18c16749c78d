package terminology

import (
	"reflect"
	"testing"
)

func TestMatch_ExactTermScoresOne(t *testing.T) {
	d := DefaultSet().Diagnosis

	got := d.Match("type 2 diabetes mellitus", DefaultMinScore, 5)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 candidate for exact match, got %d", len(got))
	}
	if got[0].Code != "E11.9" {
		t.Errorf("code = %s, want E11.9", got[0].Code)
	}
	if got[0].Score != 1.0 {
		t.Errorf("score = %v, want 1.0", got[0].Score)
	}
}

func TestMatch_Deterministic(t *testing.T) {
	d := DefaultSet().Diagnosis

	first := d.Match("acute infarction of the heart", 0.1, 5)
	for i := 0; i < 20; i++ {
		got := d.Match("acute infarction of the heart", 0.1, 5)
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs:\n%v\nvs\n%v", i, got, first)
		}
	}
}

func TestMatch_PartialScoreBelowOne(t *testing.T) {
	d := DefaultSet().Diagnosis

	got := d.Match("severe dengue fever", DefaultMinScore, 5)
	if len(got) == 0 {
		t.Fatal("expected candidates for partial match")
	}
	if got[0].Code != "A90" {
		t.Errorf("top candidate = %s, want A90", got[0].Code)
	}
	if got[0].Score >= 1.0 || got[0].Score < DefaultMinScore {
		t.Errorf("score = %v, want in [%v, 1)", got[0].Score, DefaultMinScore)
	}
}

func TestMatch_BelowThresholdDiscarded(t *testing.T) {
	d := DefaultSet().Diagnosis

	if got := d.Match("quantum flux capacitor", DefaultMinScore, 5); len(got) != 0 {
		t.Errorf("expected no candidates, got %v", got)
	}
}

func TestMatch_TieBreakByCode(t *testing.T) {
	d := NewDictionary(SystemICD10, URIICD10, []Entry{
		{Term: "fever beta", Code: "R50.9", Display: "Fever beta"},
		{Term: "fever alpha", Code: "R50.1", Display: "Fever alpha"},
		{Term: "fever gamma short", Code: "R50", Display: "Fever gamma"},
	})

	// "fever" overlaps all three terms with the same weight, so the order
	// falls to specificity, then to the code tie-breaks.
	got := d.Match("fever", 0.1, 5)
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d: %v", len(got), got)
	}
	if got[0].Code != "R50" {
		t.Errorf("first = %s, want R50 (highest specificity)", got[0].Code)
	}
	if got[1].Code != "R50.1" || got[2].Code != "R50.9" {
		t.Errorf("tie order = %s, %s; want R50.1 then R50.9", got[1].Code, got[2].Code)
	}
}

func TestMatch_LimitApplies(t *testing.T) {
	d := DefaultSet().Lab

	got := d.Match("serum total count", 0.01, 3)
	if len(got) > 3 {
		t.Errorf("limit ignored: got %d candidates", len(got))
	}
}

func TestNewDictionary_DerivesSpecificity(t *testing.T) {
	d := NewDictionary(SystemICD10, URIICD10, []Entry{
		{Term: "Chronic Kidney Disease", Code: "N18.9", Display: "CKD"},
	})
	got := d.Match("chronic kidney disease", 0.1, 5)
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Specificity != 3 {
		t.Errorf("specificity = %d, want 3 (token count)", got[0].Specificity)
	}
}
