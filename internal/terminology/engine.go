package terminology

import (
	"github.com/gyeh/fhirbridge/internal/model"
	"github.com/gyeh/fhirbridge/internal/normalize"
)

// Default matcher tunables. Thresholds are parameters, not contracts.
const (
	DefaultMinScore    = 0.35
	DefaultAcceptScore = 0.70
	maxCandidates      = 5
)

// Engine maps free-text findings to terminology codes, fully offline.
// Identical (raw text, dictionary version) input always yields identical
// output, independent of process, goroutine, or call order.
type Engine struct {
	store       *Store
	minScore    float64
	acceptScore float64
}

// NewEngine creates an Engine over the given store. Zero thresholds fall
// back to the defaults.
func NewEngine(store *Store, minScore, acceptScore float64) *Engine {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	if acceptScore <= 0 {
		acceptScore = DefaultAcceptScore
	}
	return &Engine{store: store, minScore: minScore, acceptScore: acceptScore}
}

// Code resolves a finding's raw text against the type-appropriate
// dictionary. Empty raw text yields an empty candidate list, a nil chosen
// code, and the review flag; that is a data state, not an error. Only an unrecognized
// finding type errors, and that is a configuration fault.
//
// The chosen code is assigned only when the top candidate reaches the
// acceptance threshold; otherwise the finding is flagged for manual review.
func (e *Engine) Code(f model.ClinicalFinding) (model.ClinicalFinding, error) {
	dict, err := e.store.Current().ForType(f.Type)
	if err != nil {
		return f, err
	}

	f.NormalizedText = normalize.Text(f.RawText)
	if f.NormalizedText == "" {
		f.Candidates = nil
		f.Chosen = nil
		f.NeedsReview = true
		return f, nil
	}

	f.Candidates = dict.Match(f.NormalizedText, e.minScore, maxCandidates)
	if len(f.Candidates) > 0 && f.Candidates[0].Score >= e.acceptScore {
		top := f.Candidates[0]
		f.Chosen = &top
		f.NeedsReview = false
	} else {
		f.Chosen = nil
		f.NeedsReview = true
	}
	return f, nil
}

// CodeAll codes every finding in a document, returning a coded copy.
// Data-quality problems never abort the document; they surface per finding.
func (e *Engine) CodeAll(doc model.ExtractedDocument) (model.ExtractedDocument, error) {
	coded := make([]model.ClinicalFinding, len(doc.Findings))
	for i, f := range doc.Findings {
		if f.SourceDocumentID == "" {
			f.SourceDocumentID = doc.ID
		}
		cf, err := e.Code(f)
		if err != nil {
			return doc, err
		}
		coded[i] = cf
	}
	doc.Findings = coded
	return doc, nil
}

// Search exposes the matcher for interactive code lookup against a named
// system ("icd10" or "loinc").
func (e *Engine) Search(system, query string) ([]model.CandidateCode, error) {
	dict, err := e.store.Current().BySystem(system)
	if err != nil {
		return nil, err
	}
	return dict.Match(normalize.Text(query), e.minScore, maxCandidates), nil
}
