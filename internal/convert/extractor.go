package convert

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/gyeh/fhirbridge/internal/model"
)

// Source is one raw input document before extraction.
type Source struct {
	ID          string
	FileName    string
	ContentType string
	Data        []byte
}

// Extractor turns raw document bytes into a structured extraction. The
// implementation is a collaborator: OCR, an ML parser, or pre-extracted
// JSON all satisfy it.
type Extractor interface {
	Extract(ctx context.Context, src Source) (*model.ExtractedDocument, error)
}

// Detector classifies extracted content as one health-information type.
// Confidence below the caller's taste, or an empty type, means the bundle
// is built unclassified and the validator flags it.
type Detector interface {
	Detect(doc *model.ExtractedDocument) (hiType string, confidence float64)
}

// JSONExtractor decodes documents that already carry their structured
// extraction as JSON, the interchange form produced by an upstream parser.
type JSONExtractor struct{}

func (JSONExtractor) Extract(_ context.Context, src Source) (*model.ExtractedDocument, error) {
	var doc model.ExtractedDocument
	if err := json.Unmarshal(src.Data, &doc); err != nil {
		return nil, fmt.Errorf("parse extraction JSON: %w", err)
	}
	if doc.ID == "" {
		doc.ID = src.ID
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.FileName == "" {
		doc.FileName = src.FileName
	}
	if doc.ContentType == "" {
		doc.ContentType = src.ContentType
	}
	return &doc, nil
}

// HintDetector trusts the extraction's HI-type hint verbatim. It reports
// zero confidence when no hint is present.
type HintDetector struct{}

func (HintDetector) Detect(doc *model.ExtractedDocument) (string, float64) {
	if doc == nil || doc.Encounter.HITypeHint == "" {
		return "", 0
	}
	return doc.Encounter.HITypeHint, 1
}
