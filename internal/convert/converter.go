// Package convert orchestrates the conversion pipeline: code the findings,
// fuse multi-document input, build the resource graph, validate and score.
package convert

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gyeh/fhirbridge/internal/bundle"
	"github.com/gyeh/fhirbridge/internal/config"
	"github.com/gyeh/fhirbridge/internal/fusion"
	"github.com/gyeh/fhirbridge/internal/model"
	"github.com/gyeh/fhirbridge/internal/terminology"
	"github.com/gyeh/fhirbridge/internal/validate"
)

// PipelineError wraps an error with the stage where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a conversion: the graph with its validation
// verdict, plus the intermediate artifacts callers persist or display.
type Result struct {
	Graph  *bundle.Graph
	Issues []model.ValidationIssue
	Score  model.ReadinessScore

	HIType    string
	Documents []model.ExtractedDocument // coded inputs, in fusion order
	Record    *model.FusedRecord
	Conflicts []model.Conflict
	Failures  []model.PartialFailure
}

// Valid reports whether the graph carries no error-severity issues.
func (r *Result) Valid() bool {
	errs, _, _ := model.CountBySeverity(r.Issues)
	return errs == 0
}

// Converter runs the pipeline against one dictionary store. Safe for
// concurrent use; each call owns its inputs and outputs exclusively.
type Converter struct {
	engine  *terminology.Engine
	builder bundle.Builder
	log     zerolog.Logger
	cfg     config.Config
}

// New builds a Converter over the given dictionary store.
func New(store *terminology.Store, log zerolog.Logger, cfg config.Config) *Converter {
	return &Converter{
		engine:  terminology.NewEngine(store, cfg.MinScore, cfg.AcceptScore),
		builder: bundle.Builder{EmbedSource: cfg.EmbedSource},
		log:     log,
		cfg:     cfg,
	}
}

// Convert runs the single-document pipeline: code, build, validate.
func (c *Converter) Convert(ctx context.Context, doc model.ExtractedDocument, hiType string) (*Result, error) {
	start := time.Now()

	coded, err := c.engine.CodeAll(doc)
	if err != nil {
		return nil, &PipelineError{Phase: "code", Err: err}
	}

	rec, err := fusion.Fuse([]model.ExtractedDocument{coded})
	if err != nil {
		return nil, &PipelineError{Phase: "fuse", Err: err}
	}

	graph, err := c.builder.Build(rec, []model.ExtractedDocument{coded}, hiType, bundle.ModeSingle)
	if err != nil {
		return nil, &PipelineError{Phase: "build", Err: err}
	}

	issues, score := validate.Validate(graph)

	errs, warns, _ := model.CountBySeverity(issues)
	c.log.Info().
		Str("document_id", coded.ID).
		Str("hi_type", graph.HIType).
		Int("nodes", len(graph.Nodes)).
		Int("errors", errs).
		Int("warnings", warns).
		Int("score", score.Total).
		Str("duration", time.Since(start).String()).
		Msg("conversion complete")

	return &Result{
		Graph:     graph,
		Issues:    issues,
		Score:     score,
		HIType:    graph.HIType,
		Documents: []model.ExtractedDocument{coded},
		Record:    rec,
		Conflicts: rec.Conflicts,
	}, nil
}

// ConvertClaim runs the multi-document pipeline. Sources are extracted and
// coded concurrently, each under its own timeout; a document that fails is
// named in Result.Failures and the rest proceed. Only configuration faults
// (an unusable dictionary, every document failing) abort the whole request.
func (c *Converter) ConvertClaim(ctx context.Context, sources []Source, extractor Extractor, detector Detector, hiType string) (*Result, error) {
	if len(sources) == 0 {
		return nil, &PipelineError{Phase: "extract", Err: fmt.Errorf("no documents supplied")}
	}
	if len(sources) > c.cfg.MaxClaimDocuments {
		return nil, &PipelineError{Phase: "extract", Err: fmt.Errorf(
			"%d documents exceeds limit %d", len(sources), c.cfg.MaxClaimDocuments)}
	}
	start := time.Now()

	var (
		mu       sync.Mutex
		coded    []model.ExtractedDocument
		failures []model.PartialFailure
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		g.Go(func() error {
			dctx, cancel := context.WithTimeout(gctx, c.cfg.ExtractTimeout)
			defer cancel()

			doc, err := extractor.Extract(dctx, src)
			if err != nil {
				c.log.Warn().Str("document_id", src.ID).Err(err).Msg("extraction failed")
				mu.Lock()
				failures = append(failures, model.PartialFailure{
					DocumentID: src.ID,
					Reason:     fmt.Sprintf("extract: %s", err),
				})
				mu.Unlock()
				return nil
			}

			out, err := c.engine.CodeAll(*doc)
			if err != nil {
				// Dictionary/config faults are fatal, not per-document.
				return fmt.Errorf("code %s: %w", doc.ID, err)
			}

			mu.Lock()
			coded = append(coded, out)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &PipelineError{Phase: "code", Err: err}
	}
	if len(coded) == 0 {
		return nil, &PipelineError{Phase: "extract", Err: fmt.Errorf(
			"all %d documents failed extraction", len(sources))}
	}
	sort.Slice(coded, func(i, j int) bool { return coded[i].ID < coded[j].ID })

	if hiType == "" && detector != nil {
		for _, doc := range coded {
			if t, conf := detector.Detect(&doc); t != "" && conf > 0 {
				hiType = t
				break
			}
		}
	}

	rec, err := fusion.Fuse(coded)
	if err != nil {
		return nil, &PipelineError{Phase: "fuse", Err: err}
	}

	graph, err := c.builder.Build(rec, coded, hiType, bundle.ModeClaim)
	if err != nil {
		return nil, &PipelineError{Phase: "build", Err: err}
	}

	issues, score := validate.Validate(graph)

	errs, _, _ := model.CountBySeverity(issues)
	c.log.Info().
		Int("documents", len(coded)).
		Int("failed", len(failures)).
		Int("conflicts", len(rec.Conflicts)).
		Int("errors", errs).
		Int("score", score.Total).
		Str("duration", time.Since(start).String()).
		Msg("claim conversion complete")

	return &Result{
		Graph:     graph,
		Issues:    issues,
		Score:     score,
		HIType:    graph.HIType,
		Documents: coded,
		Record:    rec,
		Conflicts: rec.Conflicts,
		Failures:  failures,
	}, nil
}

// ValidateBundle decodes an externally produced wire bundle and scores it.
// Decode failures are errors; structural problems inside a decodable bundle
// come back as issues.
func (c *Converter) ValidateBundle(raw []byte) (*Result, error) {
	graph, err := bundle.Decode(raw)
	if err != nil {
		return nil, &PipelineError{Phase: "decode", Err: err}
	}
	issues, score := validate.Validate(graph)
	return &Result{Graph: graph, Issues: issues, Score: score, HIType: graph.HIType}, nil
}

// Search exposes the coding engine's matcher for interactive lookup.
func (c *Converter) Search(system, query string) ([]model.CandidateCode, error) {
	return c.engine.Search(system, query)
}
