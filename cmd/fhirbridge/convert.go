package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/fhirbridge/internal/bundle"
	"github.com/gyeh/fhirbridge/internal/convert"
	"github.com/gyeh/fhirbridge/internal/exitcode"
	"github.com/gyeh/fhirbridge/internal/history"
	"github.com/gyeh/fhirbridge/internal/logging"
	"github.com/gyeh/fhirbridge/internal/model"
)

var (
	convertFile   string
	convertHIType string
	convertOut    string
	convertSave   bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a single extracted document into a FHIR bundle",
	RunE:  runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVar(&convertFile, "file", "", "Path to extraction JSON (required)")
	f.StringVar(&convertHIType, "hi-type", "", "HI type (DischargeSummary, DiagnosticReport, OPConsultation, Prescription); default: document hint")
	f.StringVar(&convertOut, "out", "", "Write bundle JSON to this path (default: stdout)")
	f.BoolVar(&convertSave, "save", false, "Record the conversion in history (needs --dsn)")
	_ = convertCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()
	loadConfig(log)

	src, err := readSource(convertFile)
	if err != nil {
		log.Error().Err(err).Msg("read input failed")
		os.Exit(exitcode.UsageError)
	}

	doc, err := convert.JSONExtractor{}.Extract(ctx, src)
	if err != nil {
		log.Error().Err(err).Msg("extraction failed")
		os.Exit(exitcode.UsageError)
	}

	hiType := convertHIType
	if hiType == "" {
		hiType, _ = convert.HintDetector{}.Detect(doc)
	}

	conv := convert.New(loadStore(log), log, cfg)
	result, err := conv.Convert(ctx, *doc, hiType)
	if err != nil {
		exitPipeline(log, err)
	}

	if err := emitResult(ctx, log, result, src.FileName, bundle.ModeSingle, convertOut, convertSave); err != nil {
		os.Exit(exitcode.ValidationError)
	}
	if !result.Valid() {
		os.Exit(exitcode.ValidationError)
	}
	return nil
}

// readSource loads one input file into a Source with its path-derived id.
func readSource(path string) (convert.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return convert.Source{}, fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)
	return convert.Source{
		ID:          name,
		FileName:    name,
		ContentType: "application/json",
		Data:        data,
	}, nil
}

// exitPipeline maps a pipeline failure onto the stage-specific exit code.
func exitPipeline(log zerolog.Logger, err error) {
	if pe, ok := err.(*convert.PipelineError); ok {
		log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("conversion failed")
		switch pe.Phase {
		case "code":
			os.Exit(exitcode.CodingError)
		case "build":
			os.Exit(exitcode.BuildError)
		default:
			os.Exit(exitcode.ValidationError)
		}
	}
	log.Error().Err(err).Msg("conversion failed")
	os.Exit(exitcode.ValidationError)
}

// emitResult writes the bundle, prints the report, and optionally saves a
// history row.
func emitResult(ctx context.Context, log zerolog.Logger, result *convert.Result, fileName, mode, outPath string, save bool) error {
	raw, err := bundle.Encode(result.Graph)
	if err != nil {
		log.Error().Err(err).Msg("bundle encoding failed")
		return err
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, raw, 0o644); err != nil {
			log.Error().Err(err).Msg("write bundle failed")
			return err
		}
	} else {
		fmt.Println(string(raw))
	}

	printReport(result)

	if save {
		if cfg.DSN == "" {
			log.Error().Msg("--save requires --dsn or DATABASE_URL")
			return fmt.Errorf("missing dsn")
		}
		pool, err := history.NewPool(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			os.Exit(exitcode.DBConnError)
		}
		defer pool.Close()

		errs, _, _ := model.CountBySeverity(result.Issues)
		rec := &model.ConversionRecord{
			FileName:   fileName,
			HIType:     result.HIType,
			Mode:       mode,
			Valid:      result.Valid(),
			Score:      result.Score.Total,
			ErrorCount: errs,
			Bundle:     raw,
		}
		if result.Record != nil {
			rec.PatientName = result.Record.Demographics.Name
		}
		if err := history.NewStore(pool).Save(ctx, rec); err != nil {
			log.Error().Err(err).Msg("history save failed")
			return err
		}
		log.Info().Str("conversion_id", rec.ID.String()).Msg("conversion recorded")
	}
	return nil
}

func printReport(result *convert.Result) {
	errs, warns, infos := model.CountBySeverity(result.Issues)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "HI type:   %s\n", orDash(result.HIType))
	fmt.Fprintf(os.Stderr, "Nodes:     %d\n", len(result.Graph.Nodes))
	fmt.Fprintf(os.Stderr, "Score:     %d/100\n", result.Score.Total)
	for _, cat := range []string{
		model.CategoryRequiredResources,
		model.CategoryCodingCoverage,
		model.CategoryStructuralCompleteness,
		model.CategoryReferentialIntegrity,
	} {
		fmt.Fprintf(os.Stderr, "  %-25s %d\n", cat, result.Score.Breakdown[cat])
	}
	fmt.Fprintf(os.Stderr, "Issues:    %d errors, %d warnings, %d info\n", errs, warns, infos)
	for _, issue := range result.Issues {
		fmt.Fprintf(os.Stderr, "  [%s] %s: %s\n", issue.Severity, issue.Code, issue.Message)
	}
	if len(result.Conflicts) > 0 {
		fmt.Fprintf(os.Stderr, "Conflicts: %d\n", len(result.Conflicts))
		for _, c := range result.Conflicts {
			rule := "unresolved"
			if c.Resolution != nil {
				rule = c.Resolution.Rule
			}
			fmt.Fprintf(os.Stderr, "  %s (%s)\n", c.FieldPath, rule)
		}
	}
	for _, f := range result.Failures {
		fmt.Fprintf(os.Stderr, "Failed:    %s: %s\n", f.DocumentID, f.Reason)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
