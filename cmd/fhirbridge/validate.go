package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/fhirbridge/internal/convert"
	"github.com/gyeh/fhirbridge/internal/exitcode"
	"github.com/gyeh/fhirbridge/internal/logging"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate and score an existing bundle",
	Long:  "Decodes a wire bundle, possibly produced by another system, and reports issues and the readiness score. Structural problems are reported, not fatal.",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateFile, "file", "", "Path to bundle JSON (required)")
	_ = validateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	loadConfig(log)

	raw, err := os.ReadFile(validateFile)
	if err != nil {
		log.Error().Err(err).Msg("read bundle failed")
		os.Exit(exitcode.UsageError)
	}

	conv := convert.New(loadStore(log), log, cfg)
	result, err := conv.ValidateBundle(raw)
	if err != nil {
		exitPipeline(log, err)
	}

	printReport(result)
	if !result.Valid() {
		os.Exit(exitcode.ValidationError)
	}
	return nil
}
