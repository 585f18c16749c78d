package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/fhirbridge/internal/config"
	"github.com/gyeh/fhirbridge/internal/exitcode"
	"github.com/gyeh/fhirbridge/internal/terminology"
)

var (
	cfg        = config.Default()
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "fhirbridge",
	Short: "Clinical document → ABDM/NHCX FHIR bundle converter",
	Long:  "Converts structured clinical extractions into standardized FHIR R4 document bundles with offline ICD-10/LOINC coding, multi-document fusion, and readiness scoring.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.DictPath, "dict", "", "Parquet dictionary file (default: embedded tables)")
	pf.StringVar(&configPath, "config", "", "YAML config file")
}

// loadConfig merges the optional YAML file into cfg and validates it.
func loadConfig(log zerolog.Logger) {
	if configPath != "" {
		if err := cfg.LoadFromFile(configPath); err != nil {
			log.Error().Err(err).Msg("config load failed")
			os.Exit(exitcode.ConfigError)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
}

// loadStore builds the dictionary store from the configured asset, or the
// embedded tables when none is given. A bad asset is fatal at startup.
func loadStore(log zerolog.Logger) *terminology.Store {
	set := terminology.DefaultSet()
	if cfg.DictPath != "" {
		loaded, err := terminology.LoadParquet(cfg.DictPath)
		if err != nil {
			log.Error().Err(err).Str("dict", cfg.DictPath).Msg("dictionary load failed")
			os.Exit(exitcode.ConfigError)
		}
		set = loaded
	}

	store, err := terminology.NewStore(set)
	if err != nil {
		log.Error().Err(err).Msg("dictionary rejected")
		os.Exit(exitcode.ConfigError)
	}
	log.Info().
		Str("version", set.Version).
		Int("diagnosis_terms", set.Diagnosis.Len()).
		Int("lab_terms", set.Lab.Len()).
		Msg("dictionaries loaded")
	return store
}
