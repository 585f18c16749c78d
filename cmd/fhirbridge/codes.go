package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyeh/fhirbridge/internal/convert"
	"github.com/gyeh/fhirbridge/internal/exitcode"
	"github.com/gyeh/fhirbridge/internal/logging"
)

var codesCmd = &cobra.Command{
	Use:   "codes <system> <query>",
	Short: "Search the coding dictionaries interactively",
	Long:  "Looks a free-text term up in the icd10 or loinc dictionary and prints the ranked candidates.",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCodes,
}

func init() {
	rootCmd.AddCommand(codesCmd)
}

func runCodes(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	loadConfig(log)

	system := args[0]
	query := strings.Join(args[1:], " ")

	conv := convert.New(loadStore(log), log, cfg)
	candidates, err := conv.Search(system, query)
	if err != nil {
		log.Error().Err(err).Str("system", system).Msg("search failed")
		os.Exit(exitcode.UsageError)
	}

	if len(candidates) == 0 {
		fmt.Printf("no matches for %q in %s\n", query, system)
		return nil
	}
	for _, c := range candidates {
		fmt.Printf("%.3f  %-10s %s\n", c.Score, c.Code, c.Display)
	}
	return nil
}
