// fhirbridge converts extracted clinical documents into ABDM/NHCX FHIR R4
// document bundles, entirely offline: dictionary-backed coding, multi-source
// fusion, bundle assembly, and readiness scoring.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/gyeh/fhirbridge/internal/exitcode"
)

func main() {
	// Local .env is optional; absence is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
