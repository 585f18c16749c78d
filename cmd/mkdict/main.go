// mkdict writes the embedded coding dictionaries out as a Parquet asset.
// The result is a starting point for curated dictionaries: edit or extend
// the rows with real terminology releases and load them via --dict.
// Usage: go run ./cmd/mkdict --out dictionaries.parquet
package main

import (
	"flag"
	"fmt"
	"os"

	goparquet "github.com/parquet-go/parquet-go"

	"github.com/gyeh/fhirbridge/internal/terminology"
)

func main() {
	out := flag.String("out", "dictionaries.parquet", "output parquet path")
	version := flag.String("version", terminology.EmbeddedVersion, "version stamp for the rows")
	flag.Parse()

	rows := terminology.EmbeddedRows()
	for i := range rows {
		rows[i].Version = *version
	}

	outFile, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create output: %v\n", err)
		os.Exit(1)
	}
	defer outFile.Close()

	writer := goparquet.NewGenericWriter[terminology.DictRow](outFile)
	if _, err := writer.Write(rows); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	if err := writer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close writer: %v\n", err)
		os.Exit(1)
	}

	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.System]++
	}
	fmt.Printf("Wrote %d rows to %s\n", len(rows), *out)
	for _, sys := range []string{terminology.SystemICD10, terminology.SystemLOINC} {
		fmt.Printf("  %-8s %d\n", sys, counts[sys])
	}
}
