package terminology

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// DictRow mirrors the Parquet schema for one dictionary entry. A single file
// carries all code systems; rows are partitioned by the system column.
type DictRow struct {
	System      string `parquet:"system"`
	Term        string `parquet:"term"`
	Code        string `parquet:"code"`
	Display     string `parquet:"display"`
	Specificity int32  `parquet:"specificity,optional"`
	Version     string `parquet:"version,optional"`
}

const loadBatchSize = 1024

// LoadParquet reads a dictionary Parquet file and builds a Set from it.
// The file must contain rows for both the icd10 and loinc systems; rows
// with an unknown system are rejected rather than skipped, so a typo in a
// generated file fails loudly instead of silently shrinking a dictionary.
func LoadParquet(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat dictionary file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[DictRow](pf)
	defer reader.Close()

	if err := validateSchema(reader.Schema()); err != nil {
		return nil, fmt.Errorf("dictionary schema: %w", err)
	}

	var (
		version string
		bySys   = map[string][]Entry{
			SystemICD10: nil,
			SystemLOINC: nil,
		}
	)

	rows := make([]DictRow, loadBatchSize)
	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			sys := strings.ToLower(strings.TrimSpace(row.System))
			if _, ok := bySys[sys]; !ok {
				return nil, fmt.Errorf("unknown code system %q for term %q", row.System, row.Term)
			}
			bySys[sys] = append(bySys[sys], Entry{
				Term:        row.Term,
				Code:        row.Code,
				Display:     row.Display,
				Specificity: int(row.Specificity),
			})
			if version == "" && row.Version != "" {
				version = row.Version
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dictionary rows: %w", err)
		}
	}

	if version == "" {
		version = "parquet-unversioned"
	}

	set := &Set{
		Version:   version,
		Diagnosis: NewDictionary(SystemICD10, URIICD10, bySys[SystemICD10]),
		Lab:       NewDictionary(SystemLOINC, URILOINC, bySys[SystemLOINC]),
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("dictionary %s: %w", path, err)
	}
	return set, nil
}

func validateSchema(schema *parquet.Schema) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}
	for _, col := range []string{"system", "term", "code", "display"} {
		if !columns[col] {
			return fmt.Errorf("missing required column: %s", col)
		}
	}
	return nil
}
