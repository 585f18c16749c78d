package terminology

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gyeh/fhirbridge/internal/model"
)

// Coding system identifiers.
const (
	SystemICD10 = "icd10"
	SystemLOINC = "loinc"

	URIICD10 = "http://hl7.org/fhir/sid/icd-10"
	URILOINC = "http://loinc.org"
)

// Configuration errors: fatal at startup, never per-record.
var (
	ErrUnknownFindingType = errors.New("unknown finding type")
	ErrUnknownSystem      = errors.New("unknown coding system")
	ErrMissingSystem      = errors.New("dictionary missing required coding system")
)

// Set is one immutable version of the full dictionary pair. A Set is never
// mutated after construction; reloads build a new Set and swap it in whole.
type Set struct {
	Version   string
	Diagnosis *Dictionary // ICD-10; also serves procedure findings
	Lab       *Dictionary // LOINC
}

// Validate checks that both required coding systems are present.
func (s *Set) Validate() error {
	if s.Diagnosis == nil || s.Diagnosis.Len() == 0 {
		return fmt.Errorf("%w: %s", ErrMissingSystem, SystemICD10)
	}
	if s.Lab == nil || s.Lab.Len() == 0 {
		return fmt.Errorf("%w: %s", ErrMissingSystem, SystemLOINC)
	}
	return nil
}

// ForType returns the dictionary serving a finding type. Procedure findings
// share the diagnosis dictionary; there is no separate offline procedure
// terminology.
func (s *Set) ForType(t model.FindingType) (*Dictionary, error) {
	switch t {
	case model.FindingDiagnosis, model.FindingProcedure:
		return s.Diagnosis, nil
	case model.FindingLabResult:
		return s.Lab, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFindingType, t)
	}
}

// BySystem returns the dictionary for a short system name.
func (s *Set) BySystem(system string) (*Dictionary, error) {
	switch system {
	case SystemICD10:
		return s.Diagnosis, nil
	case SystemLOINC:
		return s.Lab, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSystem, system)
	}
}

// Store holds the process-wide dictionary set. Readers always observe a
// complete Set; Swap replaces the whole structure atomically so a reload
// can never expose a partially built dictionary.
type Store struct {
	set atomic.Pointer[Set]
}

// NewStore creates a Store seeded with the given set.
func NewStore(s *Set) (*Store, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	st := &Store{}
	st.set.Store(s)
	return st, nil
}

// Current returns the active dictionary set.
func (st *Store) Current() *Set {
	return st.set.Load()
}

// Swap atomically replaces the active set. The old set stays valid for
// readers that already hold it.
func (st *Store) Swap(s *Set) error {
	if err := s.Validate(); err != nil {
		return err
	}
	st.set.Store(s)
	return nil
}
