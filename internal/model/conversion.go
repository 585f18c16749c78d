package model

import (
	"time"

	"github.com/google/uuid"
)

// ConversionRecord is one persisted conversion result, written by the CLI
// after a convert/claim run. The core pipeline never persists.
type ConversionRecord struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	HIType      string    `json:"hi_type"`
	Mode        string    `json:"mode"` // "single" or "claim"
	PatientName string    `json:"patient_name,omitempty"`
	Valid       bool      `json:"valid"`
	Score       int       `json:"score"`
	ErrorCount  int       `json:"error_count"`
	Bundle      []byte    `json:"-"` // wire-form bundle JSON
	CreatedAt   time.Time `json:"created_at"`
}

// ConversionStats aggregates history for reporting.
type ConversionStats struct {
	Total        int64   `json:"total"`
	ValidCount   int64   `json:"valid_count"`
	AverageScore float64 `json:"average_score"`
}
