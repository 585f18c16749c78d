package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/fhirbridge/internal/model"
	embedsql "github.com/gyeh/fhirbridge/internal/sql"
)

// ErrNotFound is returned when no conversion has the requested id.
var ErrNotFound = errors.New("conversion not found")

// Store reads and writes conversion history rows.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Save records one conversion outcome. A zero id or timestamp is filled in.
func (s *Store) Save(ctx context.Context, rec *model.ConversionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, embedsql.InsertConversion,
		rec.ID, rec.FileName, rec.HIType, rec.Mode, rec.PatientName,
		rec.Valid, rec.Score, rec.ErrorCount, rec.Bundle, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	return nil
}

// List returns the most recent conversions, newest first, without bundles.
func (s *Store) List(ctx context.Context, limit int) ([]model.ConversionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, embedsql.ListConversions, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var out []model.ConversionRecord
	for rows.Next() {
		var rec model.ConversionRecord
		if err := rows.Scan(&rec.ID, &rec.FileName, &rec.HIType, &rec.Mode,
			&rec.PatientName, &rec.Valid, &rec.Score, &rec.ErrorCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get fetches one conversion including its stored bundle.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*model.ConversionRecord, error) {
	var rec model.ConversionRecord
	err := s.pool.QueryRow(ctx, embedsql.GetConversion, id).Scan(
		&rec.ID, &rec.FileName, &rec.HIType, &rec.Mode, &rec.PatientName,
		&rec.Valid, &rec.Score, &rec.ErrorCount, &rec.Bundle, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversion: %w", err)
	}
	return &rec, nil
}

// Stats summarizes the stored history.
func (s *Store) Stats(ctx context.Context) (*model.ConversionStats, error) {
	var stats model.ConversionStats
	err := s.pool.QueryRow(ctx, embedsql.ConversionStats).Scan(
		&stats.Total, &stats.ValidCount, &stats.AverageScore)
	if err != nil {
		return nil, fmt.Errorf("conversion stats: %w", err)
	}
	return &stats, nil
}

// Clear deletes all history rows and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, embedsql.ClearConversions)
	if err != nil {
		return 0, fmt.Errorf("clear conversions: %w", err)
	}
	return tag.RowsAffected(), nil
}
