package history_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/fhirbridge/internal/history"
	"github.com/gyeh/fhirbridge/internal/logging"
	"github.com/gyeh/fhirbridge/internal/model"
)

const (
	testPort     = 15433
	testDB       = "fhirtest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var (
	testDSN string
	pg      *embeddedpostgres.EmbeddedPostgres
)

func TestMain(m *testing.M) {
	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg = embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30 * time.Second),
	)

	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}

	os.Exit(code)
}

// setupStore connects, resets the schema, and applies migrations.
func setupStore(t *testing.T) *history.Store {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, testDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS conversions"); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	log := logging.Setup("text")
	if err := history.ApplyMigrations(ctx, pool, log); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return history.NewStore(pool)
}

func sampleRecord(fileName string, score int) *model.ConversionRecord {
	return &model.ConversionRecord{
		FileName:    fileName,
		HIType:      "DischargeSummary",
		Mode:        "single",
		PatientName: "Asha Rao",
		Valid:       score >= 90,
		Score:       score,
		ErrorCount:  0,
		Bundle:      []byte(`{"resourceType":"Bundle","type":"document","entry":[]}`),
	}
}

func TestSaveAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	rec := sampleRecord("discharge.json", 100)
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID == uuid.Nil {
		t.Fatal("Save did not assign an id")
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("Save did not assign a timestamp")
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FileName != "discharge.json" || got.HIType != "DischargeSummary" || got.Score != 100 {
		t.Errorf("got = %+v", got)
	}
	if string(got.Bundle) != string(rec.Bundle) {
		t.Errorf("bundle = %s", got.Bundle)
	}
	if !got.Valid {
		t.Error("valid flag lost")
	}
}

func TestGet_NotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.Get(context.Background(), uuid.New())
	if !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := sampleRecord(fmt.Sprintf("doc-%d.json", i), 80+5*i)
		rec.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	recs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("listed %d, want limit 2", len(recs))
	}
	if recs[0].FileName != "doc-2.json" || recs[1].FileName != "doc-1.json" {
		t.Errorf("order = %s, %s", recs[0].FileName, recs[1].FileName)
	}
	// List omits the stored bundle payload.
	if len(recs[0].Bundle) != 0 {
		t.Errorf("bundle leaked into list: %s", recs[0].Bundle)
	}
}

func TestStats(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, score := range []int{100, 90, 50} {
		if err := store.Save(ctx, sampleRecord("doc.json", score)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.ValidCount != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AverageScore != 80 {
		t.Errorf("average = %v", stats.AverageScore)
	}
}

func TestStats_Empty(t *testing.T) {
	store := setupStore(t)

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 0 || stats.ValidCount != 0 || stats.AverageScore != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestClear(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := store.Save(ctx, sampleRecord("doc.json", 100)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d", removed)
	}

	recs, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("listed %d after clear", len(recs))
	}
}

func TestMigrations_Idempotent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, testDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := history.ApplyMigrations(ctx, pool, logging.Setup("text")); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
	if err := store.Save(ctx, sampleRecord("doc.json", 100)); err != nil {
		t.Fatalf("Save after re-migrate: %v", err)
	}
}
