package library

import (
	"context"
	"database/sql"
	"testing"

	"github.com/vmunix/themarr/internal/migrations"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Apply(db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}

func addTestSeries(t *testing.T, store *Store, s *Series) *Series {
	t.Helper()
	if err := store.AddSeries(context.Background(), s); err != nil {
		t.Fatalf("AddSeries(%s): %v", s.Title, err)
	}
	return s
}
