package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/andihoo/chrono/internal/db"
	"github.com/andihoo/chrono/internal/rowstore"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestStore returns a provisioned in-memory row store.
func NewTestStore(t *testing.T) *rowstore.MemoryStore {
	t.Helper()
	s := rowstore.NewMemoryStore()
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("provisioning memory store: %v", err)
	}
	return s
}

// NewTestSQLiteStore returns a row store over a fresh in-memory database.
func NewTestSQLiteStore(t *testing.T) *rowstore.SQLiteStore {
	t.Helper()
	return rowstore.NewSQLiteStore(NewTestDB(t))
}
