// Package testing provides database helpers, fixtures and mocks shared by tests.
package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aristath/riskdesk/internal/database"
)

// NewTestDB creates a file-backed database in a per-test directory and applies the
// schema registered for name ("portfolio", "cache"). Unknown names get an empty
// database. The returned cleanup closes the connection; the directory is removed
// by the test framework.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	profile := database.ProfileStandard
	if name == "cache" {
		profile = database.ProfileCache
	}

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	return db, func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	}
}

// NewMemoryDB opens an in-memory sqlite3 connection with the named schema applied.
// The pool is pinned to one connection because every :memory: connection is its
// own database. Closed automatically when the test ends.
func NewMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := database.ApplySchema(conn, name); err != nil {
		_ = conn.Close()
		t.Fatalf("Failed to apply %s schema: %v", name, err)
	}

	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
