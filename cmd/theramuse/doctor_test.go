package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckSQLite(t *testing.T) {
	result := checkSQLite()

	if result.error {
		t.Errorf("SQLite check failed: %s", result.message)
	}
	if result.message == "" {
		t.Error("expected version information in message")
	}
}

func TestCheckDatabasePath_NonExistent(t *testing.T) {
	// The database is created on first use, so a missing file in an
	// existing directory is fine
	dbPath := filepath.Join(t.TempDir(), "nonexistent.db")

	result := checkDatabasePath(dbPath)
	if result.error {
		t.Errorf("missing database file should not error: %s", result.message)
	}
	if result.message == "" {
		t.Error("expected message about database creation")
	}
}

func TestCheckDatabasePath_MissingDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "no", "such", "dir", "x.db")

	result := checkDatabasePath(dbPath)
	if !result.error {
		t.Error("expected error for missing parent directory")
	}
}

func TestCheckDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "doctor.db")

	results := checkDatabase(dbPath)
	if len(results) < 4 {
		t.Fatalf("expected accessibility, integrity, generation and count checks, got %d results", len(results))
	}
	for _, r := range results {
		if r.error {
			t.Errorf("check %s failed on fresh database: %s", r.name, r.message)
		}
	}

	// Fresh databases carry the current generation
	found := false
	for _, r := range results {
		if r.name == "Schema generation" {
			found = true
			if r.message != "current" {
				t.Errorf("expected current generation, got %s", r.message)
			}
		}
	}
	if !found {
		t.Error("expected a schema generation check")
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected database file to exist after check: %v", err)
	}
}
