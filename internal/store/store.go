package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/theramuse/theramuse/internal/util"
	_ "modernc.org/sqlite" // SQLite driver
)

// Store wraps the patient database. Operations are synchronous blocking
// I/O against the local file; transient failures are surfaced, never
// retried here.
type Store struct {
	db *sql.DB
}

// OpenOptions holds options for opening a database
type OpenOptions struct {
	// EnforceForeignKeys turns on SQLite foreign key enforcement where
	// the schema generation allows it. With it off, a session
	// referencing an unknown patient is accepted as an orphan and is
	// the caller's responsibility to avoid.
	EnforceForeignKeys bool
}

// Open opens or creates the patient database at the given path with
// foreign key enforcement on where the schema generation supports it.
func Open(path string) (*Store, error) {
	return OpenWithOptions(path, &OpenOptions{EnforceForeignKeys: true})
}

// OpenWithOptions opens or creates the patient database with custom options
func OpenWithOptions(path string, opts *OpenOptions) (*Store, error) {
	if opts == nil {
		opts = &OpenOptions{}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_timeout=5000&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w: %v", util.ErrStoreUnavailable, err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{db: db}

	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	// therapy_sessions declares its foreign key against patients(id).
	// On a legacy-generation database that column does not exist, and
	// enforcement would turn every constraint check into a "foreign key
	// mismatch", so enforcement stays off there: legacy stores keep the
	// historical unenforced behavior.
	if opts.EnforceForeignKeys {
		generation, err := store.SchemaGeneration()
		if err != nil {
			db.Close()
			return nil, err
		}
		if generation != "legacy" {
			if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to enable foreign keys: %w: %v", util.ErrStoreUnavailable, err)
			}
		}
	}

	return store, nil
}

// ensureSchema creates any missing tables. It is safe to call on every
// open: all DDL is IF NOT EXISTS and existing tables are never altered,
// so a legacy-generation database passes through unchanged.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w: %v", util.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// SQLiteVersion returns the SQLite version string
func SQLiteVersion() string {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	err = db.QueryRow("SELECT sqlite_version()").Scan(&version)
	if err != nil {
		return ""
	}
	return version
}

// CheckIntegrity runs PRAGMA integrity_check on the database
func (s *Store) CheckIntegrity() error {
	var result string
	err := s.db.QueryRow("PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	return nil
}

// Transaction executes a function within a transaction
func (s *Store) Transaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx, so writes can run
// standalone or inside a transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// Counts holds per-table row counts
type Counts struct {
	Patients        int
	Sessions        int
	Recommendations int
	Feedback        int
	Scores          int
}

// Counts returns row counts for all five tables
func (s *Store) Counts() (Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"patients", &c.Patients},
		{"therapy_sessions", &c.Sessions},
		{"therapy_recommendations", &c.Recommendations},
		{"therapy_feedback", &c.Feedback},
		{"big5_scores", &c.Scores},
	} {
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + q.table).Scan(q.dst); err != nil {
			return Counts{}, fmt.Errorf("failed to count %s: %w", q.table, err)
		}
	}
	return c, nil
}

// sqlTime formats a timestamp the way SQLite's CURRENT_TIMESTAMP does,
// so explicit and defaulted values sort together.
func sqlTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// wrapWriteErr maps a driver error onto the store's error taxonomy
func wrapWriteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "constraint failed"):
		return fmt.Errorf("%s: %w: %v", op, util.ErrIntegrityViolation, err)
	case strings.Contains(msg, "unable to open database"),
		strings.Contains(msg, "readonly database"),
		strings.Contains(msg, "disk I/O error"):
		return fmt.Errorf("%s: %w: %v", op, util.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
