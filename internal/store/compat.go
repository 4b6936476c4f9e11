package store

import (
	"fmt"
	"strings"

	"github.com/theramuse/theramuse/internal/util"
)

// Two generations of the patients table exist in the field: the current
// one keys patients by an "id" column, the legacy one by "patient_id".
// Every operation touching the primary key runs against the current
// column first and falls back to the legacy column only when the
// failure is specifically the missing-column signature. Any other
// failure class (corruption, constraint, permission) propagates
// unchanged so it is never masked as "try the other schema".
const (
	patientKeyCurrent = "id"
	patientKeyLegacy  = "patient_id"
)

// isMissingColumn reports whether err is SQLite's signal that the named
// column does not exist. SELECT/DELETE and INSERT phrase it differently.
func isMissingColumn(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such column: "+column) ||
		strings.Contains(msg, "has no column named "+column)
}

// withPatientKey runs op with the current primary key column name,
// retrying once with the legacy name on a schema mismatch. Callers see
// identical result shapes from either path.
func (s *Store) withPatientKey(op func(keyCol string) error) error {
	err := op(patientKeyCurrent)
	if !isMissingColumn(err, patientKeyCurrent) {
		return err
	}

	err = op(patientKeyLegacy)
	if isMissingColumn(err, patientKeyLegacy) {
		return fmt.Errorf("patients table matches neither schema generation: %w: %v", util.ErrSchemaMismatch, err)
	}
	return err
}

// SchemaGeneration probes which generation the patients table uses.
// Returns "current", "legacy", or "unknown".
func (s *Store) SchemaGeneration() (string, error) {
	rows, err := s.db.Query("PRAGMA table_info(patients)")
	if err != nil {
		return "", fmt.Errorf("failed to inspect patients table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dflt       any
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &primaryKey); err != nil {
			return "", fmt.Errorf("failed to scan column info: %w", err)
		}
		switch name {
		case patientKeyCurrent:
			return "current", nil
		case patientKeyLegacy:
			return "legacy", nil
		}
	}
	return "unknown", rows.Err()
}
