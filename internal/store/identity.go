package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	patientIDPrefix     = "patient_"
	patientIDTimeFormat = "20060102150405"
)

// NewPatientID returns the second-resolution identifier the deployed
// application has always produced. Two calls within the same clock
// second return the same identifier; combined with UpsertPatient's
// replace semantics the second intake then silently overwrites the
// first. Kept for compatibility with existing databases; use
// NewUniquePatientID to rule the collision out.
func NewPatientID() string {
	return newPatientIDAt(time.Now())
}

func newPatientIDAt(t time.Time) string {
	return patientIDPrefix + t.Format(patientIDTimeFormat)
}

// NewUniquePatientID returns a timestamp identifier with a random
// suffix. Databases written with these are not bit-for-bit comparable
// with ones produced by NewPatientID.
func NewUniquePatientID() string {
	return newPatientIDAt(time.Now()) + "_" + uuid.NewString()[:8]
}

// NewSessionID returns a fresh session identifier
func NewSessionID() string {
	return "session_" + uuid.NewString()
}

// PatientExists reports whether a patient identifier is already taken.
// Intake uses it to warn before an upsert would overwrite.
func (s *Store) PatientExists(patientID string) (bool, error) {
	var count int
	err := s.withPatientKey(func(keyCol string) error {
		return s.db.QueryRow(
			fmt.Sprintf("SELECT COUNT(*) FROM patients WHERE %s = ?", keyCol),
			patientID,
		).Scan(&count)
	})
	if err != nil {
		return false, fmt.Errorf("failed to check patient id: %w", err)
	}
	return count > 0, nil
}
