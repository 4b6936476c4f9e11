package store

import (
	"fmt"
	"time"
)

// TherapySession is one recommendation run for a patient. Immutable
// after creation; SessionData carries the full engine payload verbatim.
type TherapySession struct {
	ID                   string    `json:"id"`
	PatientID            string    `json:"patient_id"`
	SessionDate          time.Time `json:"session_date"`
	RecommendationsCount int       `json:"recommendations_count"`
	SessionData          string    `json:"session_data"`
}

// InsertSession appends a session row. With foreign key enforcement on,
// referencing an unknown patient fails with ErrIntegrityViolation.
func (s *Store) InsertSession(sess *TherapySession) error {
	return insertSession(s.db, sess)
}

func insertSession(e execer, sess *TherapySession) error {
	var err error
	if sess.SessionDate.IsZero() {
		_, err = e.Exec(`
			INSERT INTO therapy_sessions (id, patient_id, recommendations_count, session_data)
			VALUES (?, ?, ?, ?)
		`, sess.ID, sess.PatientID, sess.RecommendationsCount, sess.SessionData)
	} else {
		_, err = e.Exec(`
			INSERT INTO therapy_sessions (id, patient_id, session_date, recommendations_count, session_data)
			VALUES (?, ?, ?, ?, ?)
		`, sess.ID, sess.PatientID, sqlTime(sess.SessionDate), sess.RecommendationsCount, sess.SessionData)
	}
	return wrapWriteErr("failed to insert session", err)
}

// SessionsFor retrieves all sessions for a patient, newest first.
// Returns an empty slice, never an error, when the patient has none.
func (s *Store) SessionsFor(patientID string) ([]*TherapySession, error) {
	rows, err := s.db.Query(`
		SELECT id, patient_id, session_date, COALESCE(recommendations_count, 0),
		       COALESCE(session_data, '')
		FROM therapy_sessions WHERE patient_id = ?
		ORDER BY session_date DESC
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*TherapySession{}
	for rows.Next() {
		sess := &TherapySession{}
		err := rows.Scan(&sess.ID, &sess.PatientID, &sess.SessionDate,
			&sess.RecommendationsCount, &sess.SessionData)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}
