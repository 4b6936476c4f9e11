package store

import (
	"fmt"
	"time"
)

// Feedback types a user can give on a recommended song
const (
	FeedbackLike    = "like"
	FeedbackDislike = "dislike"
	FeedbackSkip    = "skip"
	FeedbackNeutral = "neutral"
)

// FeedbackEvent is one like/dislike/skip action. Append-only; the
// reward comes from the external learning component and is stored
// opaquely.
type FeedbackEvent struct {
	PatientID    string    `json:"patient_id"`
	FeedbackType string    `json:"feedback_type"`
	Reward       float64   `json:"reward"`
	CreatedAt    time.Time `json:"created_at"`
}

// InsertFeedback appends a feedback event
func (s *Store) InsertFeedback(ev *FeedbackEvent) error {
	var err error
	if ev.CreatedAt.IsZero() {
		_, err = s.db.Exec(`
			INSERT INTO therapy_feedback (patient_id, feedback_type, reward)
			VALUES (?, ?, ?)
		`, ev.PatientID, ev.FeedbackType, ev.Reward)
	} else {
		_, err = s.db.Exec(`
			INSERT INTO therapy_feedback (patient_id, feedback_type, reward, created_at)
			VALUES (?, ?, ?, ?)
		`, ev.PatientID, ev.FeedbackType, ev.Reward, sqlTime(ev.CreatedAt))
	}
	return wrapWriteErr("failed to insert feedback", err)
}

// FeedbackFor retrieves all feedback events for a patient, newest
// first. Empty slice when there are none.
func (s *Store) FeedbackFor(patientID string) ([]*FeedbackEvent, error) {
	rows, err := s.db.Query(`
		SELECT patient_id, COALESCE(feedback_type, ''), COALESCE(reward, 0), created_at
		FROM therapy_feedback WHERE patient_id = ?
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	events := []*FeedbackEvent{}
	for rows.Next() {
		ev := &FeedbackEvent{}
		err := rows.Scan(&ev.PatientID, &ev.FeedbackType, &ev.Reward, &ev.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}
