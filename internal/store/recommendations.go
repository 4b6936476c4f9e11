package store

import (
	"database/sql"
	"fmt"
)

// Recommendation is one recommended song within a run, keyed by patient.
// Rows are created in bulk when a session is generated, never updated,
// and deleted only via the patient cascade.
type Recommendation struct {
	PatientID string `json:"patient_id"`
	Category  string `json:"category"`
	SongTitle string `json:"song_title"`
	VideoID   string `json:"video_id"`
	Channel   string `json:"channel"`
	Rank      int    `json:"rank"`
}

// InsertRecommendations bulk-appends the exploded rows of one
// recommendation run in a single transaction.
func (s *Store) InsertRecommendations(recs []*Recommendation) error {
	if len(recs) == 0 {
		return nil
	}
	return s.Transaction(func(tx *sql.Tx) error {
		return insertRecommendations(tx, recs)
	})
}

func insertRecommendations(e execer, recs []*Recommendation) error {
	for _, r := range recs {
		_, err := e.Exec(`
			INSERT INTO therapy_recommendations (patient_id, category, song_title, video_id, channel, rank)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.PatientID, r.Category, r.SongTitle, r.VideoID, r.Channel, r.Rank)
		if err != nil {
			return wrapWriteErr("failed to insert recommendation", err)
		}
	}
	return nil
}

// RecommendationsFor retrieves all recommended songs for a patient,
// ordered by category then rank. Empty slice when there are none.
func (s *Store) RecommendationsFor(patientID string) ([]*Recommendation, error) {
	rows, err := s.db.Query(`
		SELECT patient_id, COALESCE(category, ''), COALESCE(song_title, ''),
		       COALESCE(video_id, ''), COALESCE(channel, ''), COALESCE(rank, 0)
		FROM therapy_recommendations WHERE patient_id = ?
		ORDER BY category, rank
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	recs := []*Recommendation{}
	for rows.Next() {
		r := &Recommendation{}
		err := rows.Scan(&r.PatientID, &r.Category, &r.SongTitle, &r.VideoID, &r.Channel, &r.Rank)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, r)
	}

	return recs, rows.Err()
}
