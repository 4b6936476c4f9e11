package store

import (
	"database/sql"
	"fmt"
	"time"
)

// PersonalityScore is one Big Five snapshot plus the reinforcement
// learning counter maintained by the external learning component.
// Historical rows accumulate; only the newest per patient is "current".
type PersonalityScore struct {
	PatientID             string    `json:"patient_id"`
	Openness              float64   `json:"openness"`
	Conscientiousness     float64   `json:"conscientiousness"`
	Extraversion          float64   `json:"extraversion"`
	Agreeableness         float64   `json:"agreeableness"`
	Neuroticism           float64   `json:"neuroticism"`
	ReinforcementLearning float64   `json:"reinforcement_learning"`
	CreatedAt             time.Time `json:"created_at"`
}

// InsertPersonalityScore appends a trait snapshot
func (s *Store) InsertPersonalityScore(score *PersonalityScore) error {
	return insertPersonalityScore(s.db, score)
}

func insertPersonalityScore(e execer, score *PersonalityScore) error {
	var err error
	if score.CreatedAt.IsZero() {
		_, err = e.Exec(`
			INSERT INTO big5_scores (patient_id, openness, conscientiousness, extraversion,
			                         agreeableness, neuroticism, reinforcement_learning)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, score.PatientID, score.Openness, score.Conscientiousness, score.Extraversion,
			score.Agreeableness, score.Neuroticism, score.ReinforcementLearning)
	} else {
		_, err = e.Exec(`
			INSERT INTO big5_scores (patient_id, openness, conscientiousness, extraversion,
			                         agreeableness, neuroticism, reinforcement_learning, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, score.PatientID, score.Openness, score.Conscientiousness, score.Extraversion,
			score.Agreeableness, score.Neuroticism, score.ReinforcementLearning, sqlTime(score.CreatedAt))
	}
	return wrapWriteErr("failed to insert personality score", err)
}

// LatestPersonalityScoreFor retrieves the most recent trait snapshot
// for a patient. When none exists it returns the all-zero sentinel, by
// contract, so downstream report code never branches on presence.
func (s *Store) LatestPersonalityScoreFor(patientID string) (PersonalityScore, error) {
	score := PersonalityScore{}
	err := s.db.QueryRow(`
		SELECT patient_id, COALESCE(openness, 0), COALESCE(conscientiousness, 0),
		       COALESCE(extraversion, 0), COALESCE(agreeableness, 0),
		       COALESCE(neuroticism, 0), COALESCE(reinforcement_learning, 0), created_at
		FROM big5_scores WHERE patient_id = ?
		ORDER BY created_at DESC LIMIT 1
	`, patientID).Scan(
		&score.PatientID, &score.Openness, &score.Conscientiousness,
		&score.Extraversion, &score.Agreeableness, &score.Neuroticism,
		&score.ReinforcementLearning, &score.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return PersonalityScore{}, nil
	}
	if err != nil {
		return PersonalityScore{}, fmt.Errorf("failed to get personality score: %w", err)
	}
	return score, nil
}
