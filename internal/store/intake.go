package store

import "database/sql"

// SaveIntake writes one intake submission atomically: the patient row,
// its session, the exploded recommendation rows and the initial trait
// snapshot either all land or none do. A crash can therefore never
// leave a session without its patient.
func (s *Store) SaveIntake(p *Patient, sess *TherapySession, recs []*Recommendation, score *PersonalityScore) error {
	return s.withPatientKey(func(keyCol string) error {
		return s.Transaction(func(tx *sql.Tx) error {
			if err := upsertPatient(tx, keyCol, p); err != nil {
				return err
			}
			if sess != nil {
				if err := insertSession(tx, sess); err != nil {
					return err
				}
			}
			if err := insertRecommendations(tx, recs); err != nil {
				return err
			}
			if score != nil {
				if err := insertPersonalityScore(tx, score); err != nil {
					return err
				}
			}
			return nil
		})
	})
}
