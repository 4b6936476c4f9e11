package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Condition tags form a closed set shared with the recommendation engine
const (
	ConditionDementia     = "dementia"
	ConditionDownSyndrome = "down_syndrome"
	ConditionADHD         = "adhd"
)

// Patient represents one intake record. The five trait values are
// always written together as one tuple.
type Patient struct {
	ID                              string    `json:"id"`
	Name                            string    `json:"name"`
	Age                             int       `json:"age"`
	Sex                             string    `json:"sex"`
	BirthplaceCity                  string    `json:"birthplace_city"`
	BirthplaceCountry               string    `json:"birthplace_country"`
	FavoriteGenre                   string    `json:"favorite_genre"`
	FavoriteMusician                string    `json:"favorite_musician"`
	FavoriteSeason                  string    `json:"favorite_season"`
	Instruments                     []string  `json:"instruments"`
	NaturalElements                 []string  `json:"natural_elements"`
	Condition                       string    `json:"condition"`
	DifficultySleeping              bool      `json:"difficulty_sleeping"`
	TroubleRemembering              bool      `json:"trouble_remembering"`
	ForgetsEverydayThings           bool      `json:"forgets_everyday_things"`
	DifficultyRecallingOldMemories  bool      `json:"difficulty_recalling_old_memories"`
	MemoryWorseThanYearAgo          bool      `json:"memory_worse_than_year_ago"`
	VisitedMentalHealthProfessional bool      `json:"visited_mental_health_professional"`
	Extraversion                    float64   `json:"extraversion"`
	Agreeableness                   float64   `json:"agreeableness"`
	Conscientiousness               float64   `json:"conscientiousness"`
	Neuroticism                     float64   `json:"neuroticism"`
	Openness                        float64   `json:"openness"`
	CreatedAt                       time.Time `json:"created_at"`
	UpdatedAt                       time.Time `json:"updated_at"`
}

// Optional columns may be NULL in rows written by older deployments
const patientColumns = `name, COALESCE(age, 0), COALESCE(sex, ''),
       COALESCE(birthplace_city, ''), COALESCE(birthplace_country, ''),
       COALESCE(favorite_genre, ''), COALESCE(favorite_musician, ''), COALESCE(favorite_season, ''),
       COALESCE(instruments, ''), COALESCE(natural_elements, ''), COALESCE(condition, ''),
       COALESCE(difficulty_sleeping, 0), COALESCE(trouble_remembering, 0), COALESCE(forgets_everyday_things, 0),
       COALESCE(difficulty_recalling_old_memories, 0), COALESCE(memory_worse_than_year_ago, 0),
       COALESCE(visited_mental_health_professional, 0), COALESCE(extraversion, 0), COALESCE(agreeableness, 0),
       COALESCE(conscientiousness, 0), COALESCE(neuroticism, 0), COALESCE(openness, 0),
       created_at, updated_at`

// UpsertPatient writes a full patient row, replacing any existing row
// with the same identity. Replace is whole-row: absent optional fields
// must already carry their defaults, nothing is merged.
func (s *Store) UpsertPatient(p *Patient) error {
	return s.withPatientKey(func(keyCol string) error {
		return upsertPatient(s.db, keyCol, p)
	})
}

func upsertPatient(e execer, keyCol string, p *Patient) error {
	instruments, err := json.Marshal(p.Instruments)
	if err != nil {
		return fmt.Errorf("failed to encode instruments: %w", err)
	}
	elements, err := json.Marshal(p.NaturalElements)
	if err != nil {
		return fmt.Errorf("failed to encode natural elements: %w", err)
	}

	_, err = e.Exec(fmt.Sprintf(`
		INSERT OR REPLACE INTO patients (
			%s, name, age, sex, birthplace_city, birthplace_country,
			favorite_genre, favorite_musician, favorite_season,
			instruments, natural_elements, condition,
			difficulty_sleeping, trouble_remembering, forgets_everyday_things,
			difficulty_recalling_old_memories, memory_worse_than_year_ago,
			visited_mental_health_professional, extraversion, agreeableness,
			conscientiousness, neuroticism, openness, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, keyCol),
		p.ID, p.Name, p.Age, p.Sex, p.BirthplaceCity, p.BirthplaceCountry,
		p.FavoriteGenre, p.FavoriteMusician, p.FavoriteSeason,
		string(instruments), string(elements), p.Condition,
		p.DifficultySleeping, p.TroubleRemembering, p.ForgetsEverydayThings,
		p.DifficultyRecallingOldMemories, p.MemoryWorseThanYearAgo,
		p.VisitedMentalHealthProfessional, p.Extraversion, p.Agreeableness,
		p.Conscientiousness, p.Neuroticism, p.Openness, sqlTime(time.Now()))

	return wrapWriteErr("failed to upsert patient", err)
}

// GetPatient retrieves a patient by identity. Returns (nil, nil) when
// no such patient exists.
func (s *Store) GetPatient(patientID string) (*Patient, error) {
	var found *Patient
	err := s.withPatientKey(func(keyCol string) error {
		p, err := scanPatient(s.db.QueryRow(fmt.Sprintf(`
			SELECT %s, %s FROM patients WHERE %s = ?
		`, keyCol, patientColumns, keyCol), patientID))
		if err != nil {
			return err
		}
		found = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ListPatients retrieves all patients, newest first
func (s *Store) ListPatients() ([]*Patient, error) {
	var patients []*Patient
	err := s.withPatientKey(func(keyCol string) error {
		rows, err := s.db.Query(fmt.Sprintf(`
			SELECT %s, %s FROM patients ORDER BY created_at DESC
		`, keyCol, patientColumns))
		if err != nil {
			return fmt.Errorf("failed to query patients: %w", err)
		}
		defer rows.Close()

		patients = patients[:0]
		for rows.Next() {
			p, err := scanPatient(rows)
			if err != nil {
				return err
			}
			patients = append(patients, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return patients, nil
}

// DeletePatientCascade removes a patient together with every dependent
// row. Dependents go first, inside one transaction, so a legacy
// deployment without foreign key enforcement can never be left with
// sessions referencing a deleted patient.
func (s *Store) DeletePatientCascade(patientID string) error {
	return s.withPatientKey(func(keyCol string) error {
		return s.Transaction(func(tx *sql.Tx) error {
			dependents := []string{
				"DELETE FROM therapy_recommendations WHERE patient_id = ?",
				"DELETE FROM therapy_feedback WHERE patient_id = ?",
				"DELETE FROM big5_scores WHERE patient_id = ?",
				"DELETE FROM therapy_sessions WHERE patient_id = ?",
			}
			for _, q := range dependents {
				if _, err := tx.Exec(q, patientID); err != nil {
					return fmt.Errorf("failed to delete dependents: %w", err)
				}
			}

			_, err := tx.Exec(fmt.Sprintf("DELETE FROM patients WHERE %s = ?", keyCol), patientID)
			return wrapWriteErr("failed to delete patient", err)
		})
	})
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanPatient(row scanner) (*Patient, error) {
	p := &Patient{}
	var instruments, elements string
	err := row.Scan(
		&p.ID, &p.Name, &p.Age, &p.Sex, &p.BirthplaceCity, &p.BirthplaceCountry,
		&p.FavoriteGenre, &p.FavoriteMusician, &p.FavoriteSeason,
		&instruments, &elements, &p.Condition,
		&p.DifficultySleeping, &p.TroubleRemembering, &p.ForgetsEverydayThings,
		&p.DifficultyRecallingOldMemories, &p.MemoryWorseThanYearAgo,
		&p.VisitedMentalHealthProfessional, &p.Extraversion, &p.Agreeableness,
		&p.Conscientiousness, &p.Neuroticism, &p.Openness,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan patient: %w", err)
	}

	if instruments != "" {
		if err := json.Unmarshal([]byte(instruments), &p.Instruments); err != nil {
			return nil, fmt.Errorf("failed to decode instruments: %w", err)
		}
	}
	if elements != "" {
		if err := json.Unmarshal([]byte(elements), &p.NaturalElements); err != nil {
			return nil, fmt.Errorf("failed to decode natural elements: %w", err)
		}
	}

	return p, nil
}
