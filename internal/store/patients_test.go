package store

import (
	"errors"
	"testing"

	"github.com/theramuse/theramuse/internal/util"
)

func samplePatient(id string) *Patient {
	return &Patient{
		ID:                              id,
		Name:                            "Maria Santos",
		Age:                             72,
		Sex:                             "female",
		BirthplaceCity:                  "Porto",
		BirthplaceCountry:               "Portugal",
		FavoriteGenre:                   "fado",
		FavoriteMusician:                "Amália Rodrigues",
		FavoriteSeason:                  "autumn",
		Instruments:                     []string{"guitar", "piano"},
		NaturalElements:                 []string{"ocean", "rain"},
		Condition:                       ConditionDementia,
		DifficultySleeping:              true,
		TroubleRemembering:              true,
		ForgetsEverydayThings:           false,
		DifficultyRecallingOldMemories:  true,
		MemoryWorseThanYearAgo:          false,
		VisitedMentalHealthProfessional: true,
		Extraversion:                    4.5,
		Agreeableness:                   6.0,
		Conscientiousness:               3.5,
		Neuroticism:                     2.0,
		Openness:                        5.5,
	}
}

func TestPatientRoundTrip(t *testing.T) {
	s := newTestStore(t)

	want := samplePatient("patient_20240301101500")
	if err := s.UpsertPatient(want); err != nil {
		t.Fatalf("failed to upsert patient: %v", err)
	}

	got, err := s.GetPatient(want.ID)
	if err != nil {
		t.Fatalf("failed to get patient: %v", err)
	}
	if got == nil {
		t.Fatal("expected patient, got nil")
	}

	if got.ID != want.ID || got.Name != want.Name || got.Age != want.Age || got.Sex != want.Sex {
		t.Errorf("identity fields did not round-trip: %+v", got)
	}
	if got.BirthplaceCity != want.BirthplaceCity || got.BirthplaceCountry != want.BirthplaceCountry {
		t.Errorf("birthplace did not round-trip: %+v", got)
	}
	if got.FavoriteGenre != want.FavoriteGenre || got.FavoriteMusician != want.FavoriteMusician ||
		got.FavoriteSeason != want.FavoriteSeason {
		t.Errorf("preference fields did not round-trip: %+v", got)
	}
	if len(got.Instruments) != 2 || got.Instruments[0] != "guitar" || got.Instruments[1] != "piano" {
		t.Errorf("instruments did not round-trip: %v", got.Instruments)
	}
	if len(got.NaturalElements) != 2 || got.NaturalElements[0] != "ocean" {
		t.Errorf("natural elements did not round-trip: %v", got.NaturalElements)
	}
	if got.Condition != ConditionDementia {
		t.Errorf("condition did not round-trip: %s", got.Condition)
	}
	if !got.DifficultySleeping || !got.TroubleRemembering || got.ForgetsEverydayThings ||
		!got.DifficultyRecallingOldMemories || got.MemoryWorseThanYearAgo ||
		!got.VisitedMentalHealthProfessional {
		t.Errorf("assessment flags did not round-trip: %+v", got)
	}
	if got.Extraversion != 4.5 || got.Agreeableness != 6.0 || got.Conscientiousness != 3.5 ||
		got.Neuroticism != 2.0 || got.Openness != 5.5 {
		t.Errorf("trait tuple did not round-trip: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be populated")
	}
}

func TestUpsertReplacesWholeRow(t *testing.T) {
	s := newTestStore(t)

	first := samplePatient("patient_20240301101500")
	if err := s.UpsertPatient(first); err != nil {
		t.Fatalf("failed to upsert first: %v", err)
	}

	second := samplePatient(first.ID)
	second.Name = "Maria S. Updated"
	second.Instruments = nil
	second.Openness = 1.0
	if err := s.UpsertPatient(second); err != nil {
		t.Fatalf("failed to upsert second: %v", err)
	}

	got, err := s.GetPatient(first.ID)
	if err != nil {
		t.Fatalf("failed to get patient: %v", err)
	}
	if got.Name != "Maria S. Updated" {
		t.Errorf("expected replaced name, got %s", got.Name)
	}
	if len(got.Instruments) != 0 {
		t.Errorf("replace must not merge: instruments should be empty, got %v", got.Instruments)
	}
	if got.Openness != 1.0 {
		t.Errorf("expected replaced openness 1.0, got %f", got.Openness)
	}

	counts, err := s.Counts()
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if counts.Patients != 1 {
		t.Errorf("expected 1 patient row after replace, got %d", counts.Patients)
	}
}

func TestGetPatientMissing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetPatient("patient_19990101000000")
	if err != nil {
		t.Fatalf("missing patient must not error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing patient, got %+v", got)
	}
}

func TestListPatientsNewestFirst(t *testing.T) {
	s := newTestStore(t)

	ids := []string{"patient_20240101000000", "patient_20240201000000", "patient_20240301000000"}
	for _, id := range ids {
		p := samplePatient(id)
		p.Name = id
		if err := s.UpsertPatient(p); err != nil {
			t.Fatalf("failed to upsert %s: %v", id, err)
		}
	}

	patients, err := s.ListPatients()
	if err != nil {
		t.Fatalf("failed to list patients: %v", err)
	}
	if len(patients) != 3 {
		t.Fatalf("expected 3 patients, got %d", len(patients))
	}
	for i := 1; i < len(patients); i++ {
		if patients[i].CreatedAt.After(patients[i-1].CreatedAt) {
			t.Errorf("expected newest-first ordering at index %d", i)
		}
	}
}

func TestDeletePatientCascade(t *testing.T) {
	s := newTestStore(t)

	p := samplePatient("patient_20240301101500")
	if err := s.UpsertPatient(p); err != nil {
		t.Fatalf("failed to upsert patient: %v", err)
	}
	if err := s.InsertSession(&TherapySession{ID: "session_1", PatientID: p.ID, RecommendationsCount: 5}); err != nil {
		t.Fatalf("failed to insert session: %v", err)
	}
	if err := s.InsertRecommendations([]*Recommendation{
		{PatientID: p.ID, Category: "seasonal", SongTitle: "Autumn Leaves", Rank: 1},
	}); err != nil {
		t.Fatalf("failed to insert recommendations: %v", err)
	}
	if err := s.InsertFeedback(&FeedbackEvent{PatientID: p.ID, FeedbackType: FeedbackLike, Reward: 1}); err != nil {
		t.Fatalf("failed to insert feedback: %v", err)
	}
	if err := s.InsertPersonalityScore(&PersonalityScore{PatientID: p.ID, Openness: 5}); err != nil {
		t.Fatalf("failed to insert score: %v", err)
	}

	if err := s.DeletePatientCascade(p.ID); err != nil {
		t.Fatalf("cascade delete failed: %v", err)
	}

	got, err := s.GetPatient(p.ID)
	if err != nil || got != nil {
		t.Errorf("expected patient gone, got %+v err %v", got, err)
	}

	sessions, err := s.SessionsFor(p.ID)
	if err != nil {
		t.Errorf("sessions read after cascade must not error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(sessions))
	}

	recs, err := s.RecommendationsFor(p.ID)
	if err != nil || len(recs) != 0 {
		t.Errorf("expected no recommendations, got %d err %v", len(recs), err)
	}

	feedback, err := s.FeedbackFor(p.ID)
	if err != nil || len(feedback) != 0 {
		t.Errorf("expected no feedback, got %d err %v", len(feedback), err)
	}

	score, err := s.LatestPersonalityScoreFor(p.ID)
	if err != nil {
		t.Errorf("score read after cascade must not error: %v", err)
	}
	if score != (PersonalityScore{}) {
		t.Errorf("expected sentinel score, got %+v", score)
	}
}

func TestInsertSessionUnknownPatient(t *testing.T) {
	s := newTestStore(t)

	err := s.InsertSession(&TherapySession{ID: "session_x", PatientID: "patient_nobody"})
	if err == nil {
		t.Fatal("expected integrity violation for unknown patient")
	}
	if !errors.Is(err, util.ErrIntegrityViolation) {
		t.Errorf("expected ErrIntegrityViolation, got %v", err)
	}
}

func TestInsertSessionOrphanAllowedWithoutEnforcement(t *testing.T) {
	dbPath := t.TempDir() + "/orphan.db"
	s, err := OpenWithOptions(dbPath, &OpenOptions{EnforceForeignKeys: false})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	err = s.InsertSession(&TherapySession{ID: "session_x", PatientID: "patient_nobody"})
	if err != nil {
		t.Errorf("orphan insert should be accepted without enforcement: %v", err)
	}
}
