package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/theramuse/theramuse/internal/store"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadPatient(t *testing.T) {
	path := writeFile(t, "patient.json", `{
		"name": "Maria Santos",
		"age": 72,
		"condition": "dementia",
		"instruments": ["guitar"],
		"openness": 5.5,
		"conscientiousness": 3.5,
		"extraversion": 6.0,
		"agreeableness": 2.0,
		"neuroticism": 4.5
	}`)

	p, err := loadPatient(path)
	if err != nil {
		t.Fatalf("failed to load patient: %v", err)
	}
	if p.Name != "Maria Santos" || p.Age != 72 || p.Condition != "dementia" {
		t.Errorf("unexpected patient: %+v", p)
	}
	if p.ID != "" {
		t.Errorf("id should be empty until allocated, got %s", p.ID)
	}
	if p.Openness != 5.5 {
		t.Errorf("trait tuple not loaded: %+v", p)
	}
}

func TestLoadPatientMissingName(t *testing.T) {
	path := writeFile(t, "patient.json", `{"age": 72}`)

	if _, err := loadPatient(path); err == nil {
		t.Fatal("expected error for record without name")
	}
}

func testIntakePatient() *store.Patient {
	return &store.Patient{
		ID:       "patient_20240301101500",
		Name:     "Maria Santos",
		Openness: 5.5, Conscientiousness: 3.5, Extraversion: 6.0,
		Agreeableness: 2.0, Neuroticism: 4.5,
	}
}

func TestBuildIntakeArtifactsWithoutPayload(t *testing.T) {
	p := testIntakePatient()
	sess, recs, score, err := buildIntakeArtifacts(p, "")
	if err != nil {
		t.Fatalf("failed to build artifacts: %v", err)
	}
	if sess != nil || recs != nil {
		t.Error("expected no session without a payload")
	}
	if score == nil || score.Openness != 5.5 {
		t.Errorf("expected trait snapshot from the patient row, got %+v", score)
	}
}

func TestBuildIntakeArtifactsWithPayload(t *testing.T) {
	p := testIntakePatient()
	payload := writeFile(t, "recs.json", `{
		"total_songs": 2,
		"session_id": "session_abc",
		"categories": {"seasonal": {"songs": [
			{"title": "A", "channel": "C1", "id": "aBcDeF12345"},
			{"title": "B", "channel": "C2"}
		]}}
	}`)

	sess, recs, score, err := buildIntakeArtifacts(p, payload)
	if err != nil {
		t.Fatalf("failed to build artifacts: %v", err)
	}
	if sess == nil || sess.ID != "session_abc" || sess.RecommendationsCount != 2 {
		t.Errorf("unexpected session: %+v", sess)
	}
	if sess.PatientID != p.ID {
		t.Errorf("session must reference the patient, got %s", sess.PatientID)
	}
	if len(recs) != 2 || recs[0].VideoID != "aBcDeF12345" {
		t.Errorf("unexpected rows: %+v", recs)
	}
	if score == nil {
		t.Error("expected a trait snapshot alongside the payload")
	}
}
