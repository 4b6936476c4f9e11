package store

import (
	"strings"
	"testing"
	"time"
)

func TestNewPatientIDFormat(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 15, 0, 0, time.Local)
	id := newPatientIDAt(at)
	if id != "patient_20240301101500" {
		t.Errorf("unexpected id format: %s", id)
	}
}

// Two allocations within the same clock second collide, and the
// second upsert then replaces the first. This is the historical
// behavior of the deployed identifier scheme; this test pins it so a
// change is deliberate, not accidental.
func TestSameSecondAllocationOverwrites(t *testing.T) {
	s := newTestStore(t)

	at := time.Date(2024, 3, 1, 10, 15, 0, 250_000_000, time.Local)
	id1 := newPatientIDAt(at)
	id2 := newPatientIDAt(at.Add(400 * time.Millisecond)) // same second
	if id1 != id2 {
		t.Fatalf("expected same-second ids to collide: %s vs %s", id1, id2)
	}

	first := samplePatient(id1)
	first.Name = "First Intake"
	second := samplePatient(id2)
	second.Name = "Second Intake"

	if err := s.UpsertPatient(first); err != nil {
		t.Fatalf("failed to upsert first: %v", err)
	}
	if err := s.UpsertPatient(second); err != nil {
		t.Fatalf("failed to upsert second: %v", err)
	}

	got, err := s.GetPatient(id1)
	if err != nil {
		t.Fatalf("failed to get patient: %v", err)
	}
	if got.Name != "Second Intake" {
		t.Errorf("expected second intake to overwrite first, got %s", got.Name)
	}

	counts, err := s.Counts()
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if counts.Patients != 1 {
		t.Errorf("expected the collision to leave one row, got %d", counts.Patients)
	}
}

func TestNewUniquePatientIDNoCollision(t *testing.T) {
	id1 := NewUniquePatientID()
	id2 := NewUniquePatientID()
	if id1 == id2 {
		t.Errorf("expected unique ids to differ, both %s", id1)
	}
	if !strings.HasPrefix(id1, patientIDPrefix) {
		t.Errorf("unique id should keep the patient_ prefix: %s", id1)
	}
}

func TestNewSessionID(t *testing.T) {
	id := NewSessionID()
	if !strings.HasPrefix(id, "session_") {
		t.Errorf("unexpected session id: %s", id)
	}
	if id == NewSessionID() {
		t.Error("expected session ids to be unique")
	}
}

func TestPatientExists(t *testing.T) {
	s := newTestStore(t)

	exists, err := s.PatientExists("patient_20240301101500")
	if err != nil {
		t.Fatalf("failed to probe: %v", err)
	}
	if exists {
		t.Error("expected false before insert")
	}

	if err := s.UpsertPatient(samplePatient("patient_20240301101500")); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	exists, err = s.PatientExists("patient_20240301101500")
	if err != nil || !exists {
		t.Errorf("expected true after insert, got %v err %v", exists, err)
	}
}
