package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theramuse/theramuse/internal/rec"
	"github.com/theramuse/theramuse/internal/store"
	"github.com/theramuse/theramuse/internal/util"
)

var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Save a completed intake: patient record plus recommendation run",
	Long: `Save one intake submission to the patient database.

Reads the patient record from a JSON file and, optionally, the
recommendation engine's result payload from a second file. The patient
row, the therapy session, the exploded song rows and the initial trait
snapshot are written in a single transaction.

Identifiers use the historical patient_<timestamp> format by default,
which collides when two intakes land in the same clock second (the
later one replaces the earlier). Pass --unique-ids to append a random
suffix instead; databases written that way are not bit-for-bit
comparable with the historical format.`,
	RunE: runIntake,
}

func init() {
	rootCmd.AddCommand(intakeCmd)

	intakeCmd.Flags().String("patient", "", "Path to the patient record JSON (required)")
	intakeCmd.Flags().String("recommendations", "", "Path to the recommendation payload JSON (optional)")
	intakeCmd.Flags().Bool("unique-ids", false, "Allocate collision-free patient identifiers")
	intakeCmd.MarkFlagRequired("patient")
}

func runIntake(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db")
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	patientPath, _ := cmd.Flags().GetString("patient")
	recsPath, _ := cmd.Flags().GetString("recommendations")
	uniqueIDs, _ := cmd.Flags().GetBool("unique-ids")

	patient, err := loadPatient(patientPath)
	if err != nil {
		return err
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Re-intake keeps the supplied identity; fresh intakes allocate one
	if patient.ID == "" {
		if uniqueIDs {
			patient.ID = store.NewUniquePatientID()
		} else {
			patient.ID = store.NewPatientID()
		}
	}

	exists, err := db.PatientExists(patient.ID)
	if err != nil {
		return err
	}
	if exists {
		util.WarnLog("Patient %s already exists; this intake replaces the full record", patient.ID)
	}

	sess, recs, score, err := buildIntakeArtifacts(patient, recsPath)
	if err != nil {
		return err
	}

	if err := db.SaveIntake(patient, sess, recs, score); err != nil {
		return fmt.Errorf("failed to save intake: %w", err)
	}

	util.SuccessLog("Patient %s saved", patient.ID)
	if sess != nil {
		util.InfoLog("Session %s: %d songs in %d rows", sess.ID, sess.RecommendationsCount, len(recs))
	}
	fmt.Println(patient.ID)
	return nil
}

func loadPatient(path string) (*store.Patient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read patient record: %w", err)
	}

	patient := &store.Patient{}
	if err := json.Unmarshal(data, patient); err != nil {
		return nil, fmt.Errorf("failed to parse patient record: %w", err)
	}
	if patient.Name == "" {
		return nil, fmt.Errorf("patient record has no name: %w", util.ErrInvalidConfig)
	}
	return patient, nil
}

// buildIntakeArtifacts derives the session, song rows and trait
// snapshot that accompany a patient write. Without a payload only the
// snapshot (from the patient's own trait tuple) is produced.
func buildIntakeArtifacts(patient *store.Patient, recsPath string) (*store.TherapySession, []*store.Recommendation, *store.PersonalityScore, error) {
	score := &store.PersonalityScore{
		PatientID:         patient.ID,
		Openness:          patient.Openness,
		Conscientiousness: patient.Conscientiousness,
		Extraversion:      patient.Extraversion,
		Agreeableness:     patient.Agreeableness,
		Neuroticism:       patient.Neuroticism,
	}

	if recsPath == "" {
		return nil, nil, score, nil
	}

	data, err := os.ReadFile(recsPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read recommendation payload: %w", err)
	}
	result, err := rec.Parse(data)
	if err != nil {
		return nil, nil, nil, err
	}

	sessionID := result.SessionID
	if sessionID == "" {
		sessionID = store.NewSessionID()
	}

	sess := &store.TherapySession{
		ID:                   sessionID,
		PatientID:            patient.ID,
		RecommendationsCount: result.SongCount(),
		SessionData:          string(data),
	}

	return sess, result.Explode(patient.ID), score, nil
}
