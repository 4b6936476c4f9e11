package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theramuse/theramuse/internal/report"
	"github.com/theramuse/theramuse/internal/store"
	"github.com/theramuse/theramuse/internal/util"
)

var patientsCmd = &cobra.Command{
	Use:   "patients",
	Short: "List, inspect and delete patient records",
}

var patientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all patients, newest first",
	RunE:  runPatientsList,
}

var patientsShowCmd = &cobra.Command{
	Use:   "show <patient-id>",
	Short: "Show one patient's full aggregated record",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatientsShow,
}

var patientsDeleteCmd = &cobra.Command{
	Use:   "delete <patient-id>",
	Short: "Delete a patient and all dependent records",
	Long: `Delete a patient together with every session, recommendation,
feedback event and trait snapshot that references it. Dependent rows
are removed first, in one transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: runPatientsDelete,
}

func init() {
	rootCmd.AddCommand(patientsCmd)
	patientsCmd.AddCommand(patientsListCmd)
	patientsCmd.AddCommand(patientsShowCmd)
	patientsCmd.AddCommand(patientsDeleteCmd)

	patientsDeleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func openStore() (*store.Store, error) {
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	db, err := store.Open(viper.GetString("db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func runPatientsList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	patients, err := db.ListPatients()
	if err != nil {
		return fmt.Errorf("failed to list patients: %w", err)
	}

	if len(patients) == 0 {
		util.InfoLog("No patients in %s", viper.GetString("db"))
		return nil
	}

	// Fit the name column to the terminal
	nameWidth := 24
	if w := util.GetTerminalWidth(); w < 100 {
		nameWidth = 16
	}

	fmt.Printf("%-24s %-*s %4s %-14s %s\n", "ID", nameWidth, "NAME", "AGE", "CONDITION", "REGISTERED")
	fmt.Println(strings.Repeat("-", 24+nameWidth+4+14+14))
	for _, p := range patients {
		fmt.Printf("%-24s %-*s %4d %-14s %s\n",
			p.ID, nameWidth, truncateName(p.Name, nameWidth), p.Age, p.Condition, humanize.Time(p.CreatedAt))
	}
	return nil
}

// truncateName shortens a name to width, counting runes so multi-byte
// names are never cut mid-character.
func truncateName(name string, width int) string {
	runes := []rune(name)
	if len(runes) <= width {
		return name
	}
	return string(runes[:width-1]) + "…"
}

func runPatientsShow(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	rpt, err := report.BuildPatientReport(db, args[0])
	if err != nil {
		return err
	}

	p := rpt.Patient
	fmt.Printf("Patient:    %s (%s)\n", p.Name, p.ID)
	fmt.Printf("Age/Sex:    %d / %s\n", p.Age, p.Sex)
	fmt.Printf("Condition:  %s\n", p.Condition)
	fmt.Printf("Birthplace: %s, %s\n", p.BirthplaceCity, p.BirthplaceCountry)
	fmt.Printf("Registered: %s (%s)\n", p.CreatedAt.Format("2006-01-02 15:04"), humanize.Time(p.CreatedAt))
	fmt.Printf("Traits:     O %.1f  C %.1f  E %.1f  A %.1f  N %.1f  (RL %.0f)\n",
		rpt.Scores.Openness, rpt.Scores.Conscientiousness, rpt.Scores.Extraversion,
		rpt.Scores.Agreeableness, rpt.Scores.Neuroticism, rpt.Scores.ReinforcementLearning)

	fmt.Printf("\nSessions (%d):\n", len(rpt.Sessions))
	for _, sess := range rpt.Sessions {
		fmt.Printf("  %s  %s  %d songs\n",
			sess.SessionDate.Format("2006-01-02 15:04"), sess.ID, sess.RecommendationsCount)
	}

	for _, group := range rpt.Groups {
		fmt.Printf("\n%s (%d songs):\n", group.Category, len(group.Songs))
		for _, song := range group.Songs {
			fmt.Printf("  #%d %s - %s\n", song.Rank, song.SongTitle, song.Channel)
		}
	}

	fmt.Printf("\nFeedback (%d): %d likes, %d dislikes, %d skips, %d neutral\n",
		len(rpt.Feedback), rpt.Tally.Likes, rpt.Tally.Dislikes, rpt.Tally.Skips, rpt.Tally.Neutral)
	return nil
}

func runPatientsDelete(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	patientID := args[0]
	yes, _ := cmd.Flags().GetBool("yes")

	patient, err := db.GetPatient(patientID)
	if err != nil {
		return err
	}
	if patient == nil {
		util.WarnLog("Patient %s not found", patientID)
		return nil
	}

	if !yes {
		fmt.Printf("Delete %s (%s) and all dependent records? [y/N] ", patient.Name, patientID)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			util.InfoLog("Aborted")
			return nil
		}
	}

	if err := db.DeletePatientCascade(patientID); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	util.SuccessLog("Deleted patient %s", patientID)
	return nil
}
