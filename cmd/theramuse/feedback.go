package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/theramuse/theramuse/internal/store"
	"github.com/theramuse/theramuse/internal/util"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <patient-id> <like|dislike|skip|neutral>",
	Short: "Record a feedback event on a recommended song",
	Long: `Append one feedback event for a patient. The reward normally comes
from the learning component; when recording by hand, --reward sets it
explicitly (default 0).`,
	Args: cobra.ExactArgs(2),
	RunE: runFeedback,
}

func init() {
	rootCmd.AddCommand(feedbackCmd)

	feedbackCmd.Flags().Float64("reward", 0, "Reward value supplied by the learning component")
}

func runFeedback(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	patientID, feedbackType := args[0], args[1]
	switch feedbackType {
	case store.FeedbackLike, store.FeedbackDislike, store.FeedbackSkip, store.FeedbackNeutral:
	default:
		return fmt.Errorf("unknown feedback type %q: %w", feedbackType, util.ErrInvalidConfig)
	}

	exists, err := db.PatientExists(patientID)
	if err != nil {
		return err
	}
	if !exists {
		util.WarnLog("Patient %s not found; recording feedback anyway", patientID)
	}

	reward, _ := cmd.Flags().GetFloat64("reward")
	ev := &store.FeedbackEvent{
		PatientID:    patientID,
		FeedbackType: feedbackType,
		Reward:       reward,
	}
	if err := db.InsertFeedback(ev); err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	util.SuccessLog("Recorded %s for %s", feedbackType, patientID)
	return nil
}
