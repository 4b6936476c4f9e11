package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theramuse/theramuse/internal/store"
)

// WriteMarkdown writes the aggregated patient reports as Markdown
func WriteMarkdown(reports []*PatientReport, counts store.Counts, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	md := RenderMarkdown(reports, counts)

	if err := os.WriteFile(outputPath, []byte(md), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// RenderMarkdown renders the aggregated patient reports to a Markdown string
func RenderMarkdown(reports []*PatientReport, counts store.Counts) string {
	var md strings.Builder

	// Header
	md.WriteString("# TheraMuse - Patient Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	md.WriteString("---\n\n")

	// Overview
	md.WriteString("## Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Patients | %d |\n", counts.Patients))
	md.WriteString(fmt.Sprintf("| Therapy Sessions | %d |\n", counts.Sessions))
	md.WriteString(fmt.Sprintf("| Recommended Songs | %d |\n", counts.Recommendations))
	md.WriteString(fmt.Sprintf("| Feedback Events | %d |\n", counts.Feedback))
	md.WriteString(fmt.Sprintf("| Trait Snapshots | %d |\n", counts.Scores))
	md.WriteString("\n")

	for _, rpt := range reports {
		writePatientSection(&md, rpt)
	}

	return md.String()
}

func writePatientSection(md *strings.Builder, rpt *PatientReport) {
	p := rpt.Patient

	md.WriteString(fmt.Sprintf("## %s (`%s`)\n\n", p.Name, p.ID))
	md.WriteString(fmt.Sprintf("Age %d, condition `%s`, registered %s\n\n",
		p.Age, p.Condition, p.CreatedAt.Format("2006-01-02")))

	// Personality tuple: latest snapshot, or the all-zero sentinel when
	// no snapshot exists yet
	md.WriteString("| Openness | Conscientiousness | Extraversion | Agreeableness | Neuroticism | RL |\n")
	md.WriteString("|----------|-------------------|--------------|---------------|-------------|----|\n")
	md.WriteString(fmt.Sprintf("| %.1f | %.1f | %.1f | %.1f | %.1f | %.0f |\n\n",
		rpt.Scores.Openness, rpt.Scores.Conscientiousness, rpt.Scores.Extraversion,
		rpt.Scores.Agreeableness, rpt.Scores.Neuroticism, rpt.Scores.ReinforcementLearning))

	if len(rpt.Sessions) > 0 {
		md.WriteString(fmt.Sprintf("### Sessions (%d)\n\n", len(rpt.Sessions)))
		md.WriteString("| Session | Date | Songs |\n")
		md.WriteString("|---------|------|-------|\n")
		for _, sess := range rpt.Sessions {
			md.WriteString(fmt.Sprintf("| `%s` | %s | %d |\n",
				sess.ID, sess.SessionDate.Format("2006-01-02 15:04"), sess.RecommendationsCount))
		}
		md.WriteString("\n")
	}

	for _, group := range rpt.Groups {
		md.WriteString(fmt.Sprintf("### %s (%d songs)\n\n", group.Category, len(group.Songs)))
		for _, song := range group.Songs {
			md.WriteString(fmt.Sprintf("%d. %s - %s", song.Rank, song.SongTitle, song.Channel))
			if song.VideoID != "" {
				md.WriteString(fmt.Sprintf(" (`%s`)", song.VideoID))
			}
			md.WriteString("\n")
		}
		md.WriteString("\n")
	}

	if len(rpt.Feedback) > 0 {
		md.WriteString(fmt.Sprintf("### Feedback: %d likes, %d dislikes, %d skips\n\n",
			rpt.Tally.Likes, rpt.Tally.Dislikes, rpt.Tally.Skips))
	}

	md.WriteString("---\n\n")
}
