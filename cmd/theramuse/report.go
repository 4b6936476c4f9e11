package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theramuse/theramuse/internal/report"
	"github.com/theramuse/theramuse/internal/util"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate an aggregated patient report in Markdown",
	Long: `Aggregate every patient's record into a single report: intake
fields, sessions newest first, recommendations grouped by category,
feedback tallies and the current trait snapshot.

Filters and sorting apply to the in-memory aggregated list:
  --name       keep patients whose name contains a substring
  --condition  keep one condition tag (dementia, down_syndrome, adhd)
  --sort       newest | oldest | most-sessions | most-feedback

The report is saved to artifacts/reports/<timestamp>/patients.md`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("out", "", "Output directory (default: artifacts/reports/<timestamp>)")
	reportCmd.Flags().String("name", "", "Filter by name substring (case-insensitive)")
	reportCmd.Flags().String("condition", "", "Filter by condition tag")
	reportCmd.Flags().String("sort", string(report.SortNewest), "Sort key")
}

func runReport(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	dbPath := viper.GetString("db")
	util.InfoLog("=== Generating Patient Report ===")
	util.InfoLog("Database: %s", dbPath)

	reports, err := report.BuildReportForAll(db, &report.BuildAllOptions{
		Progress: !viper.GetBool("quiet"),
	})
	if err != nil {
		return fmt.Errorf("failed to aggregate patients: %w", err)
	}

	nameFilter, _ := cmd.Flags().GetString("name")
	condition, _ := cmd.Flags().GetString("condition")
	sortKey, _ := cmd.Flags().GetString("sort")

	reports = report.FilterByName(reports, nameFilter)
	reports = report.FilterByCondition(reports, condition)
	report.SortReports(reports, report.SortKey(sortKey))

	counts, err := db.Counts()
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	outputDir, _ := cmd.Flags().GetString("out")
	if outputDir == "" {
		timestamp := time.Now().Format("20060102-150405")
		outputDir = filepath.Join("artifacts", "reports", timestamp)
	}
	outputPath := filepath.Join(outputDir, "patients.md")

	if err := report.WriteMarkdown(reports, counts, outputPath); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	util.SuccessLog("Report written: %s (%d patients)", outputPath, len(reports))
	return nil
}
