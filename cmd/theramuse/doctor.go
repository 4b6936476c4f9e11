package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theramuse/theramuse/internal/store"
	"github.com/theramuse/theramuse/internal/util"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the patient database",
	Long: `Run diagnostic checks to ensure theramuse can operate correctly.

This command checks:
- SQLite version compatibility
- Database accessibility and integrity
- Which schema generation the patients table uses
- Row counts across all tables

Use this command to troubleshoot issues before running theramuse operations.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	util.InfoLog("=== TheraMuse Doctor - Store Diagnostics ===")
	util.InfoLog("")

	dbPath := viper.GetString("db")

	results := []checkResult{
		checkSQLite(),
		checkDatabasePath(dbPath),
	}
	results = append(results, checkDatabase(dbPath)...)

	// Print results
	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("Some critical checks failed. Resolve them before running theramuse.")
		return fmt.Errorf("store diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("All checks passed. Store is ready.")
	}

	return nil
}

// checkSQLite verifies the embedded SQLite build
func checkSQLite() checkResult {
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}
	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s", version),
	}
}

// checkDatabasePath verifies the database location is usable
func checkDatabasePath(dbPath string) checkResult {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		dir := filepath.Dir(dbPath)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return checkResult{
				name:    "Database path",
				error:   true,
				message: fmt.Sprintf("directory %s does not exist", dir),
			}
		}
		return checkResult{
			name:    "Database path",
			message: fmt.Sprintf("%s will be created on first use", dbPath),
		}
	}
	return checkResult{
		name:    "Database path",
		message: dbPath,
	}
}

// checkDatabase opens the store and inspects it. Returns several
// results: accessibility, integrity, schema generation, row counts.
func checkDatabase(dbPath string) []checkResult {
	db, err := store.Open(dbPath)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, util.ErrStoreUnavailable) {
			msg = "store unavailable: " + msg
		}
		return []checkResult{{name: "Database", error: true, message: msg}}
	}
	defer db.Close()

	results := []checkResult{{name: "Database", message: "accessible, schema ensured"}}

	if err := db.CheckIntegrity(); err != nil {
		results = append(results, checkResult{name: "Integrity", error: true, message: err.Error()})
	} else {
		results = append(results, checkResult{name: "Integrity", message: "ok"})
	}

	generation, err := db.SchemaGeneration()
	switch {
	case err != nil:
		results = append(results, checkResult{name: "Schema generation", error: true, message: err.Error()})
	case generation == "unknown":
		results = append(results, checkResult{name: "Schema generation", warning: true,
			message: "patients table matches neither known generation"})
	default:
		results = append(results, checkResult{name: "Schema generation", message: generation})
	}

	counts, err := db.Counts()
	if err != nil {
		results = append(results, checkResult{name: "Row counts", warning: true, message: err.Error()})
	} else {
		results = append(results, checkResult{name: "Row counts",
			message: fmt.Sprintf("%d patients, %d sessions, %d recommendations, %d feedback, %d scores",
				counts.Patients, counts.Sessions, counts.Recommendations, counts.Feedback, counts.Scores)})
	}

	return results
}
