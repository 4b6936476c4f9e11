package report

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SortKey selects the ordering of an aggregated report list
type SortKey string

const (
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortMostSessions SortKey = "most-sessions"
	SortMostFeedback SortKey = "most-feedback"
)

// Filtering and sorting run client-side over the already-aggregated
// list, never pushed into storage queries.

// FilterByName keeps reports whose patient name contains the given
// substring, case-insensitively after NFC normalization.
func FilterByName(reports []*PatientReport, substr string) []*PatientReport {
	if substr == "" {
		return reports
	}
	needle := foldName(substr)
	out := []*PatientReport{}
	for _, r := range reports {
		if strings.Contains(foldName(r.Patient.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByCondition keeps reports whose patient carries the given
// condition tag.
func FilterByCondition(reports []*PatientReport, condition string) []*PatientReport {
	if condition == "" {
		return reports
	}
	out := []*PatientReport{}
	for _, r := range reports {
		if r.Patient.Condition == condition {
			out = append(out, r)
		}
	}
	return out
}

// SortReports orders reports in place by the given key. Unknown keys
// leave the list in its stored order (newest first).
func SortReports(reports []*PatientReport, key SortKey) {
	switch key {
	case SortNewest:
		sort.SliceStable(reports, func(i, j int) bool {
			return reports[i].Patient.CreatedAt.After(reports[j].Patient.CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(reports, func(i, j int) bool {
			return reports[i].Patient.CreatedAt.Before(reports[j].Patient.CreatedAt)
		})
	case SortMostSessions:
		sort.SliceStable(reports, func(i, j int) bool {
			return len(reports[i].Sessions) > len(reports[j].Sessions)
		})
	case SortMostFeedback:
		sort.SliceStable(reports, func(i, j int) bool {
			return len(reports[i].Feedback) > len(reports[j].Feedback)
		})
	}
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}
