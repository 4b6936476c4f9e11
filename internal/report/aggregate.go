// Package report reassembles the per-patient view: one patient row
// joined in memory with its sessions, recommendations, feedback and
// current personality snapshot.
package report

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/theramuse/theramuse/internal/store"
	"github.com/theramuse/theramuse/internal/util"
)

// CategoryGroup holds the recommendations of one category, rank
// ascending. Groups keep the first-seen order of the underlying read.
type CategoryGroup struct {
	Category string
	Songs    []*store.Recommendation
}

// FeedbackTally counts feedback events by type
type FeedbackTally struct {
	Likes    int
	Dislikes int
	Skips    int
	Neutral  int
}

// PatientReport is the denormalized per-patient view handed to the
// report consumer. Lists are always present; a patient without
// recommendations or feedback carries empty groups, not nil.
type PatientReport struct {
	Patient  *store.Patient
	Sessions []*store.TherapySession
	Groups   []CategoryGroup
	Feedback []*store.FeedbackEvent
	Scores   store.PersonalityScore
	Tally    FeedbackTally
}

// BuildPatientReport aggregates one patient: one query per entity,
// five round trips total.
func BuildPatientReport(db *store.Store, patientID string) (*PatientReport, error) {
	patient, err := db.GetPatient(patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, fmt.Errorf("patient %s: %w", patientID, util.ErrNotFound)
	}
	return buildReport(db, patient)
}

func buildReport(db *store.Store, patient *store.Patient) (*PatientReport, error) {
	sessions, err := db.SessionsFor(patient.ID)
	if err != nil {
		return nil, err
	}
	recs, err := db.RecommendationsFor(patient.ID)
	if err != nil {
		return nil, err
	}
	feedback, err := db.FeedbackFor(patient.ID)
	if err != nil {
		return nil, err
	}
	scores, err := db.LatestPersonalityScoreFor(patient.ID)
	if err != nil {
		return nil, err
	}

	return &PatientReport{
		Patient:  patient,
		Sessions: sessions,
		Groups:   groupByCategory(recs),
		Feedback: feedback,
		Scores:   scores,
		Tally:    tallyFeedback(feedback),
	}, nil
}

// BuildAllOptions holds options for the report-for-all loop
type BuildAllOptions struct {
	Progress bool // Show a progress bar on stderr
}

// BuildReportForAll aggregates every patient in the store. This is a
// deliberate O(n) round-trip pattern, five queries per patient; the
// store is local so the simplicity wins over a batched join. A patient
// whose aggregation fails is logged and skipped rather than aborting
// the whole report.
func BuildReportForAll(db *store.Store, opts *BuildAllOptions) ([]*PatientReport, error) {
	if opts == nil {
		opts = &BuildAllOptions{}
	}

	patients, err := db.ListPatients()
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.NewOptions(len(patients),
			progressbar.OptionSetDescription("Aggregating"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("patients"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	reports := []*PatientReport{}
	for _, patient := range patients {
		rpt, err := buildReport(db, patient)
		if err != nil {
			util.WarnLog("Skipping patient %s: %v", patient.ID, err)
			continue
		}
		reports = append(reports, rpt)
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	return reports, nil
}

// groupByCategory splits a category-then-rank ordered row stream into
// stable groups: first-seen category order, rank ascending inside.
func groupByCategory(recs []*store.Recommendation) []CategoryGroup {
	groups := []CategoryGroup{}
	index := map[string]int{}
	for _, r := range recs {
		i, seen := index[r.Category]
		if !seen {
			i = len(groups)
			index[r.Category] = i
			groups = append(groups, CategoryGroup{Category: r.Category})
		}
		groups[i].Songs = append(groups[i].Songs, r)
	}
	return groups
}

func tallyFeedback(events []*store.FeedbackEvent) FeedbackTally {
	t := FeedbackTally{}
	for _, ev := range events {
		switch ev.FeedbackType {
		case store.FeedbackLike:
			t.Likes++
		case store.FeedbackDislike:
			t.Dislikes++
		case store.FeedbackSkip:
			t.Skips++
		default:
			t.Neutral++
		}
	}
	return t
}
