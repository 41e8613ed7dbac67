package domain

import (
	"log/slog"
	"sort"
	"time"
)

// Snapshot is one complete recomputation of every derived view: the
// reconciled waterbody set, per-state summaries, the national aggregate, and
// the ranking panels. Each snapshot is built from scratch from the current
// inputs — there is no incremental patching — so repeated computation over a
// growing bulk map converges without drift.
type Snapshot struct {
	Reconciled   []ReconciledWaterbody `json:"reconciled"`
	Summaries    []StateSummary        `json:"summaries"`
	National     NationalAggregate     `json:"national"`
	Rankings     Rankings              `json:"rankings"`
	StatesLoaded int                   `json:"states_loaded"`
	GeneratedAt  time.Time             `json:"generated_at"`
}

// ComputeSnapshot runs the full engine: reconcile, grade every state that
// appears in either input, aggregate nationally, and derive rankings.
//
// flowByState and ejByState are optional provider outputs; nil maps degrade
// gracefully (no blend, no EJ bonus). A reconciliation failure is reported in
// the returned error while the snapshot still carries the registry fallback
// view, so callers always get a servable result.
func ComputeSnapshot(
	registry []RegistryWaterbody,
	bulkByState map[string][]BulkAssessment,
	flowByState map[string]FlowScore,
	ejByState map[string]int,
	logger *slog.Logger,
) (Snapshot, error) {
	reconciled, err := Reconcile(registry, bulkByState, logger)

	summaries := make([]StateSummary, 0, len(bulkByState))
	for _, abbr := range summaryStates(registry, bulkByState) {
		var flow *FlowScore
		if score, ok := flowByState[abbr]; ok {
			flow = &score
		}
		summaries = append(summaries, GradeState(abbr, reconciled, bulkByState[abbr], flow))
	}

	return Snapshot{
		Reconciled:   reconciled,
		Summaries:    summaries,
		National:     Aggregate(bulkByState),
		Rankings:     BuildRankings(reconciled, summaries, ejByState),
		StatesLoaded: len(bulkByState),
		GeneratedAt:  clock.Now().UTC(),
	}, err
}

// summaryStates returns the sorted union of states present in the registry
// and the bulk map. States known only to the registry still get a summary
// (typically ungraded or legacy-graded); states known only to bulk data get
// an attains-tier summary.
func summaryStates(registry []RegistryWaterbody, bulkByState map[string][]BulkAssessment) []string {
	set := make(map[string]bool)
	for _, entry := range registry {
		if abbr := entry.State(); abbr != "" {
			set[abbr] = true
		}
	}
	for state := range bulkByState {
		if state != "" {
			set[state] = true
		}
	}

	states := make([]string, 0, len(set))
	for state := range set {
		states = append(states, state)
	}
	sort.Strings(states)
	return states
}
