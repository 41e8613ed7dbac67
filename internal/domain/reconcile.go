package domain

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// MaxSyntheticPerState caps Phase-2 synthesis so one state's oversized bulk
// payload cannot swamp the reconciled set. Lowest-severity entries are the
// ones dropped at the cap.
const MaxSyntheticPerState = 1500

// maxSyntheticNameLen bounds the sanitized-name portion of a synthetic ID.
const maxSyntheticNameLen = 60

var syntheticIDRe = regexp.MustCompile(`[^a-z0-9]+`)

// Reconcile merges the static registry with the bulk assessment map into a
// unified list of per-waterbody records. It is deterministic and side-effect
// free: identical inputs always yield an identical output set.
//
// The merge runs in two phases. Phase 1 matches every bulk entry against the
// registry and upgrades registry entries that legacy data had not already
// marked assessed, taking the highest-severity bulk match per entry. Phase 2
// synthesizes records for unmatched bulk entries, deduplicated by normalized
// name, sorted impaired-first, and capped per state.
//
// Reconcile is wrapped in an isolating boundary: a panic on malformed input
// falls back to the registry's own legacy view, with the failure returned as
// an error rather than raised. The returned slice is always usable.
func Reconcile(registry []RegistryWaterbody, bulkByState map[string][]BulkAssessment, logger *slog.Logger) (result []ReconciledWaterbody, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("reconciliation failed, falling back to registry view", "panic", r)
			result = legacyView(registry)
			err = fmt.Errorf("reconcile: %v", r)
		}
	}()

	idx := BuildNameIndex(registry)
	states := sortedStates(bulkByState)

	// Phase 1: resolve matches, retaining the highest-severity bulk entry
	// seen per registry ID.
	best := make(map[string]BulkAssessment)
	matched := make(map[string]bool) // "<state>\x00<normalized name>"
	for _, state := range states {
		for _, bulk := range bulkByState[state] {
			ids := idx.Match(bulk.Name, state)
			if len(ids) == 0 {
				continue
			}
			matched[pairKey(state, bulk.Name)] = true
			for _, id := range ids {
				current, ok := best[id]
				if !ok || bulk.Level().Severity() > current.Level().Severity() {
					best[id] = bulk
				}
			}
		}
	}

	// Phase 1b: upgrade registry entries with a match, unless legacy data
	// already marked them assessed. Hand-curated assessments take
	// unconditional precedence, even over a more severe bulk match.
	result = make([]ReconciledWaterbody, 0, len(registry))
	existingIDs := make(map[string]bool, len(registry))
	for _, entry := range registry {
		existingIDs[stateIDKey(entry.State(), entry.ID)] = true
		row := fromRegistry(entry)
		if bulk, ok := best[entry.ID]; ok && entry.Status != StatusAssessed {
			level := bulk.Level()
			row.Status = StatusAssessed
			row.AlertLevel = level
			row.ActiveAlerts = alertCount(level, bulk.Causes)
		}
		result = append(result, row)
	}

	// Phase 2: synthesize records for bulk entries with no registry
	// counterpart.
	for _, state := range states {
		candidates := synthesisCandidates(bulkByState[state], state, matched)
		if len(candidates) > MaxSyntheticPerState {
			candidates = candidates[:MaxSyntheticPerState]
		}
		for _, bulk := range candidates {
			id := syntheticID(state, bulk.Name)
			key := stateIDKey(state, id)
			if existingIDs[key] {
				logger.Warn("synthetic id collision, keeping existing record", "state", state, "id", id)
				continue
			}
			existingIDs[key] = true
			level := bulk.Level()
			result = append(result, ReconciledWaterbody{
				ID:              id,
				Name:            strings.TrimSpace(bulk.Name),
				State:           state,
				Status:          StatusAssessed,
				AlertLevel:      level,
				ActiveAlerts:    alertCount(level, bulk.Causes),
				DataSourceCount: 1,
				Synthetic:       true,
			})
		}
	}

	return result, nil
}

// synthesisCandidates filters a state's bulk list down to Phase-2 input:
// blank names and Phase-1 matches are dropped, duplicate normalized names
// keep their first occurrence, and the remainder is ordered by severity
// descending (stable, so source order breaks ties).
func synthesisCandidates(bulk []BulkAssessment, state string, matched map[string]bool) []BulkAssessment {
	seen := make(map[string]bool, len(bulk))
	candidates := make([]BulkAssessment, 0, len(bulk))
	for _, entry := range bulk {
		normalized := normalizeName(entry.Name)
		if normalized == "" {
			continue
		}
		if matched[pairKey(state, entry.Name)] {
			continue
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		candidates = append(candidates, entry)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Level().Severity() > candidates[j].Level().Severity()
	})
	return candidates
}

// syntheticID derives the deterministic ID for a synthesized record:
// "attains-<state>-<sanitized name>", with the name portion lowercased,
// reduced to hyphen-separated alphanumerics, and truncated.
func syntheticID(state, name string) string {
	sanitized := syntheticIDRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	sanitized = strings.Trim(sanitized, "-")
	if len(sanitized) > maxSyntheticNameLen {
		sanitized = strings.Trim(sanitized[:maxSyntheticNameLen], "-")
	}
	return "attains-" + strings.ToLower(state) + "-" + sanitized
}

// alertCount derives active alerts from a bulk match: one per listed cause,
// or a single alert when an impaired record ships no cause list. A record at
// severity none carries zero active alerts regardless of causes.
func alertCount(level AlertLevel, causes []string) int {
	if level == AlertNone {
		return 0
	}
	if len(causes) == 0 {
		return 1
	}
	return len(causes)
}

// legacyView maps the registry to reconciled records unmodified, used as the
// fallback when the merge fails.
func legacyView(registry []RegistryWaterbody) []ReconciledWaterbody {
	out := make([]ReconciledWaterbody, 0, len(registry))
	for _, entry := range registry {
		out = append(out, fromRegistry(entry))
	}
	return out
}

func fromRegistry(entry RegistryWaterbody) ReconciledWaterbody {
	return ReconciledWaterbody{
		ID:              entry.ID,
		Name:            entry.Name,
		State:           entry.State(),
		Status:          entry.Status,
		AlertLevel:      entry.AlertLevel,
		ActiveAlerts:    entry.ActiveAlerts,
		DataSourceCount: entry.DataSourceCount,
	}
}

func sortedStates(bulkByState map[string][]BulkAssessment) []string {
	states := make([]string, 0, len(bulkByState))
	for state := range bulkByState {
		states = append(states, state)
	}
	sort.Strings(states)
	return states
}

func pairKey(state, name string) string {
	return state + "\x00" + normalizeName(name)
}

func stateIDKey(state, id string) string {
	return state + "\x00" + id
}
