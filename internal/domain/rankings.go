package domain

import "sort"

// Ranking list caps: the dashboard panels show a fixed number of rows.
const (
	maxPriorityEntries = 20
	maxRankedStates    = 10
	maxHotspots        = 10
)

// ejPriorityThreshold is the state EJ index at or above which a waterbody
// earns the environmental-justice priority bonus.
const ejPriorityThreshold = 60

// PriorityEntry is one row of the priority queue: a waterbody and the score
// that ranked it.
type PriorityEntry struct {
	Waterbody ReconciledWaterbody `json:"waterbody"`
	Score     int                 `json:"score"`
}

// StateCoverage is one row of a coverage-gap panel.
type StateCoverage struct {
	Abbr           string `json:"abbr"`
	CoveragePct    int    `json:"coverage_pct"`
	SeverityWeight int    `json:"severity_weight"`
}

// Rankings holds the derived dashboard views. All lists are pure functions
// of the reconciled set and state summaries.
type Rankings struct {
	Priority          []PriorityEntry       `json:"priority,omitempty"`
	LowestCoverage    []StateCoverage       `json:"lowest_coverage,omitempty"`
	HighestSeverity   []StateCoverage       `json:"highest_severity,omitempty"`
	HotspotsWorsening []ReconciledWaterbody `json:"hotspots_worsening,omitempty"`
	HotspotsImproving []ReconciledWaterbody `json:"hotspots_improving,omitempty"`
}

// BuildRankings derives the priority queue, coverage-gap, and hotspot views.
// ejByState supplies per-state environmental-justice indexes; missing states
// simply earn no EJ bonus.
func BuildRankings(reconciled []ReconciledWaterbody, summaries []StateSummary, ejByState map[string]int) Rankings {
	return Rankings{
		Priority:          priorityQueue(reconciled, ejByState),
		LowestCoverage:    lowestCoverage(summaries),
		HighestSeverity:   highestSeverity(summaries),
		HotspotsWorsening: hotspotsWorsening(reconciled),
		HotspotsImproving: hotspotsImproving(reconciled),
	}
}

// priorityScore weighs a waterbody for attention: severity dominates, with
// bonuses for regulatory gaps, environmental-justice burden, and missing
// monitoring coverage. Zero-score entries never rank.
func priorityScore(w ReconciledWaterbody, ejIndex int) int {
	score := 0
	if w.AlertLevel == AlertHigh {
		score += 40
	}
	// Regulatory-gap proxy: high-alert waters are overwhelmingly the ones
	// waiting on a TMDL, so high severity earns a second bonus.
	if w.AlertLevel == AlertHigh {
		score += 20
	}
	if ejIndex >= ejPriorityThreshold {
		score += 20
	}
	if w.Status == StatusUnmonitored || w.DataSourceCount == 0 {
		score += 15
	} else if w.Status == StatusMonitored && w.ActiveAlerts == 0 {
		score += 5
	}
	return score
}

func priorityQueue(reconciled []ReconciledWaterbody, ejByState map[string]int) []PriorityEntry {
	entries := make([]PriorityEntry, 0, len(reconciled))
	for _, w := range reconciled {
		score := priorityScore(w, ejByState[w.State])
		if score > 0 {
			entries = append(entries, PriorityEntry{Waterbody: w, Score: score})
		}
	}
	// Stable: ties keep original reconciled order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return capEntries(entries, maxPriorityEntries)
}

// lowestCoverage ranks states by assessment coverage, least-covered first.
func lowestCoverage(summaries []StateSummary) []StateCoverage {
	rows := coverageRows(summaries)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CoveragePct < rows[j].CoveragePct
	})
	return capEntries(rows, maxRankedStates)
}

// highestSeverity ranks states by weighted severity load, worst first.
func highestSeverity(summaries []StateSummary) []StateCoverage {
	rows := coverageRows(summaries)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].SeverityWeight > rows[j].SeverityWeight
	})
	return capEntries(rows, maxRankedStates)
}

func coverageRows(summaries []StateSummary) []StateCoverage {
	rows := make([]StateCoverage, 0, len(summaries))
	for _, s := range summaries {
		pct := 0
		if s.Total > 0 {
			pct = roundDiv((s.Assessed+s.Monitored)*100, s.Total)
		}
		rows = append(rows, StateCoverage{
			Abbr:           s.Abbr,
			CoveragePct:    pct,
			SeverityWeight: s.Severity.High*3 + s.Severity.Medium,
		})
	}
	return rows
}

// hotspotsWorsening lists waterbodies with active alerts, highest combined
// severity-and-alert load first.
func hotspotsWorsening(reconciled []ReconciledWaterbody) []ReconciledWaterbody {
	var rows []ReconciledWaterbody
	for _, w := range reconciled {
		if w.ActiveAlerts > 0 {
			rows = append(rows, w)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return hotspotWeight(rows[i]) > hotspotWeight(rows[j])
	})
	return capEntries(rows, maxHotspots)
}

// hotspotsImproving lists waterbodies at none/low severity, calmest first.
func hotspotsImproving(reconciled []ReconciledWaterbody) []ReconciledWaterbody {
	var rows []ReconciledWaterbody
	for _, w := range reconciled {
		if w.AlertLevel == AlertNone || w.AlertLevel == AlertLow {
			rows = append(rows, w)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].AlertLevel.Severity() < rows[j].AlertLevel.Severity()
	})
	return capEntries(rows, maxHotspots)
}

func hotspotWeight(w ReconciledWaterbody) int {
	return w.AlertLevel.Severity()*10 + w.ActiveAlerts
}

func capEntries[T any](entries []T, limit int) []T {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
