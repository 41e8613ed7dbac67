package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityScore(t *testing.T) {
	tests := []struct {
		name     string
		w        ReconciledWaterbody
		ejIndex  int
		expected int
	}{
		{
			// High severity earns both the severity bonus and the
			// regulatory-gap proxy bonus, plus EJ.
			name:     "high alert in an EJ-burdened state",
			w:        ReconciledWaterbody{AlertLevel: AlertHigh, Status: StatusAssessed, DataSourceCount: 2, ActiveAlerts: 3},
			ejIndex:  70,
			expected: 80,
		},
		{
			name:     "high alert without EJ bonus",
			w:        ReconciledWaterbody{AlertLevel: AlertHigh, Status: StatusAssessed, DataSourceCount: 1, ActiveAlerts: 1},
			ejIndex:  30,
			expected: 60,
		},
		{
			name:     "unmonitored gap",
			w:        ReconciledWaterbody{AlertLevel: AlertNone, Status: StatusUnmonitored},
			ejIndex:  0,
			expected: 15,
		},
		{
			name:     "zero data sources counts as a gap",
			w:        ReconciledWaterbody{AlertLevel: AlertNone, Status: StatusMonitored, DataSourceCount: 0, ActiveAlerts: 1},
			ejIndex:  0,
			expected: 15,
		},
		{
			name:     "quiet monitored waterbody",
			w:        ReconciledWaterbody{AlertLevel: AlertNone, Status: StatusMonitored, DataSourceCount: 1, ActiveAlerts: 0},
			ejIndex:  0,
			expected: 5,
		},
		{
			name:     "assessed and calm scores zero",
			w:        ReconciledWaterbody{AlertLevel: AlertNone, Status: StatusAssessed, DataSourceCount: 1, ActiveAlerts: 0},
			ejIndex:  0,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, priorityScore(tt.w, tt.ejIndex))
		})
	}
}

func TestBuildRankings_PriorityQueue(t *testing.T) {
	reconciled := []ReconciledWaterbody{
		{ID: "calm", State: "MD", AlertLevel: AlertNone, Status: StatusAssessed, DataSourceCount: 1},
		{ID: "hot", State: "MD", AlertLevel: AlertHigh, Status: StatusAssessed, DataSourceCount: 1, ActiveAlerts: 2},
		{ID: "gap", State: "VA", AlertLevel: AlertNone, Status: StatusUnmonitored},
	}
	ej := map[string]int{"MD": 70}

	rankings := BuildRankings(reconciled, nil, ej)

	require.Len(t, rankings.Priority, 2)
	assert.Equal(t, "hot", rankings.Priority[0].Waterbody.ID)
	assert.Equal(t, 80, rankings.Priority[0].Score)
	assert.Equal(t, "gap", rankings.Priority[1].Waterbody.ID)

	// Zero-score entries never rank.
	for _, entry := range rankings.Priority {
		assert.Positive(t, entry.Score)
	}
}

func TestBuildRankings_PriorityQueueCapped(t *testing.T) {
	var reconciled []ReconciledWaterbody
	for i := 0; i < 40; i++ {
		reconciled = append(reconciled, ReconciledWaterbody{
			ID:         fmt.Sprintf("wb-%02d", i),
			State:      "MD",
			AlertLevel: AlertHigh,
			Status:     StatusAssessed,
		})
	}

	rankings := BuildRankings(reconciled, nil, nil)

	require.Len(t, rankings.Priority, maxPriorityEntries)
	// Stable sort: equal scores preserve original order.
	assert.Equal(t, "wb-00", rankings.Priority[0].Waterbody.ID)
	assert.Equal(t, "wb-19", rankings.Priority[19].Waterbody.ID)
}

func TestBuildRankings_CoverageGaps(t *testing.T) {
	summaries := []StateSummary{
		{Abbr: "MD", Assessed: 8, Monitored: 1, Unmonitored: 1, Total: 10, Severity: SeverityCounts{High: 1}},
		{Abbr: "VA", Assessed: 1, Monitored: 1, Unmonitored: 8, Total: 10, Severity: SeverityCounts{High: 4, Medium: 2}},
		{Abbr: "WY", Total: 0},
	}

	rankings := BuildRankings(nil, summaries, nil)

	t.Run("lowest coverage first", func(t *testing.T) {
		require.Len(t, rankings.LowestCoverage, 3)
		assert.Equal(t, "WY", rankings.LowestCoverage[0].Abbr)
		assert.Equal(t, 0, rankings.LowestCoverage[0].CoveragePct)
		assert.Equal(t, "VA", rankings.LowestCoverage[1].Abbr)
		assert.Equal(t, 20, rankings.LowestCoverage[1].CoveragePct)
		assert.Equal(t, "MD", rankings.LowestCoverage[2].Abbr)
		assert.Equal(t, 90, rankings.LowestCoverage[2].CoveragePct)
	})

	t.Run("highest severity load first", func(t *testing.T) {
		require.NotEmpty(t, rankings.HighestSeverity)
		assert.Equal(t, "VA", rankings.HighestSeverity[0].Abbr)
		assert.Equal(t, 14, rankings.HighestSeverity[0].SeverityWeight) // 4*3 + 2
	})
}

func TestBuildRankings_Hotspots(t *testing.T) {
	reconciled := []ReconciledWaterbody{
		{ID: "worst", AlertLevel: AlertHigh, ActiveAlerts: 5},
		{ID: "bad", AlertLevel: AlertMedium, ActiveAlerts: 9},
		{ID: "ok", AlertLevel: AlertLow, ActiveAlerts: 0},
		{ID: "fine", AlertLevel: AlertNone, ActiveAlerts: 0},
	}

	rankings := BuildRankings(reconciled, nil, nil)

	t.Run("worsening ranks by severity then alert load", func(t *testing.T) {
		require.Len(t, rankings.HotspotsWorsening, 2)
		// high: 3*10+5=35 beats medium: 2*10+9=29.
		assert.Equal(t, "worst", rankings.HotspotsWorsening[0].ID)
		assert.Equal(t, "bad", rankings.HotspotsWorsening[1].ID)
	})

	t.Run("improving lists calm waters first", func(t *testing.T) {
		require.Len(t, rankings.HotspotsImproving, 2)
		assert.Equal(t, "fine", rankings.HotspotsImproving[0].ID)
		assert.Equal(t, "ok", rankings.HotspotsImproving[1].ID)
	})
}
