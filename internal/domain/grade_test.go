package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeState_PerWaterbodyTier(t *testing.T) {
	reconciled := []ReconciledWaterbody{
		{State: "MD", Status: StatusAssessed, AlertLevel: AlertNone},   // 100
		{State: "MD", Status: StatusAssessed, AlertLevel: AlertMedium}, // 65
		{State: "MD", Status: StatusMonitored, AlertLevel: AlertHigh},  // not assessed, ignored for score
		{State: "VA", Status: StatusAssessed, AlertLevel: AlertHigh},   // other state, ignored
	}

	summary := GradeState("MD", reconciled, nil, nil)

	assert.True(t, summary.CanGrade)
	assert.Equal(t, SourcePerWaterbody, summary.DataSource)
	assert.Equal(t, 83, summary.Score) // round((100+65)/2) = round(82.5)
	assert.Equal(t, "B", summary.Grade.Letter)
	assert.Equal(t, 2, summary.Assessed)
	assert.Equal(t, 1, summary.Monitored)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Severity.High)
}

func TestGradeState_AttainsTier(t *testing.T) {
	t.Run("category counts drive the score", func(t *testing.T) {
		// 10 category-5 and 5 category-4A records:
		// round((10*40 + 5*65) / 15) = round(48.33) = 48 → F.
		var bulk []BulkAssessment
		for i := 0; i < 10; i++ {
			bulk = append(bulk, BulkAssessment{Name: "w", Category: "5"})
		}
		for i := 0; i < 5; i++ {
			bulk = append(bulk, BulkAssessment{Name: "w", Category: "4A"})
		}

		summary := GradeState("TX", nil, bulk, nil)

		assert.True(t, summary.CanGrade)
		assert.Equal(t, SourceAttains, summary.DataSource)
		assert.Equal(t, 48, summary.Score)
		assert.Equal(t, "F", summary.Grade.Letter)
	})

	t.Run("category prefixes are case-insensitive", func(t *testing.T) {
		bulk := []BulkAssessment{
			{Name: "a", Category: "4a"},
			{Name: "b", Category: " 5-Alt "},
			{Name: "c", Category: "4B"},
		}
		summary := GradeState("TX", nil, bulk, nil)

		assert.Equal(t, 1, summary.Categories.Cat5)
		assert.Equal(t, 1, summary.Categories.Cat4A)
		assert.Equal(t, 1, summary.Categories.Cat4B)
	})

	t.Run("only insufficient-data categories leaves the state ungraded", func(t *testing.T) {
		bulk := []BulkAssessment{
			{Name: "a", Category: "3"},
			{Name: "b", Category: "3"},
		}
		summary := GradeState("TX", nil, bulk, nil)

		assert.False(t, summary.CanGrade)
		assert.Equal(t, UngradedScore, summary.Score)
		assert.Equal(t, "N/A", summary.Grade.Letter)
	})
}

func TestGradeState_UngradedTier(t *testing.T) {
	// No assessed entries, no bulk data.
	summary := GradeState("WY", []ReconciledWaterbody{
		{State: "WY", Status: StatusMonitored, AlertLevel: AlertNone},
	}, nil, nil)

	assert.False(t, summary.CanGrade)
	assert.Equal(t, UngradedScore, summary.Score)
	assert.Equal(t, "N/A", summary.Grade.Letter)
	assert.Equal(t, SourceNone, summary.DataSource)
}

func TestGradeState_FlowBlend(t *testing.T) {
	reconciled := []ReconciledWaterbody{
		{State: "MD", Status: StatusAssessed, AlertLevel: AlertNone}, // score 100
	}

	t.Run("blends 85/15 when present", func(t *testing.T) {
		summary := GradeState("MD", reconciled, nil, &FlowScore{Score: 40})
		// round(100*0.85 + 40*0.15) = round(91) = 91 → A-
		assert.Equal(t, 91, summary.Score)
		assert.Equal(t, "A-", summary.Grade.Letter)
	})

	t.Run("nil flow skips the blend", func(t *testing.T) {
		summary := GradeState("MD", reconciled, nil, nil)
		assert.Equal(t, 100, summary.Score)
	})

	t.Run("ungraded state never blends", func(t *testing.T) {
		summary := GradeState("WY", nil, nil, &FlowScore{Score: 40})
		assert.Equal(t, UngradedScore, summary.Score)
	})
}

func TestLetterGrade_Thresholds(t *testing.T) {
	tests := []struct {
		score  int
		letter string
	}{
		{100, "A+"}, {97, "A+"},
		{96, "A"}, {93, "A"},
		{92, "A-"}, {90, "A-"},
		{89, "B+"}, {87, "B+"},
		{86, "B"}, {83, "B"},
		{82, "B-"}, {80, "B-"},
		{79, "C+"}, {77, "C+"},
		{76, "C"}, {73, "C"},
		{72, "C-"}, {70, "C-"},
		{69, "D+"}, {67, "D+"},
		{66, "D"}, {63, "D"},
		{62, "D-"}, {60, "D-"},
		{59, "F"}, {0, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.letter, letterGrade(tt.score).Letter, "score %d", tt.score)
	}
}

func TestGradeState_TopCauses(t *testing.T) {
	bulk := []BulkAssessment{
		{Name: "a", Category: "5", Causes: []string{"Nutrients", "Sediment", "CAUSE UNKNOWN"}},
		{Name: "b", Category: "4A", Causes: []string{"Nutrients", "  Sediment  "}},
		{Name: "c", Category: "5", Causes: []string{"Nutrients", "Cause Unknown - Impaired Biota"}},
		// Non-impaired categories contribute no causes.
		{Name: "d", Category: "2", Causes: []string{"Turbidity"}},
	}

	summary := GradeState("MD", nil, bulk, nil)

	require.Len(t, summary.TopCauses, 2)
	assert.Equal(t, CauseCount{Cause: "Nutrients", Count: 3}, summary.TopCauses[0])
	assert.Equal(t, CauseCount{Cause: "Sediment", Count: 2}, summary.TopCauses[1])
}

func TestGradeState_TopCausesCapped(t *testing.T) {
	var causes []string
	for _, c := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
		causes = append(causes, "Pollutant "+c)
	}
	bulk := []BulkAssessment{{Name: "w", Category: "5", Causes: causes}}

	summary := GradeState("MD", nil, bulk, nil)
	assert.Len(t, summary.TopCauses, maxStateCauses)
}

func TestGradeState_CycleStatus(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))
	defer SetClock(nil)

	tests := []struct {
		name   string
		cycles []string
		cycle  string
		status string
	}{
		{"current", []string{"2022", "2024"}, "2024", "current"},
		{"aging", []string{"2022"}, "2022", "aging"},
		{"stale", []string{"2018"}, "2018", "stale"},
		{"historical", []string{"2008"}, "2008", "historical"},
		{"unparseable", []string{"", "n/a"}, "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bulk []BulkAssessment
			for _, cycle := range tt.cycles {
				bulk = append(bulk, BulkAssessment{Name: "w", Category: "5", Cycle: cycle})
			}
			summary := GradeState("MD", nil, bulk, nil)
			assert.Equal(t, tt.cycle, summary.Cycle)
			assert.Equal(t, tt.status, summary.CycleStatus)
		})
	}
}

func TestGradeState_Deterministic(t *testing.T) {
	bulk := []BulkAssessment{
		{Name: "a", Category: "5", Causes: []string{"Lead"}},
		{Name: "b", Category: "4B", Causes: []string{"Zinc"}},
	}

	first := GradeState("MD", nil, bulk, nil)
	second := GradeState("MD", nil, bulk, nil)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Grade, second.Grade)
	assert.Equal(t, first.TopCauses, second.TopCauses)
}
