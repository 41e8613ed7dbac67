package domain

import (
	"math"
	"strconv"
	"strings"
)

// flowBlendWeight is the share of the final score contributed by the state's
// own assessment data when an external flow-vulnerability score is present.
const flowBlendWeight = 0.85

// gradeThresholds maps minimum scores to letter grades, highest first.
// Non-overlapping and monotonic; anything below 60 is an F.
var gradeThresholds = []struct {
	min    int
	letter string
	band   string
}{
	{97, "A+", "excellent"},
	{93, "A", "excellent"},
	{90, "A-", "excellent"},
	{87, "B+", "good"},
	{83, "B", "good"},
	{80, "B-", "good"},
	{77, "C+", "fair"},
	{73, "C", "fair"},
	{70, "C-", "fair"},
	{67, "D+", "poor"},
	{63, "D", "poor"},
	{60, "D-", "poor"},
}

// unknownCauses are sentinel values states file when the impairment cause is
// unresolved; they are excluded from cause rankings.
var unknownCauses = map[string]bool{
	"CAUSE UNKNOWN":                  true,
	"CAUSE UNKNOWN - IMPAIRED BIOTA": true,
}

// maxStateCauses bounds the per-state top-cause list.
const maxStateCauses = 10

// GradeState computes the summary for one state from the reconciled set and
// the state's raw bulk list. Data availability selects the tier:
//
//   - per-waterbody: any reconciled entry for the state is assessed; score is
//     the rounded mean of per-entry level scores
//   - attains: no assessed entries but bulk data exists; score is a
//     category-weighted mean over gradeable categories
//   - none: neither; the state is ungraded (score -1, grade "N/A")
//
// When the state is gradeable and flow is non-nil, the score blends 85/15
// with the external flow-vulnerability score. A nil flow skips the blend
// entirely rather than defaulting to zero.
func GradeState(abbr string, reconciled []ReconciledWaterbody, bulk []BulkAssessment, flow *FlowScore) StateSummary {
	summary := StateSummary{
		Abbr:       abbr,
		Score:      UngradedScore,
		Grade:      Grade{Letter: "N/A", Band: "ungraded"},
		DataSource: SourceNone,
	}

	var assessedScoreSum int
	for _, row := range reconciled {
		if row.State != abbr {
			continue
		}
		summary.Total++
		switch row.AlertLevel {
		case AlertLow:
			summary.Severity.Low++
		case AlertMedium:
			summary.Severity.Medium++
		case AlertHigh:
			summary.Severity.High++
		default:
			summary.Severity.None++
		}
		switch row.Status {
		case StatusAssessed:
			summary.Assessed++
			assessedScoreSum += row.AlertLevel.Score()
		case StatusMonitored:
			summary.Monitored++
		default:
			summary.Unmonitored++
		}
	}

	for _, entry := range bulk {
		bumpCategory(&summary.Categories, classifyCategory(entry.Category))
	}
	summary.TopCauses = topCauses(bulk, maxStateCauses)
	summary.Cycle, summary.CycleStatus = cycleStatus(bulk)

	switch {
	case summary.Assessed > 0:
		summary.DataSource = SourcePerWaterbody
		summary.CanGrade = true
		summary.Score = roundDiv(assessedScoreSum, summary.Assessed)
	case len(bulk) > 0:
		if score, ok := attainsScore(summary.Categories); ok {
			summary.DataSource = SourceAttains
			summary.CanGrade = true
			summary.Score = score
		}
	}

	if summary.CanGrade {
		if flow != nil {
			blended := float64(summary.Score)*flowBlendWeight + float64(flow.Score)*(1-flowBlendWeight)
			summary.Score = int(math.Round(blended))
		}
		summary.Grade = letterGrade(summary.Score)
	}

	return summary
}

// attainsScore derives a score from IR category counts alone. Categories map
// onto the severity scale: 5 is high, 4A/4B medium, 4C/2 low, 1 none.
// Category 3 and unrecognized categories carry no signal (insufficient data)
// and are excluded; a state with only those remains ungraded.
func attainsScore(c CategoryCounts) (int, bool) {
	high := c.Cat5
	medium := c.Cat4A + c.Cat4B
	low := c.Cat4C + c.Cat2
	none := c.Cat1
	total := high + medium + low + none
	if total == 0 {
		return UngradedScore, false
	}
	weighted := high*40 + medium*65 + low*85 + none*100
	return roundDiv(weighted, total), true
}

// letterGrade resolves a 0-100 score against the fixed threshold table.
func letterGrade(score int) Grade {
	for _, t := range gradeThresholds {
		if score >= t.min {
			return Grade{Letter: t.letter, Band: t.band}
		}
	}
	return Grade{Letter: "F", Band: "failing"}
}

// categoryBucket is the classification of a free-text IR category.
type categoryBucket int

const (
	bucketUnknown categoryBucket = iota
	bucket1
	bucket2
	bucket3
	bucket4A
	bucket4B
	bucket4C
	bucket5
)

// classifyCategory buckets a free-text IR category by case-insensitive
// prefix on the trimmed string. "5-Alt" and "5r" are category 5; "4a" is 4A.
func classifyCategory(category string) categoryBucket {
	c := strings.ToUpper(strings.TrimSpace(category))
	switch {
	case strings.HasPrefix(c, "5"):
		return bucket5
	case strings.HasPrefix(c, "4A"):
		return bucket4A
	case strings.HasPrefix(c, "4B"):
		return bucket4B
	case strings.HasPrefix(c, "4C"):
		return bucket4C
	case strings.HasPrefix(c, "3"):
		return bucket3
	case strings.HasPrefix(c, "2"):
		return bucket2
	case strings.HasPrefix(c, "1"):
		return bucket1
	default:
		return bucketUnknown
	}
}

func (b categoryBucket) impaired() bool {
	switch b {
	case bucket5, bucket4A, bucket4B, bucket4C:
		return true
	default:
		return false
	}
}

func bumpCategory(c *CategoryCounts, bucket categoryBucket) {
	switch bucket {
	case bucket5:
		c.Cat5++
	case bucket4A:
		c.Cat4A++
	case bucket4B:
		c.Cat4B++
	case bucket4C:
		c.Cat4C++
	case bucket3:
		c.Cat3++
	case bucket2:
		c.Cat2++
	case bucket1:
		c.Cat1++
	default:
		c.Unknown++
	}
}

// topCauses ranks cause frequency across impaired bulk entries, trimmed and
// with unknown-cause sentinels excluded. Original casing is preserved for
// display; ties break by first appearance.
func topCauses(bulk []BulkAssessment, limit int) []CauseCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for _, entry := range bulk {
		if !classifyCategory(entry.Category).impaired() {
			continue
		}
		for _, cause := range entry.Causes {
			cause = strings.TrimSpace(cause)
			if cause == "" || unknownCauses[strings.ToUpper(cause)] {
				continue
			}
			if _, ok := counts[cause]; !ok {
				firstSeen[cause] = order
				order++
			}
			counts[cause]++
		}
	}

	return rankCauses(counts, firstSeen, limit)
}

// cycleStatus finds the most recent reporting cycle in the bulk list and
// classifies its age against the current year. Integrated Reports are
// biennial, so anything within two years is current.
func cycleStatus(bulk []BulkAssessment) (string, string) {
	latest := 0
	for _, entry := range bulk {
		year, err := strconv.Atoi(strings.TrimSpace(entry.Cycle))
		if err != nil || year <= 0 {
			continue
		}
		if year > latest {
			latest = year
		}
	}
	if latest == 0 {
		return "", "unknown"
	}

	age := clock.Now().UTC().Year() - latest
	switch {
	case age <= 2:
		return strconv.Itoa(latest), "current"
	case age <= 5:
		return strconv.Itoa(latest), "aging"
	case age <= 10:
		return strconv.Itoa(latest), "stale"
	default:
		return strconv.Itoa(latest), "historical"
	}
}

// roundDiv divides and rounds to the nearest integer, halves away from zero.
func roundDiv(sum, count int) int {
	return int(math.Round(float64(sum) / float64(count)))
}
