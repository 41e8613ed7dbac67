package domain

import (
	"strings"
	"time"
)

// AlertLevel is the four-step severity scale shared by registry and bulk data.
type AlertLevel string

const (
	AlertNone   AlertLevel = "none"
	AlertLow    AlertLevel = "low"
	AlertMedium AlertLevel = "medium"
	AlertHigh   AlertLevel = "high"
)

// ParseAlertLevel normalizes a free-text alert level, defaulting to none for
// anything unrecognized. Bulk sources are inconsistent about casing and
// sometimes ship empty strings.
func ParseAlertLevel(s string) AlertLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return AlertLow
	case "medium", "moderate":
		return AlertMedium
	case "high", "severe":
		return AlertHigh
	default:
		return AlertNone
	}
}

// Severity returns the ordinal rank used for highest-severity-wins merging:
// none 0, low 1, medium 2, high 3.
func (a AlertLevel) Severity() int {
	switch a {
	case AlertLow:
		return 1
	case AlertMedium:
		return 2
	case AlertHigh:
		return 3
	default:
		return 0
	}
}

// Score returns the grading weight for the level: none 100, low 85,
// medium 65, high 40.
func (a AlertLevel) Score() int {
	switch a {
	case AlertLow:
		return 85
	case AlertMedium:
		return 65
	case AlertHigh:
		return 40
	default:
		return 100
	}
}

// Status classifies how much is known about a waterbody.
type Status string

const (
	StatusAssessed    Status = "assessed"
	StatusMonitored   Status = "monitored"
	StatusUnmonitored Status = "unmonitored"
)

// RegistryWaterbody is an entry in the static, process-lifetime registry.
// Immutable after load.
type RegistryWaterbody struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	StateCode       string     `json:"state_code"` // FIPS numeric ("24") or abbreviation ("MD")
	Status          Status     `json:"status"`
	AlertLevel      AlertLevel `json:"alert_level"`
	ActiveAlerts    int        `json:"active_alerts"`
	DataSourceCount int        `json:"data_source_count"`
}

// State returns the two-letter abbreviation for the entry's state code.
func (r RegistryWaterbody) State() string {
	return NormalizeState(r.StateCode)
}

// BulkAssessment is one waterbody row from the bulk ATTAINS payload.
// Any field may be missing or oddly shaped; consumers must not assume clean
// input.
type BulkAssessment struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"` // free-text IR category, e.g. "5", "4A"
	AlertLevel string   `json:"alert_level"`
	Causes     []string `json:"causes"`
	Cycle      string   `json:"cycle"` // reporting cycle year, e.g. "2024"
	WaterType  string   `json:"water_type"`
}

// Level returns the parsed alert level of the bulk record.
func (b BulkAssessment) Level() AlertLevel {
	return ParseAlertLevel(b.AlertLevel)
}

// ReconciledWaterbody is the unified per-waterbody record produced by
// Reconcile. Produced fresh on every call; never mutated in place.
type ReconciledWaterbody struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	State           string     `json:"state"`
	Status          Status     `json:"status"`
	AlertLevel      AlertLevel `json:"alert_level"`
	ActiveAlerts    int        `json:"active_alerts"`
	DataSourceCount int        `json:"data_source_count"`

	// Synthetic marks rows fabricated solely from bulk data, with no
	// registry counterpart. Kept visible downstream so fabricated rows are
	// never mistaken for curated measurements.
	Synthetic bool `json:"synthetic,omitempty"`
}

// Grade is a letter grade with its display band.
type Grade struct {
	Letter string `json:"letter"`
	Band   string `json:"band"` // excellent | good | fair | poor | failing | ungraded
}

// DataSource identifies which tier graded a state.
type DataSource string

const (
	SourcePerWaterbody DataSource = "per-waterbody"
	SourceAttains      DataSource = "attains"
	SourceNone         DataSource = "none"
)

// UngradedScore is the sentinel score for states with no usable data.
const UngradedScore = -1

// CauseCount is one entry in a frequency-ranked cause table.
type CauseCount struct {
	Cause string `json:"cause"`
	Count int    `json:"count"`
}

// SeverityCounts tallies reconciled waterbodies per alert level.
type SeverityCounts struct {
	None   int `json:"none"`
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// CategoryCounts tallies bulk records per IR category bucket.
type CategoryCounts struct {
	Cat5    int `json:"cat5"`
	Cat4A   int `json:"cat4a"`
	Cat4B   int `json:"cat4b"`
	Cat4C   int `json:"cat4c"`
	Cat3    int `json:"cat3"`
	Cat2    int `json:"cat2"`
	Cat1    int `json:"cat1"`
	Unknown int `json:"unknown"`
}

// Impaired returns the count of records in impaired buckets (5, 4A, 4B, 4C).
func (c CategoryCounts) Impaired() int {
	return c.Cat5 + c.Cat4A + c.Cat4B + c.Cat4C
}

// StateSummary is the per-state grading output consumed by the dashboard.
type StateSummary struct {
	Abbr        string         `json:"abbr"`
	Severity    SeverityCounts `json:"severity"`
	Categories  CategoryCounts `json:"categories"`
	Assessed    int            `json:"assessed"`
	Monitored   int            `json:"monitored"`
	Unmonitored int            `json:"unmonitored"`
	Total       int            `json:"total"`

	CanGrade   bool         `json:"can_grade"`
	Score      int          `json:"score"` // 0-100, or UngradedScore
	Grade      Grade        `json:"grade"`
	DataSource DataSource   `json:"data_source"`
	TopCauses  []CauseCount `json:"top_causes,omitempty"` // at most 10

	// Cycle holds the most recent reporting cycle seen in bulk data and its
	// age bracket relative to the current year.
	Cycle       string `json:"cycle,omitempty"`
	CycleStatus string `json:"cycle_status,omitempty"` // current | aging | stale | historical | unknown
}

// NationalAggregate is the single-pass national rollup over all bulk data.
type NationalAggregate struct {
	Categories     CategoryCounts `json:"categories"`
	TotalAssessed  int            `json:"total_assessed"`
	TotalImpaired  int            `json:"total_impaired"`
	TopCauses      []CauseCount   `json:"top_causes,omitempty"` // at most 20
	TMDLGapPct     int            `json:"tmdl_gap_pct"`         // 0-100
	AddressablePct int            `json:"addressable_pct"`      // 0-100
	WaterTypes     map[string]int `json:"water_types,omitempty"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// FlowScore is an optional external flow-vulnerability score for a state.
type FlowScore struct {
	Score int `json:"score" yaml:"score"` // 0-100
	Sites int `json:"sites" yaml:"sites"`
}

// fipsToAbbr maps federal numeric state codes to postal abbreviations,
// covering the 50 states, DC, and the territories that file Integrated
// Reports.
var fipsToAbbr = map[string]string{
	"01": "AL", "02": "AK", "04": "AZ", "05": "AR", "06": "CA",
	"08": "CO", "09": "CT", "10": "DE", "11": "DC", "12": "FL",
	"13": "GA", "15": "HI", "16": "ID", "17": "IL", "18": "IN",
	"19": "IA", "20": "KS", "21": "KY", "22": "LA", "23": "ME",
	"24": "MD", "25": "MA", "26": "MI", "27": "MN", "28": "MS",
	"29": "MO", "30": "MT", "31": "NE", "32": "NV", "33": "NH",
	"34": "NJ", "35": "NM", "36": "NY", "37": "NC", "38": "ND",
	"39": "OH", "40": "OK", "41": "OR", "42": "PA", "44": "RI",
	"45": "SC", "46": "SD", "47": "TN", "48": "TX", "49": "UT",
	"50": "VT", "51": "VA", "53": "WA", "54": "WV", "55": "WI",
	"56": "WY", "60": "AS", "66": "GU", "69": "MP", "72": "PR",
	"78": "VI",
}

var abbrSet = func() map[string]bool {
	set := make(map[string]bool, len(fipsToAbbr))
	for _, abbr := range fipsToAbbr {
		set[abbr] = true
	}
	return set
}()

// NormalizeState converts a registry state code (FIPS numeric or postal
// abbreviation, any case) to a canonical two-letter abbreviation. Returns ""
// for codes it cannot resolve.
func NormalizeState(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if abbr, ok := fipsToAbbr[code]; ok {
		return abbr
	}
	// Single-digit FIPS codes sometimes arrive without the leading zero.
	if len(code) == 1 {
		if abbr, ok := fipsToAbbr["0"+code]; ok {
			return abbr
		}
	}
	upper := strings.ToUpper(code)
	if abbrSet[upper] {
		return upper
	}
	return ""
}

// ValidState reports whether abbr is a known two-letter jurisdiction code.
func ValidState(abbr string) bool {
	return abbrSet[abbr]
}
