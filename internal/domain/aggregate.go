package domain

import (
	"math"
	"sort"
	"strings"
)

// maxNationalCauses bounds the national top-cause table.
const maxNationalCauses = 20

// addressableFragments is the vocabulary of treatable-pollutant name
// fragments. A cause whose text contains any fragment (case-insensitively)
// counts as addressable: there is an established remediation practice for it.
var addressableFragments = []string{
	// sediment / turbidity family
	"sediment", "siltation", "turbidity", "suspended solids",
	// nutrient family
	"nutrient", "nitrogen", "phosphorus", "algal", "chlorophyll",
	// bacteria / pathogen family
	"bacteria", "pathogen", "coli", "enterococcus", "fecal",
	// dissolved oxygen / organic enrichment family
	"dissolved oxygen", "organic enrichment", "oxygen depletion",
	// stormwater metals
	"copper", "lead", "zinc", "cadmium", "mercury",
}

// waterTypeLabels normalizes free-text ATTAINS water-type codes into display
// buckets. Codes with no mapping fall into "Other".
var waterTypeLabels = map[string]string{
	"RIVER":                "Rivers & Streams",
	"STREAM":               "Rivers & Streams",
	"CREEK":                "Rivers & Streams",
	"STREAM/CREEK/RIVER":   "Rivers & Streams",
	"LAKE":                 "Lakes & Reservoirs",
	"RESERVOIR":            "Lakes & Reservoirs",
	"LAKE/RESERVOIR/POND":  "Lakes & Reservoirs",
	"POND":                 "Lakes & Reservoirs",
	"ESTUARY":              "Estuaries",
	"BAY":                  "Estuaries",
	"OCEAN":                "Coastal & Ocean",
	"COASTAL":              "Coastal & Ocean",
	"OCEAN/NEAR COASTAL":   "Coastal & Ocean",
	"SHORELINE":            "Coastal & Ocean",
	"WETLAND":              "Wetlands",
	"WETLANDS, FRESHWATER": "Wetlands",
	"WETLANDS, TIDAL":      "Wetlands",
}

// Aggregate computes the national rollup in a single pass over every bulk
// entry across every state. It tolerates partially-shaped records: a missing
// cause list is treated as empty and sentinel unknown-cause values are
// filtered before counting.
func Aggregate(bulkByState map[string][]BulkAssessment) NationalAggregate {
	agg := NationalAggregate{
		WaterTypes:  make(map[string]int),
		GeneratedAt: clock.Now().UTC(),
	}

	causeCounts := make(map[string]int)
	causeFirstSeen := make(map[string]int)
	order := 0
	totalCauseInstances := 0
	addressableCount := 0

	for _, state := range sortedStates(bulkByState) {
		for _, entry := range bulkByState[state] {
			bucket := classifyCategory(entry.Category)
			bumpCategory(&agg.Categories, bucket)
			agg.TotalAssessed++
			if !bucket.impaired() {
				agg.WaterTypes[waterTypeLabel(entry.WaterType)]++
				continue
			}
			agg.TotalImpaired++
			agg.WaterTypes[waterTypeLabel(entry.WaterType)]++

			for _, cause := range entry.Causes {
				cause = strings.TrimSpace(cause)
				if cause == "" || unknownCauses[strings.ToUpper(cause)] {
					continue
				}
				if _, ok := causeCounts[cause]; !ok {
					causeFirstSeen[cause] = order
					order++
				}
				causeCounts[cause]++
				totalCauseInstances++
				if isAddressable(cause) {
					addressableCount++
				}
			}
		}
	}

	agg.TopCauses = rankCauses(causeCounts, causeFirstSeen, maxNationalCauses)

	if totalCauseInstances > 0 {
		agg.AddressablePct = int(math.Round(float64(addressableCount) / float64(totalCauseInstances) * 100))
	}
	if agg.TotalImpaired > 0 {
		agg.TMDLGapPct = int(math.Round(float64(agg.Categories.Cat5) / float64(agg.TotalImpaired) * 100))
	}

	return agg
}

// isAddressable reports whether a cause string names a treatable pollutant.
func isAddressable(cause string) bool {
	lower := strings.ToLower(cause)
	for _, fragment := range addressableFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// waterTypeLabel resolves a raw water-type code to its display bucket.
func waterTypeLabel(raw string) string {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if label, ok := waterTypeLabels[key]; ok {
		return label
	}
	// Codes vary wildly across states; fall back to a contains check before
	// giving up on "Other".
	switch {
	case strings.Contains(key, "RIVER"), strings.Contains(key, "STREAM"), strings.Contains(key, "CREEK"):
		return "Rivers & Streams"
	case strings.Contains(key, "LAKE"), strings.Contains(key, "RESERVOIR"), strings.Contains(key, "POND"):
		return "Lakes & Reservoirs"
	case strings.Contains(key, "ESTUAR"), strings.Contains(key, "BAY"):
		return "Estuaries"
	case strings.Contains(key, "OCEAN"), strings.Contains(key, "COAST"), strings.Contains(key, "SHORE"):
		return "Coastal & Ocean"
	case strings.Contains(key, "WETLAND"):
		return "Wetlands"
	default:
		return "Other"
	}
}

func rankCauses(counts, firstSeen map[string]int, limit int) []CauseCount {
	ranked := make([]CauseCount, 0, len(counts))
	for cause, count := range counts {
		ranked = append(ranked, CauseCount{Cause: cause, Count: count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Cause] < firstSeen[ranked[j].Cause]
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
