// Command genmock generates mock data fixtures: a waterbody registry JSON
// file and a matching bulk assessment payload. It uses the actual domain
// package so generated fixtures exercise real merge behavior (matches,
// upgrades, and synthesized records).
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -registry-out data/mock/waterbodies.json \
//	  -assessments-out data/mock/assessments.json \
//	  -states MD,VA,PA -per-state 50
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	"github.com/couchcryptid/waterbody-recon/internal/domain"
)

// Deterministic fixtures: fixed seed, fixed name pools.
const seed = 20260301

var nameStems = []string{
	"Antietam", "Patapsco", "Gunpowder", "Monocacy", "Choptank", "Severn",
	"Catoctin", "Conococheague", "Tuckahoe", "Wicomico", "Patuxent", "Elk",
	"Sassafras", "Nanticoke", "Pocomoke", "Magothy", "Bohemia", "Octoraro",
}

var nameSuffixes = []string{"River", "Creek", "Run", "Branch", "Lake", "Pond", "Bay"}

var categories = []string{"5", "4A", "4B", "4C", "3", "2", "1"}

var causePool = []string{
	"TOTAL PHOSPHORUS", "TOTAL NITROGEN", "ESCHERICHIA COLI",
	"SEDIMENTATION/SILTATION", "DISSOLVED OXYGEN", "MERCURY",
	"POLYCHLORINATED BIPHENYLS", "CAUSE UNKNOWN",
}

var waterTypes = []string{"STREAM/CREEK/RIVER", "LAKE/RESERVOIR/POND", "ESTUARY", "WETLANDS"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	registryOut := flag.String("registry-out", "", "output path for registry JSON fixture")
	assessmentsOut := flag.String("assessments-out", "", "output path for bulk assessments JSON fixture")
	states := flag.String("states", "MD,VA,PA", "comma-separated state abbreviations")
	perState := flag.Int("per-state", 50, "bulk assessment rows per state")
	flag.Parse()

	if *registryOut == "" || *assessmentsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -registry-out, -assessments-out")
	}

	rng := rand.New(rand.NewSource(seed))

	var entries []domain.RegistryWaterbody
	assessments := make(map[string][]domain.BulkAssessment)

	for _, abbr := range strings.Split(*states, ",") {
		abbr = strings.TrimSpace(strings.ToUpper(abbr))
		if !domain.ValidState(abbr) {
			return fmt.Errorf("unknown state %q", abbr)
		}

		stateEntries, stateBulk := generateState(rng, abbr, *perState)
		entries = append(entries, stateEntries...)
		assessments[abbr] = stateBulk
		log.Printf("%s: %d registry entries, %d bulk rows", abbr, len(stateEntries), len(stateBulk))
	}

	if err := writeJSON(*registryOut, entries); err != nil {
		return fmt.Errorf("writing registry fixture: %w", err)
	}
	log.Printf("wrote registry fixture: %s", *registryOut)

	payload := map[string]any{"assessments": assessments}
	if err := writeJSON(*assessmentsOut, payload); err != nil {
		return fmt.Errorf("writing assessments fixture: %w", err)
	}
	log.Printf("wrote assessments fixture: %s", *assessmentsOut)

	printStats(entries, assessments)
	return nil
}

// generateState builds one state's registry entries and bulk rows. Roughly a
// third of bulk rows reuse registry names so reconciliation produces matches
// and upgrades; the rest synthesize.
func generateState(rng *rand.Rand, abbr string, perState int) ([]domain.RegistryWaterbody, []domain.BulkAssessment) {
	var entries []domain.RegistryWaterbody
	var bulk []domain.BulkAssessment

	registryCount := perState / 2
	for i := 0; i < registryCount; i++ {
		name := pickName(rng)
		status := domain.StatusMonitored
		level := domain.AlertNone
		switch rng.Intn(4) {
		case 0:
			status = domain.StatusAssessed
			level = domain.AlertLevel([]string{"none", "low", "medium"}[rng.Intn(3)])
		case 1:
			status = domain.StatusUnmonitored
		}
		entries = append(entries, domain.RegistryWaterbody{
			ID:              fmt.Sprintf("%s_%s_%03d", strings.ToLower(abbr), strings.ToLower(strings.Fields(name)[0]), i),
			Name:            name,
			StateCode:       abbr,
			Status:          status,
			AlertLevel:      level,
			ActiveAlerts:    rng.Intn(3),
			DataSourceCount: 1 + rng.Intn(2),
		})
	}

	for i := 0; i < perState; i++ {
		name := pickName(rng)
		if i < registryCount/3 {
			name = entries[i].Name
		}
		category := categories[rng.Intn(len(categories))]
		var causes []string
		if strings.HasPrefix(category, "5") || strings.HasPrefix(category, "4") {
			for n := 1 + rng.Intn(3); n > 0; n-- {
				causes = append(causes, causePool[rng.Intn(len(causePool))])
			}
		}
		bulk = append(bulk, domain.BulkAssessment{
			Name:       name,
			Category:   category,
			AlertLevel: levelForCategory(category),
			Causes:     causes,
			Cycle:      fmt.Sprintf("%d", 2018+rng.Intn(5)*2),
			WaterType:  waterTypes[rng.Intn(len(waterTypes))],
		})
	}

	return entries, bulk
}

func pickName(rng *rand.Rand) string {
	return nameStems[rng.Intn(len(nameStems))] + " " + nameSuffixes[rng.Intn(len(nameSuffixes))]
}

func levelForCategory(category string) string {
	switch {
	case strings.HasPrefix(category, "5"):
		return "high"
	case strings.HasPrefix(category, "4"):
		return "medium"
	case strings.HasPrefix(category, "2"):
		return "low"
	default:
		return "none"
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printStats(entries []domain.RegistryWaterbody, assessments map[string][]domain.BulkAssessment) {
	snap, err := domain.ComputeSnapshot(entries, assessments, nil, nil, newStderrLogger())
	if err != nil {
		log.Printf("warning: fixture reconciliation fell back: %v", err)
	}
	synthetic := 0
	for _, w := range snap.Reconciled {
		if w.Synthetic {
			synthetic++
		}
	}
	log.Printf("reconciled: %d waterbodies (%d synthetic), %d state summaries",
		len(snap.Reconciled), synthetic, len(snap.Summaries))
}

func newStderrLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
