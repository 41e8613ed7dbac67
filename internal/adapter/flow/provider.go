// Package flow loads optional per-state enrichment data: flow-vulnerability
// scores and environmental-justice indexes, keyed by state abbreviation.
package flow

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/waterbody-recon/internal/domain"
)

// stateEntry is one state's block in the enrichment file.
type stateEntry struct {
	Flow    *domain.FlowScore `yaml:"flow"`
	EJIndex *int              `yaml:"ej_index"`
}

type file struct {
	States map[string]stateEntry `yaml:"states"`
}

// Data is the parsed enrichment set. Either map may be empty; grading and
// ranking degrade gracefully without them.
type Data struct {
	FlowByState map[string]domain.FlowScore
	EJByState   map[string]int
}

// Load parses the enrichment YAML file. A missing file is not an error:
// enrichment is optional, and the service runs unblended without it. Entries
// for unknown states are skipped with a warning rather than failing the
// load.
func Load(path string, logger *slog.Logger) (Data, error) {
	data := Data{
		FlowByState: make(map[string]domain.FlowScore),
		EJByState:   make(map[string]int),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("enrichment file missing, continuing without flow data", "path", path)
			return data, nil
		}
		return Data{}, fmt.Errorf("read enrichment file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Data{}, fmt.Errorf("parse enrichment file: %w", err)
	}

	for abbr, entry := range f.States {
		if !domain.ValidState(abbr) {
			logger.Warn("skipping enrichment for unknown state", "state", abbr)
			continue
		}
		if entry.Flow != nil {
			data.FlowByState[abbr] = *entry.Flow
		}
		if entry.EJIndex != nil {
			data.EJByState[abbr] = *entry.EJIndex
		}
	}

	return data, nil
}
