// Package registry loads the static waterbody registry from disk. The
// registry is read once at startup and treated as immutable for the life of
// the process.
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/couchcryptid/waterbody-recon/internal/domain"
)

// Load reads and validates the registry file. Every entry must carry a
// unique ID, a name, and a resolvable state code; a single bad entry fails
// the whole load so a truncated or hand-mangled file never half-boots the
// service.
func Load(path string) ([]domain.RegistryWaterbody, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var entries []domain.RegistryWaterbody
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		if entry.ID == "" {
			return nil, fmt.Errorf("registry entry %d: missing id", i)
		}
		if seen[entry.ID] {
			return nil, fmt.Errorf("registry entry %d: duplicate id %q", i, entry.ID)
		}
		seen[entry.ID] = true
		if entry.Name == "" {
			return nil, fmt.Errorf("registry entry %q: missing name", entry.ID)
		}
		if entry.State() == "" {
			return nil, fmt.Errorf("registry entry %q: unresolvable state code %q", entry.ID, entry.StateCode)
		}
	}

	return entries, nil
}
