package domain

import (
	"regexp"
	"strings"
)

// waterbodyTypeRe strips generic waterbody-type words so "Antietam Creek" and
// "Antietam" can meet in the middle. Word-bounded to avoid mangling names
// like "Riverdale".
var waterbodyTypeRe = regexp.MustCompile(`\b(river|creek|bay|harbor|inlet|lake|pond|branch|run|falls|fork|stream|reservoir)\b`)

// spaceRe collapses runs of whitespace left behind by suffix stripping.
var spaceRe = regexp.MustCompile(`\s+`)

// NameIndex is a normalized lookup table over the registry, built once per
// reconciliation pass.
type NameIndex struct {
	// variants maps each normalized name variant to the registry IDs that
	// share it. A variant can be ambiguous across states; Match filters by
	// state at query time.
	variants map[string][]string
	// byID resolves an ID back to its registry entry for state filtering.
	byID map[string]RegistryWaterbody
	// byState lists registry entries per state for the substring fallback,
	// keeping that scan proportional to one state rather than the whole
	// registry.
	byState map[string][]RegistryWaterbody
}

// BuildNameIndex indexes the registry under three normalized variants per
// entry: the full name, the name truncated at its first comma, and the ID
// with its state-prefix token stripped and underscores replaced by spaces.
func BuildNameIndex(registry []RegistryWaterbody) *NameIndex {
	idx := &NameIndex{
		variants: make(map[string][]string, len(registry)*3),
		byID:     make(map[string]RegistryWaterbody, len(registry)),
		byState:  make(map[string][]RegistryWaterbody),
	}

	for _, entry := range registry {
		idx.byID[entry.ID] = entry
		state := entry.State()
		idx.byState[state] = append(idx.byState[state], entry)

		for _, variant := range nameVariants(entry) {
			if variant == "" {
				continue
			}
			ids := idx.variants[variant]
			if containsID(ids, entry.ID) {
				continue
			}
			idx.variants[variant] = append(ids, entry.ID)
		}
	}

	return idx
}

// Match resolves a bulk-source waterbody name, scoped to a state, to zero or
// more registry IDs. It never fails: an unresolvable name returns an empty
// slice, which routes the record into Phase-2 synthesis.
//
// Resolution order:
//  1. exact lookup of the normalized name, filtered to the query state
//  2. exact lookup again with waterbody-type suffix words stripped
//  3. bidirectional substring containment against every registry entry in
//     the state, comparing the stripped bulk name with the registry name
//     truncated at its first comma
func (idx *NameIndex) Match(name, stateAbbr string) []string {
	normalized := normalizeName(name)
	if normalized == "" {
		return nil
	}

	if ids := idx.lookupInState(normalized, stateAbbr); len(ids) > 0 {
		return ids
	}

	stripped := stripWaterbodyTypes(normalized)
	if stripped != normalized && stripped != "" {
		if ids := idx.lookupInState(stripped, stateAbbr); len(ids) > 0 {
			return ids
		}
	}

	if stripped == "" {
		stripped = normalized
	}
	return idx.substringScan(stripped, stateAbbr)
}

func (idx *NameIndex) lookupInState(variant, stateAbbr string) []string {
	var out []string
	for _, id := range idx.variants[variant] {
		if idx.byID[id].State() == stateAbbr {
			out = append(out, id)
		}
	}
	return out
}

func (idx *NameIndex) substringScan(stripped, stateAbbr string) []string {
	var out []string
	for _, entry := range idx.byState[stateAbbr] {
		registryName := normalizeName(truncateAtComma(entry.Name))
		if registryName == "" {
			continue
		}
		if strings.Contains(registryName, stripped) || strings.Contains(stripped, registryName) {
			out = append(out, entry.ID)
		}
	}
	return out
}

// nameVariants generates the three index variants for a registry entry.
func nameVariants(entry RegistryWaterbody) [3]string {
	return [3]string{
		normalizeName(entry.Name),
		normalizeName(truncateAtComma(entry.Name)),
		normalizeName(idAsName(entry.ID)),
	}
}

// normalizeName lowercases and trims a name.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// truncateAtComma cuts a name at its first comma. Registry names often carry
// segment qualifiers after the comma ("Patuxent River, Lower").
func truncateAtComma(name string) string {
	if i := strings.Index(name, ","); i >= 0 {
		return name[:i]
	}
	return name
}

// idAsName turns a registry ID like "md_antietam_creek" into "antietam creek"
// by dropping the state-prefix token and replacing underscores with spaces.
func idAsName(id string) string {
	rest := id
	if i := strings.Index(id, "_"); i >= 0 {
		rest = id[i+1:]
	}
	return strings.ReplaceAll(rest, "_", " ")
}

// stripWaterbodyTypes removes generic type words and tidies the remainder.
func stripWaterbodyTypes(normalized string) string {
	stripped := waterbodyTypeRe.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(stripped, " "))
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
