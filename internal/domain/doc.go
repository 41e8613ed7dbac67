// Package domain reconciles multi-source waterbody assessment data and
// derives state and national water-quality views.
//
// # Data Sources
//
// Two inputs feed every computation:
//
//   - A static registry of waterbodies, loaded once per process. Registry
//     entries carry hand-curated legacy alert levels and monitoring status.
//   - Bulk assessment records keyed by state abbreviation, mirroring the EPA
//     ATTAINS database (state Clean Water Act 305(b)/303(d) Integrated
//     Reports). The bulk map arrives incrementally: an external batch job
//     populates states over multiple cycles, so any given invocation may see
//     a partial map.
//
// # EPA Integrated Report Categories
//
// Bulk records carry a free-text category from the state's Integrated Report:
//
//	1    attaining all designated uses
//	2    attaining some uses, insufficient data for others
//	3    insufficient data to assess
//	4A   impaired, TMDL approved
//	4B   impaired, alternative control plan in place
//	4C   impairment not caused by a pollutant
//	5    impaired, no approved TMDL (the 303(d) list)
//
// Categories are matched by case-insensitive prefix because states embellish
// them freely ("5-Alt", "4a", "5r").
//
// # Severity
//
// Alert levels form a strict order: none < low < medium < high. When several
// bulk records match one registry entry, the highest-severity record wins.
// Level scores (none 100, low 85, medium 65, high 40) drive state grading.
//
// # Reconciliation
//
// Reconcile runs a two-phase merge. Phase 1 links bulk records to registry
// entries by fuzzy name matching and upgrades unassessed entries. Phase 2
// synthesizes new records for bulk entries with no registry counterpart,
// capped per state and deduplicated by normalized name. Synthetic IDs are
// deterministic ("attains-<state>-<sanitized name>") so repeated runs over
// identical inputs produce identical output sets. Synthetic rows are tagged
// so downstream consumers can distinguish them from registry-backed records.
//
// The whole package is pure: no function mutates its arguments, and the only
// ambient state is the clock used to stamp snapshots (swappable in tests via
// [SetClock]).
package domain
