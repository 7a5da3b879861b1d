// ABOUTME: Deterministic domain/surface inference from decision text
// ABOUTME: Fixed keyword table, used only for conflict grouping, never persisted
package conflict

import "strings"

// kindTable maps text keywords to a (domain, surface) grouping key.
// First match in table order wins, so more specific phrases come first.
// Extending the table changes grouping only; nothing on disk moves.
var kindTable = []struct {
	keyword string
	domain  string
	surface string
}{
	{"floor tile", "bathroom.floor", "tile"},
	{"grout", "bathroom.floor", "grout"},
	{"heated floor", "bathroom.floor", "heating"},
	{"floor", "bathroom.floor", ""},
	{"shower glass", "bathroom.shower", "glass"},
	{"shower", "bathroom.shower", ""},
	{"vanity", "bathroom.vanity", ""},
	{"wall tile", "bathroom.wall", "tile"},
	{"wall", "bathroom.wall", ""},
	{"paint", "finish.paint", ""},
	{"lighting", "electrical.lighting", ""},
	{"budget", "project.budget", ""},
	{"timeline", "project.schedule", ""},
	{"schedule", "project.schedule", ""},
}

// inferKind derives a grouping key from free text when a decision row
// carries no domain. Deterministic: same text, same key.
func inferKind(text string) (domain, surface string) {
	lower := strings.ToLower(text)
	for _, entry := range kindTable {
		if strings.Contains(lower, entry.keyword) {
			return entry.domain, entry.surface
		}
	}
	return "", ""
}
