package structures

import (
	"slices"
	"strings"
)

// mergeStrings returns the sorted union of both lists without blanks or
// duplicates. It never aliases its inputs and returns nil when empty.
func mergeStrings(inherited, own []string) []string {
	if len(inherited) == 0 && len(own) == 0 {
		return nil
	}
	merged := make([]string, 0, len(inherited)+len(own))
	for _, s := range inherited {
		if s = strings.TrimSpace(s); s != "" {
			merged = append(merged, s)
		}
	}
	for _, s := range own {
		if s = strings.TrimSpace(s); s != "" {
			merged = append(merged, s)
		}
	}
	if len(merged) == 0 {
		return nil
	}
	slices.Sort(merged)
	return slices.Compact(merged)
}

// lineage returns the parent's lineage followed by the parent itself
func lineage(parentLineage []string, parentID string) []string {
	out := make([]string, 0, len(parentLineage)+1)
	out = append(out, parentLineage...)
	return append(out, parentID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// cloneStrings copies s, returning nil for an empty slice
func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}
