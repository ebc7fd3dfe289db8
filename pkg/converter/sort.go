package converter

import (
	"sort"
	"strings"
)

// SortBy selects the display ordering of voice results. This is a pure
// view transform for presentation layers; it never feeds back into
// generation, and the engine's own order stays melody-first.
type SortBy string

const (
	SortDefault    SortBy = "default"
	SortName       SortBy = "name"
	SortInstrument SortBy = "instrument"
)

// instrumentOf extracts the parenthesized instrument qualifier from a
// voice name, empty for unqualified names.
func instrumentOf(name string) string {
	open := strings.LastIndex(name, "(")
	end := strings.LastIndex(name, ")")
	if open < 0 || end < open {
		return ""
	}
	return name[open+1 : end]
}

// SortVoices returns a copy of results in the requested display order.
// The input slice is never modified.
func SortVoices(results []VoiceResult, by SortBy) []VoiceResult {
	sorted := make([]VoiceResult, len(results))
	copy(sorted, results)

	switch by {
	case SortName:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Name < sorted[j].Name
		})
	case SortInstrument:
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := instrumentOf(sorted[i].Name), instrumentOf(sorted[j].Name)
			if a != b {
				return a < b
			}
			return sorted[i].Name < sorted[j].Name
		})
	}
	return sorted
}
