package dispatch

import "sort"

// Palette is the fixed, ordered marker palette. Colors are assigned by
// sorted identifier rank modulo the palette size, so the order here matters.
var Palette = []string{
	"#27AE60", // green
	"#2F80ED", // blue
	"#F2C94C", // yellow
	"#EB5757", // red
	"#9B51E0", // purple
	"#F2994A", // orange
	"#2D9CDB", // sky
	"#219653", // forest
	"#BB6BD9", // violet
	"#56CCF2", // cyan
}

// AssignColors maps every currently-known liner and collector identifier to
// a color from the default palette.
func AssignColors(linerIDs, collectorIDs []string) map[string]string {
	return AssignPalette(Palette, linerIDs, collectorIDs)
}

// AssignPalette unions the given identifier sets, drops empties, sorts
// ascending and assigns palette[rank % len(palette)]. The mapping is a pure
// function of the identifier set, not of insertion order: re-running it on
// the same set is idempotent, while a membership change may recolor every
// identifier.
func AssignPalette(palette []string, idSets ...[]string) map[string]string {
	if len(palette) == 0 {
		return map[string]string{}
	}

	seen := make(map[string]bool)
	var ids []string
	for _, set := range idSets {
		for _, id := range set {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	colors := make(map[string]string, len(ids))
	for rank, id := range ids {
		colors[id] = palette[rank%len(palette)]
	}
	return colors
}
