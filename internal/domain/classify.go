package domain

import (
	"regexp"
	"strings"
)

// levelKeywords maps lowercased name fragments to levels. Order matters:
// the most specific pattern must win before a generic keyword swallows it
// ("expert barrels" before "expert", "advanced plus" before "advanced").
var levelKeywords = []struct {
	fragment string
	level    Level
}{
	{"expert barrels", LevelExpert},
	{"expert turns", LevelExpert},
	{"advanced plus", LevelAdvanced},
	{"expert", LevelExpert},
	{"advanced", LevelAdvanced},
	{"improver", LevelImprover},
	{"intermediate", LevelIntermediate},
	{"beginner", LevelBeginner},
	{"play in the bay", LevelBeginner},
	{"little rippers", LevelBeginner},
	{"first wave", LevelBeginner},
}

// ClassifyLevel derives an ability level from a session name. The schedule
// page carries no structured level field, so this is a keyword heuristic;
// unmatched names default to intermediate.
func ClassifyLevel(name string) Level {
	lower := strings.ToLower(name)
	for _, kw := range levelKeywords {
		if strings.Contains(lower, kw.fragment) {
			return kw.level
		}
	}
	return LevelIntermediate
}

var sideMarkerRe = regexp.MustCompile(`(?i)\((l|r)\)`)

// ExtractSide reads a "(L)" or "(R)" marker from a session name. The marker
// is case-insensitive and may appear anywhere in the string; sessions
// without one run on either side.
func ExtractSide(name string) Side {
	m := sideMarkerRe.FindStringSubmatch(name)
	if m == nil {
		return SideAny
	}
	if strings.EqualFold(m[1], "l") {
		return SideLeft
	}
	return SideRight
}
