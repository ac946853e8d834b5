package domain

import "testing"

// The classification heuristic is lossy by nature, so the keyword table is
// pinned exactly here: any change to the table must show up as a diff in
// these cases.
func TestClassifyLevel(t *testing.T) {
	for _, tc := range []struct {
		name string
		want Level
	}{
		{"Expert Barrels (L)", LevelExpert},
		{"Expert Turns", LevelExpert},
		{"The Expert Session", LevelExpert},
		{"Advanced Plus", LevelAdvanced},
		{"Advanced (R)", LevelAdvanced},
		{"Improver Session", LevelImprover},
		{"Intermediate Surf", LevelIntermediate},
		{"Beginner Lesson", LevelBeginner},
		{"Play in the Bay", LevelBeginner},
		{"Little Rippers", LevelBeginner},
		{"First Wave", LevelBeginner},
		{"Mystery Session", LevelIntermediate}, // unmatched defaults
		{"", LevelIntermediate},
	} {
		if got := ClassifyLevel(tc.name); got != tc.want {
			t.Errorf("ClassifyLevel(%q) = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestExtractSide(t *testing.T) {
	for _, tc := range []struct {
		name string
		want Side
	}{
		{"Expert Barrels (L)", SideLeft},
		{"Expert Barrels (R)", SideRight},
		{"Expert Barrels (l)", SideLeft},
		{"Expert Barrels (r)", SideRight},
		{"(L) Advanced", SideLeft},
		{"Advanced (L) Coaching", SideLeft},
		{"Beginner Lesson", SideAny},
		{"Left Handers", SideAny}, // only the bracketed marker counts
		{"", SideAny},
	} {
		if got := ExtractSide(tc.name); got != tc.want {
			t.Errorf("ExtractSide(%q) = %s, want %s", tc.name, got, tc.want)
		}
	}
}
