package domain

// FilterSessions returns the sessions matching every supplied constraint
// dimension. Dimensions are conjunctive and independently optional: an empty
// slice places no restriction. Side constraints containing SideAny pass
// every session. Day-of-week filtering only applies when skipDayFilter is
// false; "today"/"tomorrow" style queries already fix the day, so callers
// skip it there. Time windows are half-open [start, end); a session passes
// when it falls inside any of them.
//
// MinSpots is deliberately not applied here. Callers post-filter with
// FilterMinSpots so the spot threshold stays composable with the other
// dimensions.
func FilterSessions(sessions []Session, levels []Level, sides []Side, days []int, skipDayFilter bool, windows []TimeWindow) []Session {
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if !matchLevel(s, levels) {
			continue
		}
		if !matchSide(s, sides) {
			continue
		}
		if !skipDayFilter && !matchDay(s, days) {
			continue
		}
		if !matchWindow(s, windows) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FilterMinSpots keeps sessions with at least minSpots open places.
func FilterMinSpots(sessions []Session, minSpots int) []Session {
	if minSpots <= 0 {
		return sessions
	}
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Spots >= minSpots {
			out = append(out, s)
		}
	}
	return out
}

func matchLevel(s Session, levels []Level) bool {
	if len(levels) == 0 {
		return true
	}
	for _, l := range levels {
		if s.Level == l {
			return true
		}
	}
	return false
}

func matchSide(s Session, sides []Side) bool {
	if len(sides) == 0 {
		return true
	}
	for _, side := range sides {
		if side == SideAny || s.Side == side {
			return true
		}
	}
	return false
}

func matchDay(s Session, days []int) bool {
	if len(days) == 0 {
		return true
	}
	idx := s.DayIndex()
	for _, d := range days {
		if d == idx {
			return true
		}
	}
	return false
}

func matchWindow(s Session, windows []TimeWindow) bool {
	if len(windows) == 0 {
		return true
	}
	for _, w := range windows {
		if w.Contains(s.Time24) {
			return true
		}
	}
	return false
}
