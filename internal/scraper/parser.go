package scraper

// Parse scans the lexed line stream and emits one RawEntry per recognized
// session slot. It is a forward-only state machine: the active day header
// and time header are carried along, and within a time block each line is
// consumed as either a name+availability pair (two lines), a combined
// name-and-availability line, or noise. Malformed lines never abort the
// scan; they simply emit nothing.
//
// A stream with no calendar marker anywhere yields a nil result: an
// unrecognized page is "no data", and the caller decides whether zero
// sessions is itself an error.
func Parse(lines []string) []RawEntry {
	start := -1
	for i, line := range lines {
		if hasCalendarMarker(line) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	var (
		entries  []RawEntry
		day, tod string
	)
	for i := start; i < len(lines); i++ {
		line := lines[i]

		if label, ok := matchDayHeader(line); ok {
			day, tod = label, ""
			continue
		}
		if i+1 < len(lines) {
			if label, ok := matchSplitDayHeader(line, lines[i+1]); ok {
				day, tod = label, ""
				i++
				continue
			}
		}
		if label, ok := matchTimeHeader(line); ok {
			tod = label
			continue
		}
		if day == "" || tod == "" {
			continue
		}

		// Inside a time block: try the two-line form first, then the
		// combined single-line form. Anything else is skipped.
		if i+1 < len(lines) {
			if avail, ok := matchAvailability(lines[i+1]); ok && !isHeaderLine(line) {
				entries = append(entries, RawEntry{DayLabel: day, TimeLabel: tod, Name: line, Availability: avail})
				i++
				continue
			}
		}
		if name, avail, ok := splitInlineEntry(line); ok {
			entries = append(entries, RawEntry{DayLabel: day, TimeLabel: tod, Name: name, Availability: avail})
		}
	}
	return entries
}

// isHeaderLine guards the two-line entry form against consuming a day or
// time header as a session name.
func isHeaderLine(line string) bool {
	if _, ok := matchDayHeader(line); ok {
		return true
	}
	if _, ok := matchTimeHeader(line); ok {
		return true
	}
	if _, ok := matchAvailability(line); ok {
		return true
	}
	return weekdayOnlyRe.MatchString(line)
}
