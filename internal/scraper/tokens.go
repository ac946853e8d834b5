package scraper

import (
	"regexp"
	"strings"
)

// RawEntry is one (day, time, name, availability) tuple as it appears in the
// line stream. No date arithmetic or classification happens at this stage;
// that is the builder's job.
type RawEntry struct {
	DayLabel     string // e.g. "Thu 11th Sep"
	TimeLabel    string // e.g. "7:00am"
	Name         string
	Availability string // "8 spaces" or "Fully Booked"
}

// calendarMarker is the text the schedule page always carries. A page
// without it is treated as "no data", not as an error.
const calendarMarker = "lake schedule"

var (
	dayHeaderRe    = regexp.MustCompile(`(?i)^(mon|tue|wed|thu|fri|sat|sun)[a-z]*\.?\s+\d{1,2}(st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?$`)
	weekdayOnlyRe  = regexp.MustCompile(`(?i)^(mon|tue|wed|thu|fri|sat|sun)[a-z]*\.?$`)
	dayRemainderRe = regexp.MustCompile(`(?i)^\d{1,2}(st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?$`)
	timeHeaderRe   = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}\s*(am|pm)$`)
	availabilityRe = regexp.MustCompile(`(?i)^(\d+\s+spaces?|fully booked)$`)
	// availability appearing at the end of a combined name+availability line
	trailingAvailRe = regexp.MustCompile(`(?i)^(.*\S)\s+(\d+\s+spaces?|fully booked)$`)
)

func hasCalendarMarker(line string) bool {
	return strings.Contains(strings.ToLower(line), calendarMarker)
}

// matchDayHeader recognizes a whole-line day header like "Thu 11th Sep".
func matchDayHeader(line string) (string, bool) {
	if dayHeaderRe.MatchString(line) {
		return line, true
	}
	return "", false
}

// matchSplitDayHeader recognizes a day header split across two consecutive
// lines ("Thu" then "11th Sep") and recombines it.
func matchSplitDayHeader(first, second string) (string, bool) {
	if !weekdayOnlyRe.MatchString(first) || !dayRemainderRe.MatchString(second) {
		return "", false
	}
	return first + " " + second, true
}

// matchTimeHeader recognizes a 12-hour time header like "7:00am".
func matchTimeHeader(line string) (string, bool) {
	if timeHeaderRe.MatchString(line) {
		return line, true
	}
	return "", false
}

// matchAvailability recognizes a whole-line availability label.
func matchAvailability(line string) (string, bool) {
	if availabilityRe.MatchString(line) {
		return line, true
	}
	return "", false
}

// splitInlineEntry recognizes a single line carrying both a session name and
// its availability ("Expert Barrels (L) 8 spaces") and splits them.
func splitInlineEntry(line string) (name, availability string, ok bool) {
	m := trailingAvailRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), m[2], true
}
