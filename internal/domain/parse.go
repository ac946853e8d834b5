package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrBadTimeLabel = errors.New("invalid time label")
	ErrBadDayLabel  = errors.New("invalid day label")
)

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
	"sun": time.Sunday,
}

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	time12Re   = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*(am|pm)$`)
	dayLabelRe = regexp.MustCompile(`(?i)^([a-z]{3,9})\.?\s+(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]{3,9})\.?$`)
)

// ParseTime12 converts a 12-hour schedule time label like "7:00am" into the
// zero-padded 24-hour form "07:00". Noon is 12:00 and midnight 00:00.
func ParseTime12(label string) (string, error) {
	m := time12Re.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrBadTimeLabel, label)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	if h < 1 || h > 12 || min > 59 {
		return "", fmt.Errorf("%w: %q", ErrBadTimeLabel, label)
	}
	pm := strings.EqualFold(m[3], "pm")
	if h == 12 {
		h = 0
	}
	if pm {
		h += 12
	}
	return fmt.Sprintf("%02d:%02d", h, min), nil
}

// DayLabel is a parsed schedule day header like "Thu 11th Sep".
type DayLabel struct {
	Weekday time.Weekday
	Day     int
	Month   time.Month
}

// ParseDayLabel parses a day header of the form "<Weekday> <day><suffix>
// <Month>". Weekday and month accept full or abbreviated English names.
func ParseDayLabel(label string) (DayLabel, error) {
	m := dayLabelRe.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return DayLabel{}, fmt.Errorf("%w: %q", ErrBadDayLabel, label)
	}
	wd, ok := weekdayNames[strings.ToLower(m[1])[:3]]
	if !ok {
		return DayLabel{}, fmt.Errorf("%w: unknown weekday in %q", ErrBadDayLabel, label)
	}
	day, _ := strconv.Atoi(m[2])
	if day < 1 || day > 31 {
		return DayLabel{}, fmt.Errorf("%w: day out of range in %q", ErrBadDayLabel, label)
	}
	mon, ok := monthNames[strings.ToLower(m[3])[:3]]
	if !ok {
		return DayLabel{}, fmt.Errorf("%w: unknown month in %q", ErrBadDayLabel, label)
	}
	return DayLabel{Weekday: wd, Day: day, Month: mon}, nil
}

// ResolveDate turns a parsed day label into an ISO date using the week's own
// Monday as the year/month context. The page is organized by week, so the
// label is first matched against the seven days of the anchored week; that
// handles a week spanning a year boundary without guessing from "today".
func ResolveDate(label DayLabel, weekMonday time.Time) string {
	monday := Midnight(weekMonday)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		if d.Day() == label.Day && d.Month() == label.Month {
			return d.Format("2006-01-02")
		}
	}
	// Label outside the anchored week; fall back to the anchor's year.
	return time.Date(monday.Year(), label.Month, label.Day, 0, 0, 0, 0, monday.Location()).Format("2006-01-02")
}

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekMonday returns the Monday of the ISO week containing t.
func WeekMonday(t time.Time) time.Time {
	d := Midnight(t)
	return d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
}

// MondayAnchors lists the distinct week Mondays needed to cover
// [start, start+days] inclusive, in chronological order.
func MondayAnchors(start time.Time, days int) []time.Time {
	if days < 0 {
		days = 0
	}
	first := WeekMonday(start)
	last := WeekMonday(Midnight(start).AddDate(0, 0, days))
	var anchors []time.Time
	for m := first; !m.After(last); m = m.AddDate(0, 0, 7) {
		anchors = append(anchors, m)
	}
	return anchors
}
