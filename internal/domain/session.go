package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Level is the ability band a session is aimed at.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelImprover     Level = "improver"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelExpert       Level = "expert"
)

// Side is the lake side a session runs on.
type Side string

const (
	SideLeft  Side = "Left"
	SideRight Side = "Right"
	SideAny   Side = "Any"
)

// TimingOffset is a lead time before a session start at which users may be
// notified.
type TimingOffset string

const (
	Offset1Week TimingOffset = "1w"
	Offset48h   TimingOffset = "48h"
	Offset24h   TimingOffset = "24h"
	Offset12h   TimingOffset = "12h"
	Offset2h    TimingOffset = "2h"
)

// AllOffsets lists every supported timing offset, largest lead time first.
var AllOffsets = []TimingOffset{Offset1Week, Offset48h, Offset24h, Offset12h, Offset2h}

// Duration converts the offset into a concrete lead time.
func (o TimingOffset) Duration() time.Duration {
	switch o {
	case Offset1Week:
		return 7 * 24 * time.Hour
	case Offset48h:
		return 48 * time.Hour
	case Offset24h:
		return 24 * time.Hour
	case Offset12h:
		return 12 * time.Hour
	case Offset2h:
		return 2 * time.Hour
	}
	return 0
}

// ParseOffset validates a stored offset string.
func ParseOffset(s string) (TimingOffset, error) {
	o := TimingOffset(s)
	for _, known := range AllOffsets {
		if o == known {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown timing offset %q", s)
}

// Session is one bookable surf slot at a fixed date and time.
type Session struct {
	DateISO    string // YYYY-MM-DD
	Time24     string // HH:MM, zero padded
	Name       string // as displayed on the schedule page
	Level      Level
	Side       Side
	Spots      int
	BookingURL string
}

// ID is the identity key used for deduplication and as the stable primary
// key in the sessions table.
func (s Session) ID() string {
	return s.DateISO + "|" + s.Time24 + "|" + s.Name
}

// IsFull reports whether the session has no bookable spots left.
func (s Session) IsFull() bool {
	return s.Spots == 0
}

// StartsAt resolves the session start as a wall-clock instant in loc.
func (s Session) StartsAt(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", s.DateISO+" "+s.Time24, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("session %s: %w", s.ID(), err)
	}
	return t, nil
}

// DayIndex returns the session's day of week with Monday as 0, or -1 when
// the date does not parse.
func (s Session) DayIndex() int {
	t, err := time.Parse("2006-01-02", s.DateISO)
	if err != nil {
		return -1
	}
	return (int(t.Weekday()) + 6) % 7
}

// DedupeSessions collapses sessions sharing an identity key, keeping the
// first occurrence, and returns the result sorted by date then time. The
// zero-padded ISO/24h representations make plain string comparison exact.
func DedupeSessions(in []Session) []Session {
	seen := make(map[string]struct{}, len(in))
	out := make([]Session, 0, len(in))
	for _, s := range in {
		key := s.ID()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DateISO != out[j].DateISO {
			return out[i].DateISO < out[j].DateISO
		}
		return out[i].Time24 < out[j].Time24
	})
	return out
}

// ParseAvailability maps a schedule availability label to a spot count.
// "Fully Booked" means zero; anything unparsable is also treated as full
// rather than propagating a negative or bogus count.
func ParseAvailability(s string) int {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "Fully Booked") {
		return 0
	}
	var n int
	var unit string
	if _, err := fmt.Sscanf(s, "%d %s", &n, &unit); err != nil {
		return 0
	}
	if n < 0 || !strings.HasPrefix(strings.ToLower(unit), "space") {
		return 0
	}
	return n
}
