package domain

import "time"

// TimeWindow is a half-open [Start, End) range of 24-hour times.
type TimeWindow struct {
	Start string // HH:MM inclusive
	End   string // HH:MM exclusive
}

// Contains reports whether the zero-padded 24h time falls inside the window.
func (w TimeWindow) Contains(time24 string) bool {
	return time24 >= w.Start && time24 < w.End
}

// ConstraintSet is a user's stored filtering preferences. An empty dimension
// means "no restriction on this dimension", never "match nothing".
type ConstraintSet struct {
	Levels      []Level
	Sides       []Side
	Days        []int // day of week, Monday = 0
	TimeWindows []TimeWindow
	MinSpots    int
	Offsets     []TimingOffset
}

// WantsOffset reports whether the user subscribed to the given lead time.
func (c ConstraintSet) WantsOffset(o TimingOffset) bool {
	for _, have := range c.Offsets {
		if have == o {
			return true
		}
	}
	return false
}

// User represents one Telegram chat's notification subscription.
type User struct {
	ChatID      int64
	Enabled     bool
	Constraints ConstraintSet
	CreatedAt   time.Time
}
