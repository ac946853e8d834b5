package scraper

import (
	"strings"
	"time"

	"github.com/CKPleiser/WavePing-sub000/internal/domain"
)

// minNameLen rejects stray fragments the parser occasionally pairs with an
// availability line.
const minNameLen = 3

// BuildSession converts one raw schedule tuple into a canonical Session,
// resolving the day label against the week's Monday anchor. It returns false
// for entries that are noise rather than sessions; malformed tuples are
// dropped here, never propagated as half-built records.
func BuildSession(raw RawEntry, weekMonday time.Time, bookingURL string) (domain.Session, bool) {
	name := strings.TrimSpace(raw.Name)
	if len(name) < minNameLen {
		return domain.Session{}, false
	}

	label, err := domain.ParseDayLabel(raw.DayLabel)
	if err != nil {
		return domain.Session{}, false
	}
	time24, err := domain.ParseTime12(raw.TimeLabel)
	if err != nil {
		return domain.Session{}, false
	}

	return domain.Session{
		DateISO:    domain.ResolveDate(label, weekMonday),
		Time24:     time24,
		Name:       name,
		Level:      domain.ClassifyLevel(name),
		Side:       domain.ExtractSide(name),
		Spots:      domain.ParseAvailability(raw.Availability),
		BookingURL: bookingURL,
	}, true
}

// BuildSessions maps BuildSession over a parsed week and returns the
// deduplicated, chronologically ordered result.
func BuildSessions(raws []RawEntry, weekMonday time.Time, bookingURL string) []domain.Session {
	sessions := make([]domain.Session, 0, len(raws))
	for _, raw := range raws {
		if s, ok := BuildSession(raw, weekMonday, bookingURL); ok {
			sessions = append(sessions, s)
		}
	}
	return domain.DedupeSessions(sessions)
}
