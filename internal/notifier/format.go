package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/CKPleiser/WavePing-sub000/internal/domain"
)

var offsetPhrases = map[domain.TimingOffset]string{
	domain.Offset1Week: "in one week",
	domain.Offset48h:   "in 48 hours",
	domain.Offset24h:   "in 24 hours",
	domain.Offset12h:   "in 12 hours",
	domain.Offset2h:    "in 2 hours",
}

// FormatAlert renders the notification text for one session alert.
func FormatAlert(s domain.Session, offset domain.TimingOffset, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌊 %s\n", s.Name)

	if start, err := s.StartsAt(loc); err == nil {
		fmt.Fprintf(&b, "%s at %s", start.Format("Mon 2 Jan"), s.Time24)
	} else {
		fmt.Fprintf(&b, "%s at %s", s.DateISO, s.Time24)
	}

	phrase := offsetPhrases[offset]
	if phrase == "" {
		phrase = "soon"
	}
	fmt.Fprintf(&b, ", starts %s\n", phrase)

	if s.Spots == 1 {
		b.WriteString("1 spot left")
	} else {
		fmt.Fprintf(&b, "%d spots left", s.Spots)
	}
	if s.BookingURL != "" {
		b.WriteString("\n")
		b.WriteString(s.BookingURL)
	}
	return b.String()
}
