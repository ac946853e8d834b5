package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/CKPleiser/WavePing-sub000/assets"
)

// weekPage renders a minimal schedule page for the given week anchor with
// sessions on Thursday and Friday.
func weekPage(monday time.Time) string {
	thu := monday.AddDate(0, 0, 3)
	fri := monday.AddDate(0, 0, 4)
	label := func(d time.Time) string {
		return fmt.Sprintf("%s %d%s %s", d.Format("Mon"), d.Day(), ordinalSuffix(d.Day()), d.Format("Jan"))
	}
	var b strings.Builder
	b.WriteString("<html><body><h1>Lake Schedule</h1>")
	fmt.Fprintf(&b, "<h2>%s</h2><h3>7:00am</h3><p>Expert Barrels (L)</p><p>8 spaces</p>", label(thu))
	fmt.Fprintf(&b, "<h2>%s</h2><h3>9:00am</h3><p>Beginner Lesson</p><p>Fully Booked</p>", label(fri))
	b.WriteString(strings.Repeat("<!-- pad -->", 10))
	b.WriteString("</body></html>")
	return b.String()
}

func testService(t *testing.T, handler http.HandlerFunc, now time.Time) (*Service, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	f := NewFetcher(FetcherConfig{
		BaseURL:     srv.URL,
		Timeout:     2 * time.Second,
		Attempts:    1,
		BackoffBase: time.Millisecond,
		MinBodyLen:  10,
	}, nil, zap.NewNop())
	svc := NewService(f, "https://example.com/book", zap.NewNop(), func() time.Time { return now })
	return svc, srv.Close
}

func scheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		monday, err := time.Parse("2006-01-02", r.URL.Query().Get("week"))
		if err != nil {
			http.Error(w, "bad week", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(weekPage(monday)))
	}
}

func TestService_SessionsInRange(t *testing.T) {
	start := time.Date(2024, time.September, 11, 0, 0, 0, 0, time.UTC) // Wednesday
	svc, done := testService(t, scheduleHandler(), start)
	defer done()

	// 10 days: spans two weeks, so two Thursdays and two Fridays.
	sessions, err := svc.SessionsInRange(context.Background(), 10, start)
	if err != nil {
		t.Fatalf("SessionsInRange: %v", err)
	}
	if len(sessions) != 4 {
		t.Fatalf("got %d sessions, want 4: %+v", len(sessions), sessions)
	}
	for i := 1; i < len(sessions); i++ {
		if sessions[i-1].DateISO > sessions[i].DateISO {
			t.Fatal("sessions not in chronological order")
		}
	}
	for _, s := range sessions {
		if s.DateISO < "2024-09-11" || s.DateISO > "2024-09-21" {
			t.Errorf("session %s outside requested window", s.DateISO)
		}
	}
}

func TestService_SessionsInRange_WindowTrimsEdges(t *testing.T) {
	// Saturday start: the week's Thursday/Friday sessions precede the
	// window and must be trimmed even though the page contains them.
	start := time.Date(2024, time.September, 14, 0, 0, 0, 0, time.UTC)
	svc, done := testService(t, scheduleHandler(), start)
	defer done()

	sessions, err := svc.SessionsInRange(context.Background(), 0, start)
	if err != nil {
		t.Fatalf("SessionsInRange: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("got %d sessions, want 0", len(sessions))
	}
}

func TestService_SessionsForDate(t *testing.T) {
	now := time.Date(2024, time.September, 12, 8, 0, 0, 0, time.UTC) // the Thursday
	svc, done := testService(t, scheduleHandler(), now)
	defer done()

	sessions, err := svc.TodaysSessions(context.Background())
	if err != nil {
		t.Fatalf("TodaysSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Name != "Expert Barrels (L)" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}

	sessions, err = svc.TomorrowsSessions(context.Background())
	if err != nil {
		t.Fatalf("TomorrowsSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Name != "Beginner Lesson" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}

func TestService_SessionsForDate_EmptyDayDiagnostics(t *testing.T) {
	// Monday has no sessions while the week does: callers get the labels
	// that were seen so they can tell a parser regression from a gap.
	now := time.Date(2024, time.September, 9, 8, 0, 0, 0, time.UTC)
	svc, done := testService(t, scheduleHandler(), now)
	defer done()

	_, err := svc.TodaysSessions(context.Background())
	var noSess *NoSessionsForDateError
	if !errors.As(err, &noSess) {
		t.Fatalf("err = %v, want NoSessionsForDateError", err)
	}
	if noSess.Date != "2024-09-09" {
		t.Errorf("Date = %q", noSess.Date)
	}
	if len(noSess.SeenLabels) != 2 {
		t.Errorf("SeenLabels = %v, want the two populated dates", noSess.SeenLabels)
	}
	if !strings.Contains(noSess.Error(), "available labels were") {
		t.Errorf("diagnostic message missing labels: %q", noSess.Error())
	}
}

func TestService_DegradedWeeksYieldInWindowSessions(t *testing.T) {
	// Source fully down: every week is served from the embedded fixture.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	start := time.Date(2024, time.September, 11, 0, 0, 0, 0, time.UTC) // Wednesday
	f := NewFetcher(FetcherConfig{
		BaseURL:     srv.URL,
		Timeout:     2 * time.Second,
		Attempts:    1,
		BackoffBase: time.Millisecond,
		MinBodyLen:  10,
		Fallback:    true,
	}, assets.FallbackSchedule, zap.NewNop())
	svc := NewService(f, "https://example.com/book", zap.NewNop(), func() time.Time { return start })

	// Six days spans two fixture weeks: the first week contributes its
	// Saturday, the second its Monday block.
	sessions, err := svc.SessionsInRange(context.Background(), 6, start)
	if err != nil {
		t.Fatalf("SessionsInRange during outage: %v", err)
	}
	if len(sessions) != 6 {
		t.Fatalf("got %d sessions, want 6: %+v", len(sessions), sessions)
	}
	for _, s := range sessions {
		if s.DateISO < "2024-09-11" || s.DateISO > "2024-09-17" {
			t.Errorf("fallback session %s outside requested window", s.DateISO)
		}
	}
}

func TestService_EmptyPageYieldsEmptyNotError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>nothing to see here, come back later</p></body></html>"))
	}
	now := time.Date(2024, time.September, 9, 8, 0, 0, 0, time.UTC)
	svc, done := testService(t, handler, now)
	defer done()

	sessions, err := svc.TodaysSessions(context.Background())
	if err != nil {
		t.Fatalf("unrecognized page must yield no data, not an error; got %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("got %d sessions, want 0", len(sessions))
	}
}
