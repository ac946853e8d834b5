package scraper

import (
	"testing"
	"time"

	"github.com/CKPleiser/WavePing-sub000/internal/domain"
)

var weekMonday = time.Date(2024, time.September, 9, 0, 0, 0, 0, time.UTC)

func TestBuildSession(t *testing.T) {
	raw := RawEntry{
		DayLabel:     "Thu 11th Sep",
		TimeLabel:    "7:00am",
		Name:         "Expert Barrels (L)",
		Availability: "8 spaces",
	}
	s, ok := BuildSession(raw, weekMonday, "https://example.com/book")
	if !ok {
		t.Fatal("expected session to build")
	}
	if s.DateISO != "2024-09-11" {
		t.Errorf("DateISO = %q, want 2024-09-11", s.DateISO)
	}
	if s.Time24 != "07:00" {
		t.Errorf("Time24 = %q, want 07:00", s.Time24)
	}
	if s.Side != domain.SideLeft {
		t.Errorf("Side = %q, want Left", s.Side)
	}
	if s.Level != domain.LevelExpert {
		t.Errorf("Level = %q, want expert", s.Level)
	}
	if s.Spots != 8 || s.IsFull() {
		t.Errorf("Spots = %d, IsFull = %t", s.Spots, s.IsFull())
	}
	if s.BookingURL != "https://example.com/book" {
		t.Errorf("BookingURL = %q", s.BookingURL)
	}
}

func TestBuildSession_Rejections(t *testing.T) {
	for _, tc := range []struct {
		name string
		raw  RawEntry
	}{
		{"short name", RawEntry{"Thu 11th Sep", "7:00am", "ab", "8 spaces"}},
		{"whitespace name", RawEntry{"Thu 11th Sep", "7:00am", "   ", "8 spaces"}},
		{"bad day label", RawEntry{"sometime", "7:00am", "Session", "8 spaces"}},
		{"bad time label", RawEntry{"Thu 11th Sep", "25:00xm", "Session", "8 spaces"}},
	} {
		if _, ok := BuildSession(tc.raw, weekMonday, ""); ok {
			t.Errorf("%s: expected rejection", tc.name)
		}
	}
}

func TestBuildSession_FullyBooked(t *testing.T) {
	raw := RawEntry{"Thu 11th Sep", "7:00am", "Improver Session", "Fully Booked"}
	s, ok := BuildSession(raw, weekMonday, "")
	if !ok {
		t.Fatal("expected session to build")
	}
	if s.Spots != 0 || !s.IsFull() {
		t.Errorf("Spots = %d, IsFull = %t; want 0, true", s.Spots, s.IsFull())
	}
}

func TestBuildSessions_DedupesAndSorts(t *testing.T) {
	raws := []RawEntry{
		{"Fri 13th Sep", "9:00am", "Advanced (R)", "3 spaces"},
		{"Thu 12th Sep", "7:00am", "Expert Barrels (L)", "8 spaces"},
		{"Thu 12th Sep", "7:00am", "Expert Barrels (L)", "2 spaces"}, // duplicate key
		{"Thu 12th Sep", "7:00am", "x", "1 space"},                  // rejected name
	}
	monday := time.Date(2024, time.September, 9, 0, 0, 0, 0, time.UTC)
	got := BuildSessions(raws, monday, "")
	if len(got) != 2 {
		t.Fatalf("got %d sessions, want 2", len(got))
	}
	if got[0].DateISO != "2024-09-12" || got[1].DateISO != "2024-09-13" {
		t.Fatalf("not sorted: %s then %s", got[0].DateISO, got[1].DateISO)
	}
	if got[0].Spots != 8 {
		t.Fatalf("dedupe kept later occurrence, spots = %d", got[0].Spots)
	}
}
