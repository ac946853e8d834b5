package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testFetcher(t *testing.T, url string, attempts int, fallback bool, fixture []byte) *Fetcher {
	t.Helper()
	return NewFetcher(FetcherConfig{
		BaseURL:     url,
		Timeout:     2 * time.Second,
		Attempts:    attempts,
		BackoffBase: time.Millisecond,
		MinBodyLen:  10,
		Fallback:    fallback,
	}, fixture, zap.NewNop())
}

func TestFetcher_RetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(strings.Repeat("<p>lake schedule</p>", 5)))
	}))
	defer srv.Close()

	f := testFetcher(t, srv.URL, 4, false, nil)
	res, err := f.Fetch(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Degraded {
		t.Error("successful fetch should not be degraded")
	}
	if calls != 3 {
		t.Errorf("server saw %d calls, want 3", calls)
	}
}

func TestFetcher_ShortBodyIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tiny"))
	}))
	defer srv.Close()

	f := testFetcher(t, srv.URL, 2, false, nil)
	_, err := f.Fetch(context.Background(), time.Now())
	if !errors.Is(err, ErrFetchExhausted) {
		t.Fatalf("err = %v, want ErrFetchExhausted", err)
	}
}

func TestFetcher_ExhaustedWithoutFallback(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := testFetcher(t, srv.URL, 3, false, nil)
	_, err := f.Fetch(context.Background(), time.Now())
	if !errors.Is(err, ErrFetchExhausted) {
		t.Fatalf("err = %v, want ErrFetchExhausted", err)
	}
	if calls != 3 {
		t.Errorf("server saw %d calls, want 3", calls)
	}
}

func TestFetcher_FallbackFixture(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	fixture := []byte("<html><body><h1>lake schedule</h1><h2>{{DAY0}}</h2><h2>{{DAY5}}</h2></body></html>")
	f := testFetcher(t, srv.URL, 2, true, fixture)
	monday := time.Date(2024, time.September, 9, 0, 0, 0, 0, time.UTC)
	res, err := f.Fetch(context.Background(), monday)
	if err != nil {
		t.Fatalf("Fetch with fallback: %v", err)
	}
	if !res.Degraded {
		t.Error("fallback result must be marked degraded")
	}
	// Placeholders are stamped with the requested week's dates.
	html := string(res.HTML)
	for _, want := range []string{"Mon 9th Sep", "Sat 14th Sep"} {
		if !strings.Contains(html, want) {
			t.Errorf("fixture missing %q: %s", want, html)
		}
	}
	if strings.Contains(html, "{{DAY") {
		t.Errorf("unrendered placeholder remains: %s", html)
	}
}

func TestFetcher_WeekQueryParam(t *testing.T) {
	var gotWeek string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotWeek = r.URL.Query().Get("week")
		_, _ = w.Write([]byte(strings.Repeat("<p>lake schedule</p>", 5)))
	}))
	defer srv.Close()

	f := testFetcher(t, srv.URL, 1, false, nil)
	monday := time.Date(2024, time.September, 9, 0, 0, 0, 0, time.UTC)
	if _, err := f.Fetch(context.Background(), monday); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotWeek != "2024-09-09" {
		t.Errorf("week param = %q, want 2024-09-09", gotWeek)
	}
}
