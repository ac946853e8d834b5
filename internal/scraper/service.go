package scraper

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/CKPleiser/WavePing-sub000/internal/domain"
)

// NoSessionsForDateError reports a day-specific query that found nothing
// while the surrounding week did parse. That asymmetry usually means the
// source page changed shape rather than a genuinely empty day, so the labels
// actually seen are carried for diagnostics.
type NoSessionsForDateError struct {
	Date       string
	SeenLabels []string
}

func (e *NoSessionsForDateError) Error() string {
	return fmt.Sprintf("no sessions found for %s; available labels were: %s",
		e.Date, strings.Join(e.SeenLabels, ", "))
}

// Service fans schedule extraction out across the weeks covering a query
// window and merges the results. Weeks are independent, so they are fetched
// concurrently.
type Service struct {
	fetcher    *Fetcher
	bookingURL string
	log        *zap.Logger
	now        func() time.Time
}

// NewService wires a schedule extraction pipeline. now is injectable for
// tests; pass nil for the wall clock.
func NewService(fetcher *Fetcher, bookingURL string, log *zap.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{fetcher: fetcher, bookingURL: bookingURL, log: log, now: now}
}

// weekSessions runs fetch → lex → parse → build for one Monday-anchored week.
func (s *Service) weekSessions(ctx context.Context, monday time.Time) ([]domain.Session, error) {
	res, err := s.fetcher.Fetch(ctx, monday)
	if err != nil {
		return nil, err
	}
	if res.Degraded {
		s.log.Warn("week served from fallback fixture", zap.String("week", monday.Format("2006-01-02")))
	}
	lines, err := Lex(res.HTML)
	if err != nil {
		return nil, fmt.Errorf("week %s: %w", monday.Format("2006-01-02"), err)
	}
	return BuildSessions(Parse(lines), monday, s.bookingURL), nil
}

// SessionsInRange returns every session within [start, start+days]
// inclusive, in chronological order and free of duplicates.
func (s *Service) SessionsInRange(ctx context.Context, days int, start time.Time) ([]domain.Session, error) {
	anchors := domain.MondayAnchors(start, days)

	var (
		mu     sync.Mutex
		merged []domain.Session
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, monday := range anchors {
		monday := monday
		g.Go(func() error {
			sessions, err := s.weekSessions(gctx, monday)
			if err != nil {
				return err
			}
			mu.Lock()
			merged = append(merged, sessions...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	from := domain.Midnight(start).Format("2006-01-02")
	to := domain.Midnight(start).AddDate(0, 0, days).Format("2006-01-02")
	inWindow := merged[:0]
	for _, sess := range merged {
		if sess.DateISO >= from && sess.DateISO <= to {
			inWindow = append(inWindow, sess)
		}
	}
	return domain.DedupeSessions(inWindow), nil
}

// SessionsForDate returns the sessions on one calendar day. When the day is
// empty but the rest of its week parsed entries, the query fails with a
// NoSessionsForDateError listing the day labels that were seen; that
// distinguishes "genuinely no sessions" from a parser regression.
func (s *Service) SessionsForDate(ctx context.Context, date time.Time) ([]domain.Session, error) {
	monday := domain.WeekMonday(date)
	week, err := s.weekSessions(ctx, monday)
	if err != nil {
		return nil, err
	}

	target := domain.Midnight(date).Format("2006-01-02")
	var matched []domain.Session
	for _, sess := range week {
		if sess.DateISO == target {
			matched = append(matched, sess)
		}
	}
	if len(matched) == 0 && len(week) > 0 {
		return nil, &NoSessionsForDateError{Date: target, SeenLabels: seenDates(week)}
	}
	return matched, nil
}

// TodaysSessions is the zero-day specialization of SessionsForDate.
func (s *Service) TodaysSessions(ctx context.Context) ([]domain.Session, error) {
	return s.SessionsForDate(ctx, s.now())
}

// TomorrowsSessions is the one-day-offset specialization of SessionsForDate.
func (s *Service) TomorrowsSessions(ctx context.Context) ([]domain.Session, error) {
	return s.SessionsForDate(ctx, s.now().AddDate(0, 0, 1))
}

func seenDates(sessions []domain.Session) []string {
	set := map[string]struct{}{}
	for _, s := range sessions {
		set[s.DateISO] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
