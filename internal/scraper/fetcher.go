package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// ErrFetchExhausted is returned once every fetch attempt for a week has
// failed and no fallback is configured.
var ErrFetchExhausted = errors.New("schedule fetch attempts exhausted")

// FetchResult carries one week's raw schedule page. Degraded marks pages
// substituted from the embedded fixture after a fetch failure; callers must
// be able to tell real data from the synthetic stand-in.
type FetchResult struct {
	HTML     []byte
	Degraded bool
}

// FetcherConfig bounds the retry loop.
type FetcherConfig struct {
	BaseURL     string        // schedule page URL; week selected via query param
	Timeout     time.Duration // per-attempt request timeout
	Attempts    int           // total attempts before giving up
	BackoffBase time.Duration // initial retry interval
	MinBodyLen  int           // bodies shorter than this are treated as failures
	Fallback    bool          // serve the embedded fixture on exhaustion
}

// Fetcher retrieves one HTML page per calendar week with bounded retries
// and exponential backoff. It keeps no state between calls beyond the
// shared HTTP client.
type Fetcher struct {
	cfg     FetcherConfig
	client  *http.Client
	fixture []byte
	log     *zap.Logger
}

// NewFetcher creates a Fetcher. fixture may be nil when fallback mode is
// disabled.
func NewFetcher(cfg FetcherConfig, fixture []byte, log *zap.Logger) *Fetcher {
	if cfg.Attempts < 1 {
		cfg.Attempts = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 2 * time.Second
	}
	return &Fetcher{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		fixture: fixture,
		log:     log,
	}
}

// Fetch retrieves the schedule page for the week anchored at weekMonday.
// Each attempt validates the HTTP status and a minimum body length; the
// target page is large, so a suspiciously short response means a block page
// or an outage, not a schedule. On exhaustion the embedded fixture is
// substituted when fallback mode is on, with Degraded set and a warning
// logged so the outage stays observable.
func (f *Fetcher) Fetch(ctx context.Context, weekMonday time.Time) (*FetchResult, error) {
	u := fmt.Sprintf("%s?week=%s", f.cfg.BaseURL, weekMonday.Format("2006-01-02"))

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.cfg.BackoffBase

	attempt := 0
	body, err := backoff.RetryWithData(func() ([]byte, error) {
		attempt++
		b, err := f.attempt(ctx, u)
		if err != nil {
			f.log.Warn("schedule fetch attempt failed",
				zap.String("url", u),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return b, err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(f.cfg.Attempts-1)), ctx))
	if err == nil {
		return &FetchResult{HTML: body}, nil
	}

	if f.cfg.Fallback && len(f.fixture) > 0 {
		f.log.Warn("serving fallback schedule fixture",
			zap.String("url", u),
			zap.Int("attempts", attempt),
			zap.Error(err),
		)
		return &FetchResult{HTML: renderFixture(f.fixture, weekMonday), Degraded: true}, nil
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrFetchExhausted, attempt, err)
}

// renderFixture stamps the fixture's {{DAYn}} day-header placeholders with
// the real dates of the requested week (n counting from Monday). Fallback
// sessions then resolve inside the window being fetched instead of on the
// fixture's authoring date.
func renderFixture(fixture []byte, weekMonday time.Time) []byte {
	page := string(fixture)
	for i := 0; i < 7; i++ {
		day := weekMonday.AddDate(0, 0, i)
		label := fmt.Sprintf("%s %d%s %s",
			day.Format("Mon"), day.Day(), ordinalSuffix(day.Day()), day.Format("Jan"))
		page = strings.ReplaceAll(page, fmt.Sprintf("{{DAY%d}}", i), label)
	}
	return []byte(page)
}

// ordinalSuffix returns the English ordinal suffix for a day of month.
func ordinalSuffix(n int) string {
	switch {
	case n%100 >= 11 && n%100 <= 13:
		return "th"
	case n%10 == 1:
		return "st"
	case n%10 == 2:
		return "nd"
	case n%10 == 3:
		return "rd"
	}
	return "th"
}

func (f *Fetcher) attempt(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", "waveping-schedule-bot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("response status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(body) < f.cfg.MinBodyLen {
		return nil, fmt.Errorf("response body too short (%d bytes)", len(body))
	}
	return body, nil
}
