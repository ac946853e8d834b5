package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/CKPleiser/WavePing-sub000/assets"
	"github.com/CKPleiser/WavePing-sub000/internal/config"
	"github.com/CKPleiser/WavePing-sub000/internal/notifier"
	"github.com/CKPleiser/WavePing-sub000/internal/scraper"
	"github.com/CKPleiser/WavePing-sub000/internal/store"
	"github.com/CKPleiser/WavePing-sub000/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	scraper *scraper.Service
	wind    *notifier.Windower
	loc     *time.Location
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv, loc: loc}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting waveping",
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("scrape_cron", a.cfg.ScrapeCron),
		zap.String("notify_cron", a.cfg.NotifyCron),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	fetcher := scraper.NewFetcher(scraper.FetcherConfig{
		BaseURL:     a.cfg.ScheduleURL,
		Timeout:     a.cfg.FetchTimeout,
		Attempts:    a.cfg.FetchAttempts,
		BackoffBase: a.cfg.FetchBackoffBase,
		MinBodyLen:  a.cfg.MinBodyBytes,
		Fallback:    a.cfg.FallbackEnabled,
	}, assets.FallbackSchedule, a.log)
	a.scraper = scraper.NewService(fetcher, a.cfg.BookingURL, a.log, nil)

	sender := telegram.NewSender(a.bot, a.log)
	limiter := rate.NewLimiter(rate.Limit(a.cfg.SendRate), 1)
	a.wind = notifier.New(repo, sender, a.log, limiter, nil, a.loc)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := cron.New()
	if _, err := sched.AddFunc(a.cfg.ScrapeCron, func() { a.refreshSessions(ctx) }); err != nil {
		return err
	}
	if _, err := sched.AddFunc(a.cfg.NotifyCron, func() {
		if err := a.wind.Run(ctx); err != nil {
			a.log.Error("windower run failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	sched.Start()

	// Prime the session table so the first notification window has data.
	go a.refreshSessions(ctx)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	<-sched.Stop().Done()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	if a.repo != nil {
		_ = a.repo.Close()
	}
	return nil
}

// refreshSessions runs one scrape cycle and persists the replacement set.
func (a *App) refreshSessions(ctx context.Context) {
	start := time.Now().In(a.loc)
	sessions, err := a.scraper.SessionsInRange(ctx, a.cfg.ScrapeDays, start)
	if err != nil {
		a.log.Error("schedule refresh failed", zap.Error(err))
		return
	}

	from := start.Format("2006-01-02")
	to := start.AddDate(0, 0, a.cfg.ScrapeDays).Format("2006-01-02")
	if err := a.repo.UpsertSessions(ctx, sessions, from, to); err != nil {
		a.log.Error("session upsert failed", zap.Error(err))
		return
	}
	a.log.Info("schedule refreshed",
		zap.Int("sessions", len(sessions)),
		zap.String("from", from),
		zap.String("to", to),
	)
}
