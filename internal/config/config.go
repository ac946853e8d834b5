package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath   string `envconfig:"DB_PATH" default:"./data/waveping.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	Timezone string `envconfig:"TIMEZONE" default:"Europe/London"` // the lake's local time

	// Schedule extraction.
	ScheduleURL      string        `envconfig:"SCHEDULE_URL" default:"https://www.thewave.com/lake-schedule/"`
	BookingURL       string        `envconfig:"BOOKING_URL" default:"https://bookings.thewave.com/"`
	FetchTimeout     time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s"`
	FetchAttempts    int           `envconfig:"FETCH_ATTEMPTS" default:"4"`
	FetchBackoffBase time.Duration `envconfig:"FETCH_BACKOFF_BASE" default:"2s"`
	MinBodyBytes     int           `envconfig:"MIN_BODY_BYTES" default:"2048"`
	// Serve the embedded fixture instead of failing when every fetch
	// attempt is exhausted. Degraded mode is logged on every affected
	// cycle; default off so outages surface.
	FallbackEnabled bool `envconfig:"SCRAPER_FALLBACK" default:"false"`
	ScrapeDays      int  `envconfig:"SCRAPE_DAYS" default:"14"`

	// Cron cadences (robfig/cron syntax).
	ScrapeCron string `envconfig:"SCRAPE_CRON" default:"13 * * * *"`
	NotifyCron string `envconfig:"NOTIFY_CRON" default:"*/15 * * * *"`

	// Telegram send pacing, messages per second.
	SendRate float64 `envconfig:"SEND_RATE" default:"20"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
