package config

import (
	"time"

	"github.com/tuanvumaihuynh/bipagem/internal/model"
)

type SheetFeed struct {
	// URL of a published sheet export (csv or xlsx). Empty disables the feed.
	URL   string         `env:"SHEET_FEED_URL"`
	Store string         `env:"SHEET_FEED_STORE"`
	Mode  model.LoadMode `env:"SHEET_FEED_MODE" envDefault:"replace"`
	// Interval between automatic syncs; zero means manual sync only.
	Interval time.Duration `env:"SHEET_FEED_INTERVAL" envDefault:"0s"`
	Timeout  time.Duration `env:"SHEET_FEED_TIMEOUT" envDefault:"30s"`
	// MinGap is the minimum time between two fetches of the feed.
	MinGap time.Duration `env:"SHEET_FEED_MIN_GAP" envDefault:"10s"`
}

func (s SheetFeed) Enabled() bool {
	return s.URL != ""
}
