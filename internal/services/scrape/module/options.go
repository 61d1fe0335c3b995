package module

import (
	"telescrape/internal/platform/config"
)

// Options holds configuration options for the scrape service
type Options struct {
	Workers      int
	MediaWorkers int
	Limit        int
	DataDir      string
	MediaDir     string
	ChannelsFile string
}

// FromConfig reads the scrape options from config with CORE_SCRAPE_ prefix
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("CORE_SCRAPE_")
	return Options{
		Workers:      sc.MayInt("WORKERS", 4),
		MediaWorkers: sc.MayInt("MEDIA_WORKERS", 4),
		Limit:        sc.MayInt("LIMIT", 4000),
		DataDir:      sc.MayString("DATA_DIR", "data"),
		MediaDir:     sc.MayString("MEDIA_DIR", "photos"),
		ChannelsFile: sc.MayString("CHANNELS_FILE", "channels.json"),
	}
}
