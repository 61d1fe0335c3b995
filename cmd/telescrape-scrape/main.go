package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/robfig/cron/v3"

	"telescrape/internal/modkit"
	"telescrape/internal/modkit/repokit"
	"telescrape/internal/platform/config"
	"telescrape/internal/platform/logger"
	"telescrape/internal/platform/store"

	scrapemod "telescrape/internal/services/scrape/module"
	scraperepo "telescrape/internal/services/scrape/repo"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func main() {
	var (
		channelsFile = flag.String("channels", "", "channels JSON file (default channels.json)")
		limit        = flag.Int("limit", 0, "max messages per channel per run")
		cronSpec     = flag.String("cron", "", "cron schedule; empty runs once and exits")
	)
	flag.Parse()

	mustSetEnv("CORE_SCRAPE_CHANNELS_FILE", *channelsFile)
	if *limit > 0 {
		mustSetEnv("CORE_SCRAPE_LIMIT", strconv.Itoa(*limit))
	}

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	logger.Init(logger.FromEnv())
	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		AppName: "telescrape",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	repokit.MustGuard(context.Background(), st)
	if err := scraperepo.EnsureSchema(context.Background(), st.PG); err != nil {
		l.Panic().Err(err).Msg("ensure cursor schema failed")
	}

	deps := modkit.Deps{Log: *l, Cfg: root, PG: st.PG}
	sm, err := scrapemod.New(deps)
	if err != nil {
		l.Panic().Err(err).Msg("scrape module init failed")
	}
	opts := sm.Options()
	ports := sm.Ports().(scrapemod.Ports)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runOnce := func() {
		cl, err := scrapemod.LoadChannels(opts.ChannelsFile)
		if err != nil {
			l.Error().Err(err).Msg("load channels failed")
			return
		}
		sum, err := ports.Runner.Run(ctx, cl.Channels, opts.Limit)
		if err != nil {
			l.Error().Err(err).Msg("scrape run failed")
			return
		}
		l.Info().
			Int("channels", sum.Channels).
			Int("skipped", sum.SkippedChannels).
			Int("messages", sum.Messages).
			Int("media_errors", sum.MediaErrors).
			Msg("scrape run finished")
	}

	if *cronSpec == "" {
		runOnce()
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(*cronSpec, runOnce); err != nil {
		l.Panic().Err(err).Str("cron", *cronSpec).Msg("bad cron spec")
	}
	l.Info().Str("cron", *cronSpec).Msg("scrape scheduler started")
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
}
