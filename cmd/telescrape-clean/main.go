package main

import (
	"context"
	"flag"
	"os"

	"telescrape/internal/modkit"
	"telescrape/internal/modkit/repokit"
	"telescrape/internal/platform/config"
	"telescrape/internal/platform/logger"
	"telescrape/internal/platform/store"

	cleanmod "telescrape/internal/services/clean/module"
	cleanrepo "telescrape/internal/services/clean/repo"
)

func main() {
	glob := flag.String("data", "", "raw file glob (default data/*_data.csv)")
	flag.Parse()
	if *glob != "" {
		_ = os.Setenv("CORE_CLEAN_GLOB", *glob)
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

	ctx := context.Background()
	repokit.MustGuard(ctx, st)
	if err := cleanrepo.EnsureSchema(ctx, st.PG); err != nil {
		l.Panic().Err(err).Msg("ensure message schema failed")
	}

	deps := modkit.Deps{Log: *l, Cfg: root, PG: st.PG}
	cm := cleanmod.New(deps)
	ports := cm.Ports().(cleanmod.Ports)

	sum, err := ports.Runner.Run(ctx, cm.Options().Glob)
	if err != nil {
		l.Fatal().Err(err).Msg("clean run failed")
	}
	l.Info().
		Int("files", sum.Files).
		Int("rows", sum.Rows).
		Int("inserted", sum.Upsert.Inserted).
		Int("deduped", sum.Upsert.Deduped).
		Int("failed", sum.Upsert.Failed).
		Msg("clean run finished")
}
