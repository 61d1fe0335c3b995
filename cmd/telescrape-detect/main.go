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

	detectmod "telescrape/internal/services/detect/module"
	detectrepo "telescrape/internal/services/detect/repo"
)

func main() {
	file := flag.String("file", "", "detection CSV file (default detection_results.csv)")
	flag.Parse()
	if *file != "" {
		_ = os.Setenv("CORE_DETECT_FILE", *file)
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
	if err := detectrepo.EnsureSchema(ctx, st.PG); err != nil {
		l.Panic().Err(err).Msg("ensure detection schema failed")
	}

	deps := modkit.Deps{Log: *l, Cfg: root, PG: st.PG}
	dm := detectmod.New(deps)
	ports := dm.Ports().(detectmod.Ports)

	sum, err := ports.Runner.Run(ctx, dm.Options().File)
	if err != nil {
		l.Fatal().Err(err).Msg("detection load failed")
	}
	l.Info().
		Int("rows_in", sum.RowsIn).
		Int("dropped", sum.Dropped).
		Int("inserted", sum.Upsert.Inserted).
		Int("deduped", sum.Upsert.Deduped).
		Int("failed", sum.Upsert.Failed).
		Msg("detection load finished")
}
