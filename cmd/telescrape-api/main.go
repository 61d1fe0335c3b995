package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"telescrape/internal/modkit"
	"telescrape/internal/modkit/repokit"
	"telescrape/internal/platform/config"
	"telescrape/internal/platform/logger"
	phttp "telescrape/internal/platform/net/http"
	"telescrape/internal/platform/net/middleware"
	"telescrape/internal/platform/store"

	"telescrape/internal/services/api"
	cleanrepo "telescrape/internal/services/clean/repo"
	detectrepo "telescrape/internal/services/detect/repo"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repokit.MustGuard(ctx, st)

	// the api serves both logical tables; make sure they exist
	if err := cleanrepo.EnsureSchema(ctx, st.PG); err != nil {
		l.Panic().Err(err).Msg("ensure message schema failed")
	}
	if err := detectrepo.EnsureSchema(ctx, st.PG); err != nil {
		l.Panic().Err(err).Msg("ensure detection schema failed")
	}

	srv := phttp.NewServer(apiCfg)
	r := srv.Router()

	for _, mw := range middleware.Defaults() {
		r.Use(mw)
	}
	r.Use(middleware.RecoverJSON)
	r.Use(middleware.AccessLogZerolog(middleware.AccessLogOptions{
		Slow: time.Duration(apiCfg.MayInt("SLOW_MS", 500)) * time.Millisecond,
	}))
	r.Use(middleware.CORS(middleware.CORSOptions{
		AllowedOrigins: strings.Split(apiCfg.MayString("CORS_ORIGINS", "*"), ","),
	}))
	r.Use(middleware.Heartbeat("/healthz"))

	api.Mount(r, api.Options{
		Deps: modkit.Deps{Log: *l, Cfg: root, PG: st.PG},
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
