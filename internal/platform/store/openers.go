package store

import (
	"context"
	"time"

	"telescrape/internal/platform/store/pg"
)

// openPG opens a pgx pool and verifies connectivity with a bounded retry loop
// postgres is usually the last container up in compose, so we wait for it
func openPG(ctx context.Context, cfg Config, s *Store) (*pgAdapter, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	client, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	adapter := newPGAdapter(client)

	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}

	const maxAttempts = 20
	backoff := 150 * time.Millisecond
	for attempt := 1; ; attempt++ {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = adapter.Ping(pctx)
		cancel()
		if err == nil {
			return adapter, nil
		}
		if attempt >= maxAttempts {
			client.Close()
			return nil, err
		}
		s.Log.Warn().
			Int("attempt", attempt).
			Err(err).
			Msg("postgres not ready, retrying")
		select {
		case <-ctx.Done():
			client.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 2*time.Second {
			backoff = 2 * time.Second
		}
	}
}
