// Package module wires the scrape service from shared deps
package module

import (
	"telescrape/internal/adapters/csvstore"
	"telescrape/internal/adapters/telegram"
	"telescrape/internal/modkit"
	"telescrape/internal/services/scrape/domain"
	"telescrape/internal/services/scrape/repo"
	"telescrape/internal/services/scrape/service"
)

// Ports defines the scrape module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the scrape module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the scrape module, wiring the telegram client and the
// per-channel csv sinks from deps.Cfg. It has no routes
func New(deps modkit.Deps) (*Module, error) {
	opts := FromConfig(deps.Cfg)

	tg := deps.Cfg.Prefix("TG_")
	client, err := telegram.NewClient(telegram.Config{
		Token: tg.MustString("BOT_TOKEN"),
		Proxy: tg.MayString("PROXY", ""),
	})
	if err != nil {
		return nil, err
	}

	sinks, err := csvstore.NewSinkFactory(opts.DataDir)
	if err != nil {
		return nil, err
	}

	svc := service.New(
		deps.PG, repo.NewPG(),
		client, client, sinks,
		service.Config{
			Workers:      opts.Workers,
			MediaWorkers: opts.MediaWorkers,
			MediaDir:     opts.MediaDir,
		},
	)

	m := &Module{deps: deps, opts: opts}
	m.ports = Ports{Runner: svc}
	return m, nil
}

// Name returns the module name
func (m *Module) Name() string { return "scrape" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the resolved options (limit, channels file)
func (m *Module) Options() Options { return m.opts }
