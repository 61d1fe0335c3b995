// Package module wires the clean service from shared deps
package module

import (
	"telescrape/internal/modkit"
	"telescrape/internal/platform/config"
	"telescrape/internal/services/clean/domain"
	"telescrape/internal/services/clean/repo"
	"telescrape/internal/services/clean/service"
)

// Ports defines the clean module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Options holds configuration options for the clean service
type Options struct {
	Glob string
}

// FromConfig reads the clean options from config with CORE_CLEAN_ prefix
func FromConfig(cfg config.Conf) Options {
	cl := cfg.Prefix("CORE_CLEAN_")
	return Options{
		Glob: cl.MayString("GLOB", "data/*_data.csv"),
	}
}

// Module implements the clean module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the clean module. It has no routes
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)
	svc := service.New(deps.PG, repo.NewPG())

	m := &Module{deps: deps, opts: opts}
	m.ports = Ports{Runner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "clean" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the resolved options (raw file glob)
func (m *Module) Options() Options { return m.opts }
