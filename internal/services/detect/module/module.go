// Package module wires the detect service from shared deps
package module

import (
	"telescrape/internal/modkit"
	"telescrape/internal/platform/config"
	"telescrape/internal/services/detect/domain"
	"telescrape/internal/services/detect/repo"
	"telescrape/internal/services/detect/service"
)

// Ports defines the detect module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Options holds configuration options for the detect service
type Options struct {
	File string
}

// FromConfig reads the detect options from config with CORE_DETECT_ prefix
func FromConfig(cfg config.Conf) Options {
	dt := cfg.Prefix("CORE_DETECT_")
	return Options{
		File: dt.MayString("FILE", "detection_results.csv"),
	}
}

// Module implements the detect module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the detect module. It has no routes
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)
	svc := service.New(deps.PG, repo.NewPG())

	m := &Module{deps: deps, opts: opts}
	m.ports = Ports{Runner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "detect" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the resolved options (detection file path)
func (m *Module) Options() Options { return m.opts }
