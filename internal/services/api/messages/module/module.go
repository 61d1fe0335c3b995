// Package module wires the messages api using modkit
package module

import (
	"net/http"

	modkit "telescrape/internal/modkit"
	"telescrape/internal/modkit/httpkit"
	messageshttp "telescrape/internal/services/api/messages/http"
	messagesrepo "telescrape/internal/services/api/messages/repo"
	messagessvc "telescrape/internal/services/api/messages/service"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc messagessvc.Service
}

// New constructs a messages module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("messages"),
		modkit.WithPrefix("/messages"),
	}, opts...)...)

	svc := messagessvc.New(deps.PG, messagesrepo.NewPG())

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Messages: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		messageshttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// Ports exposed by the messages module
type Ports struct {
	Messages messagessvc.Service
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, func(rr httpkit.Router) {
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
