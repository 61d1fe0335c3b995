// Package api provides the HTTP API for the application
package api

import (
	"telescrape/internal/modkit"
	phttp "telescrape/internal/platform/net/http"

	messagesmod "telescrape/internal/services/api/messages/module"
)

// Options are the API options
type Options struct {
	Deps modkit.Deps
}

// Mount mounts the API modules onto the given router
func Mount(r phttp.Router, opt Options) {
	mods := []modkit.Module{
		messagesmod.New(opt.Deps),
	}
	for _, m := range mods {
		m.MountRoutes(r)
	}
}
