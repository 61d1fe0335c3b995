// Package http provides http transport for the messages api
package http

import (
	stdhttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"telescrape/internal/modkit/httpkit"
	perr "telescrape/internal/platform/errors"
	"telescrape/internal/services/api/messages/domain"
	svc "telescrape/internal/services/api/messages/service"
)

// Register mounts messages endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.MessageInput](r, "/", h.create)
	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/{message_id}", h.get)
	httpkit.PutJSON[domain.MessageInput](r, "/{message_id}", h.update)
	httpkit.Delete(r, "/{message_id}", h.remove)
}

type handlers struct{ svc svc.Service }

func pathMessageID(r *stdhttp.Request) (int64, error) {
	raw := chi.URLParam(r, "message_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, perr.WithField(perr.InvalidArgf("invalid message id %q", raw), "message_id")
	}
	return id, nil
}

func queryInt(r *stdhttp.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, perr.WithField(perr.InvalidArgf("invalid %s %q", name, raw), name)
	}
	return n, nil
}

func (h *handlers) create(r *stdhttp.Request, in domain.MessageInput) (any, error) {
	out, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

func (h *handlers) get(r *stdhttp.Request) (any, error) {
	id, err := pathMessageID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Get(r.Context(), id)
}

func (h *handlers) list(r *stdhttp.Request) (any, error) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		return nil, err
	}
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		return nil, err
	}

	items, total, err := h.svc.List(r.Context(), domain.ListInput{Skip: skip, Limit: limit})
	if err != nil {
		return nil, err
	}
	page := 1
	if limit > 0 {
		page = skip/limit + 1
	}
	return httpkit.List(items, total, page, limit), nil
}

func (h *handlers) update(r *stdhttp.Request, in domain.MessageInput) (any, error) {
	id, err := pathMessageID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Update(r.Context(), id, in)
}

func (h *handlers) remove(r *stdhttp.Request) (any, error) {
	id, err := pathMessageID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Delete(r.Context(), id)
}
