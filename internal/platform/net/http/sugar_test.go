package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

type echoIn struct {
	Name string `json:"name"`
}

func TestSugar_GetAndPostJSON(t *testing.T) {
	t.Parallel()

	mux := chi.NewRouter()
	r := AdaptChi(mux)

	GetJSON(r, "/ping", func(req *stdhttp.Request) (any, error) {
		return map[string]string{"pong": "ok"}, nil
	})
	PostJSON[echoIn](r, "/echo", func(req *stdhttp.Request, in echoIn) (any, error) {
		return in, nil
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/ping", nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(stdhttp.MethodPost, "/echo", strings.NewReader(`{"name":"zoe"}`))
	req.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(rec, req)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("post status = %d body=%s", rec.Code, rec.Body.String())
	}

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	data, ok := env.Data.(map[string]any)
	if !ok || data["name"] != "zoe" {
		t.Fatalf("data = %+v", env.Data)
	}
}

func TestSugar_DeleteJSONEmptyBody(t *testing.T) {
	t.Parallel()

	mux := chi.NewRouter()
	r := AdaptChi(mux)
	DeleteJSON(r, "/gone", func(req *stdhttp.Request) (any, error) {
		return map[string]bool{"deleted": true}, nil
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodDelete, "/gone", nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
}
