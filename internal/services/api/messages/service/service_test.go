package service

import (
	"context"
	"testing"

	perr "telescrape/internal/platform/errors"
	"telescrape/internal/services/api/messages/domain"
	"telescrape/internal/services/api/messages/repo"
)

// fakeRepo serves canned rows and records paging arguments
type fakeRepo struct {
	rows map[int64]repo.Row
	err  error

	listSkip  int
	listLimit int
}

func (f *fakeRepo) Create(_ context.Context, fl repo.Fields) (repo.Row, error) {
	if f.err != nil {
		return repo.Row{}, f.err
	}
	return repo.Row{ID: 1, MessageID: fl.MessageID, Message: fl.Message}, nil
}

func (f *fakeRepo) GetByMessageID(_ context.Context, id int64) (repo.Row, error) {
	if f.err != nil {
		return repo.Row{}, f.err
	}
	r, ok := f.rows[id]
	if !ok {
		return repo.Row{}, perr.NotFoundf("message %d not found", id)
	}
	return r, nil
}

func (f *fakeRepo) List(_ context.Context, skip, limit int) ([]repo.Row, error) {
	f.listSkip, f.listLimit = skip, limit
	return nil, f.err
}

func (f *fakeRepo) Count(context.Context) (int, error) { return len(f.rows), nil }

func (f *fakeRepo) Update(_ context.Context, id int64, fl repo.Fields) (repo.Row, error) {
	return repo.Row{MessageID: id, Message: fl.Message}, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) (repo.Row, error) {
	r, ok := f.rows[id]
	if !ok {
		return repo.Row{}, perr.NotFoundf("message %d not found", id)
	}
	delete(f.rows, id)
	return r, nil
}

func TestGet_MapsRowToMessage(t *testing.T) {
	t.Parallel()

	f := &fakeRepo{rows: map[int64]repo.Row{
		7: {ID: 1, MessageID: 7, Message: "hello", ChannelUsername: "chan"},
	}}
	svc := &Svc{Repo: f}

	out, err := svc.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.MessageID != 7 || out.Message != "hello" || out.ChannelUsername != "chan" {
		t.Fatalf("mapping broken: %+v", out)
	}
}

func TestGet_RepoErrorCarriesOp(t *testing.T) {
	t.Parallel()

	f := &fakeRepo{err: perr.DBf("connection lost")}
	svc := &Svc{Repo: f}

	_, err := svc.Get(context.Background(), 7)
	e, ok := perr.As(err)
	if !ok {
		t.Fatalf("expected project error, got %v", err)
	}
	if e.Op() != "messages.get" {
		t.Fatalf("op = %q", e.Op())
	}
	if e.Code() != perr.ErrorCodeDB {
		t.Fatalf("code lost through op tagging: %v", e.Code())
	}
}

func TestList_ClampsPaging(t *testing.T) {
	t.Parallel()

	cases := []struct {
		skip, limit         int
		wantSkip, wantLimit int
	}{
		{-5, 0, 0, 10},
		{0, 999, 0, 10},
		{20, 50, 20, 50},
	}
	for _, tc := range cases {
		f := &fakeRepo{}
		svc := &Svc{Repo: f}
		if _, _, err := svc.List(context.Background(), domain.ListInput{Skip: tc.skip, Limit: tc.limit}); err != nil {
			t.Fatalf("list: %v", err)
		}
		if f.listSkip != tc.wantSkip || f.listLimit != tc.wantLimit {
			t.Fatalf("skip=%d limit=%d clamped to %d/%d, want %d/%d",
				tc.skip, tc.limit, f.listSkip, f.listLimit, tc.wantSkip, tc.wantLimit)
		}
	}
}
