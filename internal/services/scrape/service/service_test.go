package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"telescrape/internal/modkit/repokit"
	perr "telescrape/internal/platform/errors"
	"telescrape/internal/platform/store"
	"telescrape/internal/services/scrape/domain"
)

// noTx satisfies repokit.TxRunner without a database; Tx just runs fn
type noTx struct{}

func (noTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (noTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (noTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (noTx) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	return fn(noTx{})
}

// memCursors is an in-memory forward-only cursor store
type memCursors struct {
	mu      sync.Mutex
	cursors map[string]int64
}

func newMemCursors() *memCursors { return &memCursors{cursors: map[string]int64{}} }

func (m *memCursors) GetCursor(_ context.Context, handle string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.cursors[handle]
	return id, ok, nil
}

func (m *memCursors) AdvanceCursor(_ context.Context, ch domain.Channel, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id > m.cursors[ch.Handle] {
		m.cursors[ch.Handle] = id
	}
	return nil
}

func (m *memCursors) binder() repokit.Binder[domain.CursorRepo] {
	return repokit.BindFunc[domain.CursorRepo](func(repokit.Queryer) domain.CursorRepo { return m })
}

// sliceStream serves a fixed slice of messages
type sliceStream struct {
	msgs []domain.Message
	pos  int
}

func (s *sliceStream) Next() (domain.Message, error) {
	if s.pos >= len(s.msgs) {
		return domain.Message{}, io.EOF
	}
	msg := s.msgs[s.pos]
	s.pos++
	return msg, nil
}

func (s *sliceStream) Close() error { return nil }

// fakeFetcher maps handle -> messages; missing handles are unavailable
type fakeFetcher struct {
	channels map[string][]domain.Message
}

func (f *fakeFetcher) Fetch(_ context.Context, ch domain.Channel, cursor int64, max int) (domain.Channel, domain.MessageStream, error) {
	msgs, ok := f.channels[ch.Handle]
	if !ok {
		return ch, nil, perr.ChannelUnavailablef("resolve %s: not found", ch.Handle)
	}
	ch.Title = "Title of " + ch.Handle
	var newer []domain.Message
	for _, m := range msgs {
		if m.ID > cursor && (max <= 0 || len(newer) < max) {
			newer = append(newer, m)
		}
	}
	return ch, &sliceStream{msgs: newer}, nil
}

// fakeMedia fails for configured message ids; hardFor ids fail with an
// error outside the media taxonomy
type fakeMedia struct {
	failFor map[int64]bool
	hardFor map[int64]bool
}

func (f *fakeMedia) Download(_ context.Context, _ domain.Media, dir, handle string, msgID int64) (string, error) {
	if f.hardFor[msgID] {
		return "", perr.Unavailablef("media storage offline for %d", msgID)
	}
	if f.failFor[msgID] {
		return "", perr.MediaDownloadFailedf("download for %d failed", msgID)
	}
	return dir + "/" + handle + "_fake.jpg", nil
}

// memSink records appended rows per channel
type memSink struct {
	mu   sync.Mutex
	rows map[string][]domain.RawRecord
}

func newMemSink() *memSink { return &memSink{rows: map[string][]domain.RawRecord{}} }

func (m *memSink) Open(handle string) (domain.RecordSink, error) {
	return &memSinkChannel{parent: m, handle: handle}, nil
}

type memSinkChannel struct {
	parent *memSink
	handle string
}

func (c *memSinkChannel) Append(_ context.Context, rec domain.RawRecord) error {
	c.parent.mu.Lock()
	defer c.parent.mu.Unlock()
	c.parent.rows[c.handle] = append(c.parent.rows[c.handle], rec)
	return nil
}

func (c *memSinkChannel) Close() error { return nil }

func msg(id int64, text string, withMedia bool) domain.Message {
	m := domain.Message{ID: id, Text: text, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	if withMedia {
		m.Media = &domain.Media{FileID: "file", MimeType: "image/jpeg"}
	}
	return m
}

func TestRun_MediaFailureKeepsRecordAndAdvancesCursor(t *testing.T) {
	t.Parallel()

	cursors := newMemCursors()
	sinks := newMemSink()
	svc := New(
		noTx{}, cursors.binder(),
		&fakeFetcher{channels: map[string][]domain.Message{
			"x": {msg(10, "ten", true), msg(11, "eleven", true), msg(12, "twelve", true)},
		}},
		&fakeMedia{failFor: map[int64]bool{11: true}},
		sinks,
		Config{Workers: 2, MediaWorkers: 2, MediaDir: "photos"},
	)

	sum, err := svc.Run(context.Background(), []string{"@x"}, 100)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	rows := sinks.rows["x"]
	if len(rows) != 3 {
		t.Fatalf("expected 3 raw rows, got %d", len(rows))
	}
	for i, want := range []int64{10, 11, 12} {
		if rows[i].MessageID != want {
			t.Fatalf("rows out of fetch order: %v", rows)
		}
	}
	if rows[1].MediaPath != "" {
		t.Fatalf("failed media should leave empty path, got %q", rows[1].MediaPath)
	}
	if rows[0].MediaPath == "" || rows[2].MediaPath == "" {
		t.Fatalf("successful media paths missing: %v", rows)
	}

	if sum.MediaErrors != 1 {
		t.Fatalf("expected 1 media error, got %d", sum.MediaErrors)
	}
	if sum.Messages != 3 {
		t.Fatalf("expected 3 messages, got %d", sum.Messages)
	}

	if got := cursors.cursors["x"]; got != 12 {
		t.Fatalf("cursor should be 12, got %d", got)
	}
}

func TestRun_UnavailableChannelSkippedNotFatal(t *testing.T) {
	t.Parallel()

	cursors := newMemCursors()
	sinks := newMemSink()
	svc := New(
		noTx{}, cursors.binder(),
		&fakeFetcher{channels: map[string][]domain.Message{
			"ok": {msg(1, "one", false)},
		}},
		&fakeMedia{},
		sinks,
		Config{Workers: 1, MediaWorkers: 1},
	)

	sum, err := svc.Run(context.Background(), []string{"ghost", "ok"}, 100)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.SkippedChannels != 1 || sum.Channels != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if len(sinks.rows["ok"]) != 1 {
		t.Fatalf("healthy channel should still be scraped")
	}
}

func TestRun_ResumeFromCursorIsIdempotent(t *testing.T) {
	t.Parallel()

	cursors := newMemCursors()
	sinks := newMemSink()
	fetch := &fakeFetcher{channels: map[string][]domain.Message{
		"x": {msg(1, "one", false), msg(2, "two", false)},
	}}
	svc := New(noTx{}, cursors.binder(), fetch, &fakeMedia{}, sinks,
		Config{Workers: 1, MediaWorkers: 1})

	if _, err := svc.Run(context.Background(), []string{"x"}, 100); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// unchanged upstream, unchanged cursor: second run adds nothing
	sum, err := svc.Run(context.Background(), []string{"x"}, 100)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.Messages != 0 {
		t.Fatalf("second run should fetch nothing, got %d", sum.Messages)
	}
	if len(sinks.rows["x"]) != 2 {
		t.Fatalf("raw dataset should still hold 2 rows, got %d", len(sinks.rows["x"]))
	}
}

// blockingStream serves its messages then parks in Next until ctx ends
type blockingStream struct {
	ctx  context.Context
	msgs []domain.Message
	pos  int
}

func (s *blockingStream) Next() (domain.Message, error) {
	if s.pos < len(s.msgs) {
		m := s.msgs[s.pos]
		s.pos++
		return m, nil
	}
	<-s.ctx.Done()
	return domain.Message{}, s.ctx.Err()
}

func (s *blockingStream) Close() error { return nil }

type blockingFetcher struct{ msgs []domain.Message }

func (f *blockingFetcher) Fetch(ctx context.Context, ch domain.Channel, _ int64, _ int) (domain.Channel, domain.MessageStream, error) {
	ch.Title = "Title of " + ch.Handle
	return ch, &blockingStream{ctx: ctx, msgs: f.msgs}, nil
}

// cancelAfterSink cancels the run once after records have been appended
type cancelAfterSink struct {
	inner  domain.SinkFactory
	after  int
	cancel context.CancelFunc

	mu    sync.Mutex
	count int
}

func (c *cancelAfterSink) Open(handle string) (domain.RecordSink, error) {
	s, err := c.inner.Open(handle)
	if err != nil {
		return nil, err
	}
	return &cancelSinkChannel{parent: c, inner: s}, nil
}

type cancelSinkChannel struct {
	parent *cancelAfterSink
	inner  domain.RecordSink
}

func (s *cancelSinkChannel) Append(ctx context.Context, rec domain.RawRecord) error {
	if err := s.inner.Append(ctx, rec); err != nil {
		return err
	}
	p := s.parent
	p.mu.Lock()
	p.count++
	if p.count == p.after {
		p.cancel()
	}
	p.mu.Unlock()
	return nil
}

func (s *cancelSinkChannel) Close() error { return s.inner.Close() }

func TestRun_CancelMidStreamKeepsCursorAtLastAppended(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cursors := newMemCursors()
	sinks := newMemSink()
	svc := New(
		noTx{}, cursors.binder(),
		&blockingFetcher{msgs: []domain.Message{msg(1, "one", false), msg(2, "two", false)}},
		&fakeMedia{},
		&cancelAfterSink{inner: sinks, after: 2, cancel: cancel},
		Config{Workers: 1, MediaWorkers: 1},
	)

	_, err := svc.Run(ctx, []string{"x"}, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(sinks.rows["x"]) != 2 {
		t.Fatalf("expected 2 appended rows, got %d", len(sinks.rows["x"]))
	}
	if got := cursors.cursors["x"]; got != 2 {
		t.Fatalf("cursor should stay at last appended message, got %d", got)
	}
}

func TestRun_HardMediaErrorAbortsChannel(t *testing.T) {
	t.Parallel()

	cursors := newMemCursors()
	sinks := newMemSink()
	svc := New(
		noTx{}, cursors.binder(),
		&fakeFetcher{channels: map[string][]domain.Message{
			"x": {msg(1, "one", false), msg(2, "two", true), msg(3, "three", true)},
		}},
		&fakeMedia{hardFor: map[int64]bool{2: true}},
		sinks,
		Config{Workers: 1, MediaWorkers: 1},
	)

	_, err := svc.Run(context.Background(), []string{"x"}, 0)
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("expected Unavailable, got %v", err)
	}
	if len(sinks.rows["x"]) != 1 {
		t.Fatalf("messages past the hard failure should not be appended: %v", sinks.rows["x"])
	}
	if got := cursors.cursors["x"]; got != 1 {
		t.Fatalf("cursor should stop before the failed message, got %d", got)
	}
}

// flakyTx fails selected transactions with a retryable commit error
type flakyTx struct {
	noTx

	mu     sync.Mutex
	calls  int
	failOn map[int]bool
}

func (f *flakyTx) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	f.mu.Lock()
	f.calls++
	fail := f.failOn[f.calls]
	f.mu.Unlock()
	if fail {
		return errors.New("ERROR: commit unexpectedly resulted in rollback")
	}
	return fn(noTx{})
}

func TestRun_RetryableCursorAdvanceIsRetried(t *testing.T) {
	t.Parallel()

	cursors := newMemCursors()
	sinks := newMemSink()
	// call 1 reads the cursor; call 2 is the advance
	ftx := &flakyTx{failOn: map[int]bool{2: true}}
	svc := New(
		ftx, cursors.binder(),
		&fakeFetcher{channels: map[string][]domain.Message{
			"x": {msg(1, "one", false)},
		}},
		&fakeMedia{},
		sinks,
		Config{Workers: 1, MediaWorkers: 1},
	)

	sum, err := svc.Run(context.Background(), []string{"x"}, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Messages != 1 {
		t.Fatalf("expected 1 message, got %d", sum.Messages)
	}
	if got := cursors.cursors["x"]; got != 1 {
		t.Fatalf("advance should succeed on retry, got cursor %d", got)
	}
}

func TestRun_LimitBoundsPerRun(t *testing.T) {
	t.Parallel()

	cursors := newMemCursors()
	sinks := newMemSink()
	fetch := &fakeFetcher{channels: map[string][]domain.Message{
		"x": {msg(1, "a", false), msg(2, "b", false), msg(3, "c", false)},
	}}
	svc := New(noTx{}, cursors.binder(), fetch, &fakeMedia{}, sinks,
		Config{Workers: 1, MediaWorkers: 1})

	sum, err := svc.Run(context.Background(), []string{"x"}, 2)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Messages != 2 {
		t.Fatalf("limit not honored: %d", sum.Messages)
	}
	if got := cursors.cursors["x"]; got != 2 {
		t.Fatalf("cursor should stop at 2, got %d", got)
	}

	// next run picks up where the limit stopped
	sum, err = svc.Run(context.Background(), []string{"x"}, 2)
	if err != nil {
		t.Fatalf("resume run: %v", err)
	}
	if sum.Messages != 1 || cursors.cursors["x"] != 3 {
		t.Fatalf("resume after limit broken: %+v cursor=%d", sum, cursors.cursors["x"])
	}
}
