package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapIf(t *testing.T) {
	t.Parallel()

	if WrapIf(nil, ErrorCodeDB, "close") != nil {
		t.Fatalf("nil should pass through")
	}
	err := WrapIf(stderrs.New("disk full"), ErrorCodeDB, "close dataset")
	if CodeOf(err) != ErrorCodeDB {
		t.Fatalf("code = %v", CodeOf(err))
	}
	if Root(err).Error() != "disk full" {
		t.Fatalf("root lost: %v", err)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	t.Parallel()

	root := stderrs.New("boom")
	err := Wrapf(root, ErrorCodeDB, "insert %s", "messages")

	e, ok := As(err)
	if !ok {
		t.Fatalf("expected *Error")
	}
	if e.Code() != ErrorCodeDB {
		t.Fatalf("code = %v, want db", e.Code())
	}
	if !stderrs.Is(err, root) {
		t.Fatalf("wrapped error lost its cause")
	}
	if Root(err) != root {
		t.Fatalf("Root did not reach the cause")
	}
}

func TestCodeOfAndIsCode(t *testing.T) {
	t.Parallel()

	err := ChannelUnavailablef("channel %s gone", "news")
	if !IsCode(err, ErrorCodeChannelUnavailable) {
		t.Fatalf("IsCode missed the channel code")
	}
	if IsCode(err, ErrorCodeNotFound) {
		t.Fatalf("IsCode matched the wrong code")
	}

	// foreign errors read as unknown
	if CodeOf(stderrs.New("plain")) != ErrorCodeUnknown {
		t.Fatalf("plain error should map to unknown")
	}

	// wrapping through fmt keeps the code reachable
	wrapped := fmt.Errorf("outer: %w", err)
	if !IsCode(wrapped, ErrorCodeChannelUnavailable) {
		t.Fatalf("code lost through fmt wrapping")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{NotFoundf("missing"), http.StatusNotFound},
		{InvalidArgf("bad"), http.StatusBadRequest},
		{SchemaMismatchf("no column"), http.StatusBadRequest},
		{DuplicateKeyf("dup"), http.StatusConflict},
		{NoDataToMergef("empty"), http.StatusUnprocessableEntity},
		{Unavailablef("down"), http.StatusServiceUnavailable},
		{stderrs.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestSkippable(t *testing.T) {
	t.Parallel()

	if !Skippable(MediaDownloadFailedf("timeout")) {
		t.Fatalf("media failures should be absorbed per item")
	}
	if !Skippable(TimestampParsef("bad date")) {
		t.Fatalf("timestamp failures should be absorbed per item")
	}
	if Skippable(DBf("connection lost")) {
		t.Fatalf("db errors must not be skipped")
	}
	if Skippable(nil) {
		t.Fatalf("nil is not skippable")
	}
}

func TestWithFieldAndOp(t *testing.T) {
	t.Parallel()

	base := InvalidArgf("bad limit")
	withField := WithField(base, "limit")

	fe, ok := As(withField)
	if !ok || fe.Field() != "limit" {
		t.Fatalf("field not attached")
	}
	// original untouched
	be, _ := As(base)
	if be.Field() != "" {
		t.Fatalf("WithField mutated the original")
	}

	withOp := WithOp(base, "messages.create")
	oe, _ := As(withOp)
	if oe.Op() != "messages.create" {
		t.Fatalf("op not attached")
	}
}

func TestWireFrom(t *testing.T) {
	t.Parallel()

	w := WireFrom(NotFoundf("message 7 not found"))
	if w.Code != ErrorCodeNotFound || w.Message == "" {
		t.Fatalf("wire = %+v", w)
	}

	w = WireFrom(stderrs.New("plain"))
	if w.Code != ErrorCodeUnknown {
		t.Fatalf("plain wire code = %v", w.Code)
	}
}
