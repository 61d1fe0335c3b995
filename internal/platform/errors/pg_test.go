package errors

import (
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func pgErr(code string) error {
	return &pgconn.PgError{Code: code, Message: "pg says no"}
}

func TestDBErrorCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		sqlstate string
		want     ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},
		{"23503", ErrorCodeInvalidArgument},
		{"23502", ErrorCodeValidation},
		{"40P01", ErrorCodeDB},
		{"57P03", ErrorCodeUnavailable},
		{"XX000", ErrorCodeDB},
	}
	for _, tc := range cases {
		code, ok := DBErrorCode(pgErr(tc.sqlstate))
		if !ok || code != tc.want {
			t.Fatalf("DBErrorCode(%s) = %v ok=%v, want %v", tc.sqlstate, code, ok, tc.want)
		}
	}

	if _, ok := DBErrorCode(stderrs.New("not pg")); ok {
		t.Fatalf("non-pg error should not map")
	}
}

func TestFromPostgres(t *testing.T) {
	t.Parallel()

	if FromPostgres(nil, "noop") != nil {
		t.Fatalf("nil in, nil out")
	}

	err := FromPostgres(pgErr("23505"), "insert message")
	if !IsCode(err, ErrorCodeDuplicateKey) {
		t.Fatalf("dup key not mapped: %v", err)
	}
	if !IsDuplicateKey(err) {
		t.Fatalf("IsDuplicateKey missed wrapped pg error")
	}

	err = FromPostgres(stderrs.New("conn reset"), "insert message")
	if !IsCode(err, ErrorCodeDB) {
		t.Fatalf("generic failure should map to db: %v", err)
	}
}

func TestIsNoRows(t *testing.T) {
	t.Parallel()

	if !IsNoRows(pgx.ErrNoRows) {
		t.Fatalf("bare ErrNoRows not detected")
	}
	if !IsNoRows(Wrap(pgx.ErrNoRows, ErrorCodeDB, "get cursor")) {
		t.Fatalf("wrapped ErrNoRows not detected")
	}
	if !IsNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)) {
		t.Fatalf("fmt-wrapped ErrNoRows not detected")
	}
	if IsNoRows(stderrs.New("other")) {
		t.Fatalf("false positive")
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	if !IsRetryable(pgErr("40001")) {
		t.Fatalf("serialization failure should retry")
	}
	if IsRetryable(pgErr("23505")) {
		t.Fatalf("dup key must not retry")
	}
	if !IsRetryable(stderrs.New("commit unexpectedly resulted in rollback")) {
		t.Fatalf("commit rollback text should retry")
	}
	if IsRetryable(nil) {
		t.Fatalf("nil never retries")
	}
}
