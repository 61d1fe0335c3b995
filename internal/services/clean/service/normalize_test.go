package service

import (
	"testing"
	"time"

	"telescrape/internal/core/tabular"
	"telescrape/internal/core/textnorm"
	perr "telescrape/internal/platform/errors"
)

func rawTable(rows ...[]string) tabular.Table {
	return tabular.Table{
		Header: []string{colTitle, colUsername, colID, colMessage, colDate, colMedia},
		Rows:   rows,
	}
}

func TestNormalize_ExtractsAndCleans(t *testing.T) {
	t.Parallel()

	in := rawTable([]string{
		"News", "news", "7",
		"Check this out https://youtu.be/abc123 \U0001F600",
		"2024-05-01T10:00:00Z", "photos/news_7.jpg",
	})

	out, dateErrors := Normalize(in)
	if dateErrors != 0 {
		t.Fatalf("unexpected date errors: %d", dateErrors)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out.Rows))
	}
	row := out.Rows[0]
	if got := row[out.ColumnIndex(colMessage)]; got != "Check this out" {
		t.Fatalf("cleaned text = %q", got)
	}
	if got := row[out.ColumnIndex(colEmoji)]; got != "\U0001F600" {
		t.Fatalf("emoji = %q", got)
	}
	if got := row[out.ColumnIndex(colLinks)]; got != "https://youtu.be/abc123" {
		t.Fatalf("links = %q", got)
	}
}

func TestNormalize_Sentinels(t *testing.T) {
	t.Parallel()

	in := rawTable([]string{"News", "news", "8", "", "2024-05-01T10:00:00Z", ""})

	out, _ := Normalize(in)
	row := out.Rows[0]
	if got := row[out.ColumnIndex(colMessage)]; got != textnorm.NoMessage {
		t.Fatalf("message = %q", got)
	}
	if got := row[out.ColumnIndex(colMedia)]; got != textnorm.NoMedia {
		t.Fatalf("media = %q", got)
	}
	if got := row[out.ColumnIndex(colEmoji)]; got != textnorm.NoEmoji {
		t.Fatalf("emoji = %q", got)
	}
	if got := row[out.ColumnIndex(colLinks)]; got != textnorm.NoYouTubeLink {
		t.Fatalf("links = %q", got)
	}
}

func TestNormalize_BadIDFallsBackToZero(t *testing.T) {
	t.Parallel()

	in := rawTable(
		[]string{"News", "news", "", "hi", "2024-05-01T10:00:00Z", "x"},
		[]string{"News", "news", "oops", "hi", "2024-05-01T10:00:00Z", "x"},
	)

	out, _ := Normalize(in)
	for i, row := range out.Rows {
		if got := row[out.ColumnIndex(colID)]; got != "0" {
			t.Fatalf("row %d id = %q, want 0", i, got)
		}
	}
}

func TestNormalize_UnparseableDateBlankedAndCounted(t *testing.T) {
	t.Parallel()

	in := rawTable(
		[]string{"News", "news", "1", "a", "not a date", "x"},
		[]string{"News", "news", "2", "b", "2024-05-01 10:00:00+00:00", "x"},
	)

	out, dateErrors := Normalize(in)
	if dateErrors != 1 {
		t.Fatalf("date errors = %d, want 1", dateErrors)
	}
	if got := out.Rows[0][out.ColumnIndex(colDate)]; got != "" {
		t.Fatalf("bad date not blanked: %q", got)
	}
	if got := out.Rows[1][out.ColumnIndex(colDate)]; got == "" {
		t.Fatalf("good date blanked")
	}
}

func TestMapCanonical_TypedRows(t *testing.T) {
	t.Parallel()

	in := rawTable([]string{
		"News", "news", "9", "hello",
		"2024-05-01 12:30:00+02:00", "photos/news_9.jpg",
	})
	normalized, _ := Normalize(in)

	rows, err := MapCanonical(normalized)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	m := rows[0]
	if m.MessageID != 9 || m.ChannelUsername != "news" {
		t.Fatalf("unexpected row: %+v", m)
	}
	if m.MessageDate == nil {
		t.Fatalf("expected a parsed date")
	}
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	if !m.MessageDate.Equal(want) {
		t.Fatalf("date = %v, want %v", m.MessageDate, want)
	}
}

func TestMapCanonical_NilDateForBlank(t *testing.T) {
	t.Parallel()

	in := rawTable([]string{"News", "news", "10", "hello", "garbage", "x"})
	normalized, _ := Normalize(in)

	rows, err := MapCanonical(normalized)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if rows[0].MessageDate != nil {
		t.Fatalf("expected nil date, got %v", rows[0].MessageDate)
	}
}

func TestMapCanonical_SchemaMismatch(t *testing.T) {
	t.Parallel()

	bad := tabular.Table{Header: []string{colTitle, colUsername}, Rows: nil}
	if _, err := MapCanonical(bad); !perr.IsCode(err, perr.ErrorCodeSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
