package csvstore

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"telescrape/internal/services/scrape/domain"
)

func TestSink_HeaderWrittenOnceAndRowsFlushed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f, err := NewSinkFactory(dir)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}

	sink, err := f.Open("testchannel")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	rec := domain.RawRecord{
		ChannelTitle:    "Test Channel",
		ChannelUsername: "testchannel",
		MessageID:       10,
		Text:            "hello",
		Date:            time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		MediaPath:       "photos/testchannel_10.jpg",
	}
	if err := sink.Append(context.Background(), rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	// row must be durable before Close
	path := filepath.Join(dir, "testchannel_data.csv")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read before close: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("append did not flush")
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// reopening appends without a second header
	sink2, err := f.Open("testchannel")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rec.MessageID = 11
	rec.MediaPath = ""
	if err := sink2.Append(context.Background(), rec); err != nil {
		t.Fatalf("append 2: %v", err)
	}
	if err := sink2.Close(); err != nil {
		t.Fatalf("close 2: %v", err)
	}

	tbl, err := ReadTable(path)
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	if !reflect.DeepEqual(tbl.Header, Header) {
		t.Fatalf("header mismatch: %v", tbl.Header)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %v", len(tbl.Rows), tbl.Rows)
	}
	if tbl.Rows[0][2] != "10" || tbl.Rows[1][2] != "11" {
		t.Fatalf("ids out of order: %v", tbl.Rows)
	}
	if tbl.Rows[1][5] != "" {
		t.Fatalf("missing media should stay empty, got %q", tbl.Rows[1][5])
	}
}

func TestReadTable_EmptyFileIsNoData(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadTable(path); err == nil {
		t.Fatalf("expected error for empty file")
	}
}

func TestReadGlob_SortedAndSkipsEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("b_data.csv", "ID\n2\n")
	write("a_data.csv", "ID\n1\n")
	write("c_data.csv", "")

	tables, paths, err := ReadGlob(filepath.Join(dir, "*_data.csv"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(tables) != 2 || len(paths) != 2 {
		t.Fatalf("expected 2 tables, got %d tables %d paths", len(tables), len(paths))
	}
	if tables[0].Rows[0][0] != "1" || tables[1].Rows[0][0] != "2" {
		t.Fatalf("glob order not deterministic: %v %v", tables[0].Rows, tables[1].Rows)
	}
}
