package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"telescrape/internal/core/textnorm"
	"telescrape/internal/modkit/repokit"
	perr "telescrape/internal/platform/errors"
	"telescrape/internal/platform/store"
	"telescrape/internal/services/clean/domain"
)

// noTx satisfies repokit.TxRunner without a database; Tx just runs fn
type noTx struct{}

func (noTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (noTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (noTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (noTx) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	return fn(noTx{})
}

// memStorage keeps canonical rows keyed by message id so upserts dedupe
type memStorage struct {
	mu   sync.Mutex
	rows map[int64]domain.MessageRow
}

func newMemStorage() *memStorage { return &memStorage{rows: map[int64]domain.MessageRow{}} }

func (m *memStorage) InsertMessages(_ context.Context, rows []domain.MessageRow) (domain.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res domain.UpsertResult
	for _, r := range rows {
		if _, ok := m.rows[r.MessageID]; ok {
			res.Deduped++
			continue
		}
		m.rows[r.MessageID] = r
		res.Inserted++
	}
	return res, nil
}

func (m *memStorage) binder() repokit.Binder[domain.StorageRepo] {
	return repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return m })
}

func writeRaw(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const rawHeader = "Channel Title,Channel Username,ID,Message,Date,Media Path\n"

func TestRun_MergeDedupeUpsert(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeRaw(t, dir, "news_data.csv", rawHeader+
		"News,news,10,hello,2024-05-01T10:00:00Z,photos/news_10.jpg\n"+
		"News,news,11,world,2024-05-01T10:01:00Z,\n")
	// overlapping file repeats row 10 byte for byte
	writeRaw(t, dir, "news2_data.csv", rawHeader+
		"News,news,10,hello,2024-05-01T10:00:00Z,photos/news_10.jpg\n"+
		"News,news,12,again,2024-05-01T10:02:00Z,photos/news_12.jpg\n")

	storage := newMemStorage()
	svc := New(noTx{}, storage.binder())

	sum, err := svc.Run(context.Background(), filepath.Join(dir, "*_data.csv"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Files != 2 || sum.RowsIn != 4 || sum.Rows != 3 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Upsert.Inserted != 3 || sum.Upsert.Deduped != 0 {
		t.Fatalf("upsert = %+v", sum.Upsert)
	}
	if got := storage.rows[11].MediaPath; got != textnorm.NoMedia {
		t.Fatalf("blank media = %q, want sentinel", got)
	}
}

func TestRun_SecondRunDedupesInStorage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeRaw(t, dir, "news_data.csv", rawHeader+
		"News,news,20,hi,2024-05-01T10:00:00Z,x\n")

	storage := newMemStorage()
	svc := New(noTx{}, storage.binder())

	if _, err := svc.Run(context.Background(), filepath.Join(dir, "*_data.csv")); err != nil {
		t.Fatalf("first run: %v", err)
	}
	sum, err := svc.Run(context.Background(), filepath.Join(dir, "*_data.csv"))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.Upsert.Inserted != 0 || sum.Upsert.Deduped != 1 {
		t.Fatalf("second run upsert = %+v", sum.Upsert)
	}
}

func TestRun_NoFilesIsNoData(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	svc := New(noTx{}, newMemStorage().binder())

	_, err := svc.Run(context.Background(), filepath.Join(dir, "*_data.csv"))
	if !perr.IsCode(err, perr.ErrorCodeNoDataToMerge) {
		t.Fatalf("expected no-data error, got %v", err)
	}
}
