// Package csvstore reads and writes the raw per-channel CSV datasets
package csvstore

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	perr "telescrape/internal/platform/errors"
	"telescrape/internal/services/scrape/domain"
)

// Header is the fixed column set of a raw dataset
var Header = []string{"Channel Title", "Channel Username", "ID", "Message", "Date", "Media Path"}

// DateLayout is how message dates are written to raw datasets
const DateLayout = time.RFC3339

// SinkFactory opens per-channel datasets under a data directory
type SinkFactory struct {
	Dir string
}

// NewSinkFactory returns a factory rooted at dir, creating it when absent
func NewSinkFactory(dir string) (*SinkFactory, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "create data dir %s", dir)
	}
	return &SinkFactory{Dir: dir}, nil
}

// Open opens (or creates) the dataset for a handle; the header is written
// exactly once, when the file is created
func (f *SinkFactory) Open(handle string) (domain.RecordSink, error) {
	path := filepath.Join(f.Dir, handle+"_data.csv")
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "open dataset %s", path)
	}

	st, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "stat dataset %s", path)
	}

	s := &sink{file: file, w: csv.NewWriter(file)}
	if st.Size() == 0 {
		if err := s.writeRow(Header); err != nil {
			_ = file.Close()
			return nil, err
		}
	}
	return s, nil
}

type sink struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// Append writes one record and flushes it so a crash after N appends
// leaves exactly N valid rows behind
func (s *sink) Append(_ context.Context, rec domain.RawRecord) error {
	date := ""
	if !rec.Date.IsZero() {
		date = rec.Date.Format(DateLayout)
	}
	return s.writeRow([]string{
		rec.ChannelTitle,
		rec.ChannelUsername,
		strconv.FormatInt(rec.MessageID, 10),
		rec.Text,
		date,
		rec.MediaPath,
	})
}

func (s *sink) writeRow(row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Write(row); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "write csv row")
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "flush csv row")
	}
	return nil
}

func (s *sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.file.Close()
		return perr.Wrap(err, perr.ErrorCodeUnknown, "flush on close")
	}
	return perr.WrapIf(s.file.Close(), perr.ErrorCodeUnknown, "close dataset")
}
