package domain

import "context"

// RunnerPort is the public port exposed by the scrape module
type RunnerPort interface {
	Run(ctx context.Context, channels []string, limit int) (RunSummary, error)
}

// CursorRepo owns per-channel resume cursors
type CursorRepo interface {
	// GetCursor returns the last processed message id for a channel,
	// ok=false when the channel has never been seen
	GetCursor(ctx context.Context, handle string) (int64, bool, error)

	// AdvanceCursor moves the cursor forward only; an id not greater than
	// the stored value is a no-op
	AdvanceCursor(ctx context.Context, ch Channel, id int64) error
}

// MessageStream is a lazy pull sequence of messages; Next returns io.EOF
// when the stream is drained
type MessageStream interface {
	Next() (Message, error)
	Close() error
}

// Fetcher produces every message strictly newer than cursor, up to max,
// exactly once. Resolution failure for the whole channel is reported as
// a ChannelUnavailable error
type Fetcher interface {
	Fetch(ctx context.Context, ch Channel, cursor int64, max int) (Channel, MessageStream, error)
}

// MediaDownloader retrieves one media artifact into dir and returns the
// stored path. Failure maps to MediaDownloadFailed
type MediaDownloader interface {
	Download(ctx context.Context, m Media, dir, handle string, msgID int64) (string, error)
}

// RecordSink appends raw records durably; each Append must leave a fully
// flushed row behind before returning
type RecordSink interface {
	Append(ctx context.Context, rec RawRecord) error
	Close() error
}

// SinkFactory opens the per-channel raw dataset for a handle
type SinkFactory interface {
	Open(handle string) (RecordSink, error)
}
