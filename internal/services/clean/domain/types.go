// Package domain holds the core types and ports for the cleaning stage
package domain

import (
	"context"
	"time"
)

// MessageRow is a canonical record ready for the idempotent store
type MessageRow struct {
	ChannelTitle    string
	ChannelUsername string
	MessageID       int64
	Message         string
	MessageDate     *time.Time // nil when the raw date did not parse
	MediaPath       string
	EmojiUsed       string
	YouTubeLinks    string
}

// UpsertResult tallies one batch write
type UpsertResult struct {
	Inserted int
	Deduped  int
	Failed   int
}

// Summary reports what a clean run did
type Summary struct {
	Files      int
	RowsIn     int
	Rows       int // after dedup
	DateErrors int
	Upsert     UpsertResult
}

// StorageRepo writes canonical records with conflict-do-nothing semantics.
// Each row is resolved independently: a row failure is logged and counted,
// previously inserted rows stay
type StorageRepo interface {
	InsertMessages(ctx context.Context, rows []MessageRow) (UpsertResult, error)
}

// RunnerPort is the public port exposed by the clean module
type RunnerPort interface {
	Run(ctx context.Context, glob string) (Summary, error)
}
