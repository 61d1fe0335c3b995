// Package domain declares the detection load types and ports
package domain

import "context"

// DetectionRow is one bounding-box detection from an upstream model run
type DetectionRow struct {
	FileName   string
	ClassID    int64
	XCenter    float64
	YCenter    float64
	Width      float64
	Height     float64
	Confidence float64
}

// UpsertResult counts the outcome of a detection batch write
type UpsertResult struct {
	Inserted int
	Deduped  int
	Failed   int
}

// Summary describes one detection load run
type Summary struct {
	RowsIn  int
	Dropped int
	Rows    int
	Upsert  UpsertResult
}

// StorageRepo persists detections under full-tuple conflict-do-nothing
type StorageRepo interface {
	InsertDetections(ctx context.Context, rows []DetectionRow) (UpsertResult, error)
}

// RunnerPort loads one detection CSV file into storage
type RunnerPort interface {
	Run(ctx context.Context, path string) (Summary, error)
}
