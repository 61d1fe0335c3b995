// Package service implements the merge, normalize and store pipeline
package service

import (
	"context"

	"telescrape/internal/adapters/csvstore"
	"telescrape/internal/core/tabular"
	"telescrape/internal/modkit/repokit"
	"telescrape/internal/platform/logger"
	"telescrape/internal/services/clean/domain"
)

// Service merges raw scrape files into the canonical message table
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
}

// New constructs the clean service
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo]) *Service {
	if db == nil {
		panic("clean.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("clean.Service requires a non nil StorageRepo binder")
	}
	return &Service{DB: db, Binder: binder}
}

// Run reads every raw file matching glob, merges and dedupes them,
// normalizes the result and upserts it into storage
func (s *Service) Run(ctx context.Context, glob string) (domain.Summary, error) {
	var sum domain.Summary
	log := logger.C(ctx)

	tables, files, err := csvstore.ReadGlob(glob)
	if err != nil {
		return sum, err
	}
	sum.Files = len(files)

	merged, err := tabular.Merge(tables...)
	if err != nil {
		return sum, err
	}
	sum.RowsIn = len(merged.Rows)

	deduped := tabular.DedupBy(merged, tabular.WholeRowKey)
	normalized, dateErrors := Normalize(deduped)
	sum.DateErrors = dateErrors
	if dateErrors > 0 {
		log.Warn().Int("rows", dateErrors).Msg("unparseable message dates left blank")
	}

	rows, err := MapCanonical(normalized)
	if err != nil {
		return sum, err
	}
	sum.Rows = len(rows)

	// Rows are written outside a transaction so one bad row cannot
	// poison the rest of the batch
	repo := repokit.MustBind(s.Binder, s.DB)
	res, err := repo.InsertMessages(ctx, rows)
	sum.Upsert = res
	if err != nil {
		return sum, err
	}

	log.Info().
		Int("files", sum.Files).
		Int("rows_in", sum.RowsIn).
		Int("rows", sum.Rows).
		Int("inserted", res.Inserted).
		Int("deduped", res.Deduped).
		Int("failed", res.Failed).
		Msg("clean run complete")
	return sum, nil
}
