// Package service implements the detection load pipeline
package service

import (
	"context"
	"strconv"
	"strings"

	"telescrape/internal/adapters/csvstore"
	"telescrape/internal/core/tabular"
	"telescrape/internal/modkit/repokit"
	perr "telescrape/internal/platform/errors"
	"telescrape/internal/platform/logger"
	"telescrape/internal/services/detect/domain"
)

// Detection CSVs carry "filename" while storage uses "file_name"; both
// spellings are accepted on read
var detectionColumns = []struct{ names []string }{
	{names: []string{"filename", "file_name"}},
	{names: []string{"class_id"}},
	{names: []string{"x_center"}},
	{names: []string{"y_center"}},
	{names: []string{"width"}},
	{names: []string{"height"}},
	{names: []string{"confidence"}},
}

// Service loads detection CSVs into the detection table
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
}

// New constructs the detect service
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo]) *Service {
	if db == nil {
		panic("detect.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("detect.Service requires a non nil StorageRepo binder")
	}
	return &Service{DB: db, Binder: binder}
}

// Run loads one detection file: rows with any missing value are dropped,
// exact duplicates collapse to the first occurrence, the remainder is
// upserted under full-tuple conflict-do-nothing
func (s *Service) Run(ctx context.Context, path string) (domain.Summary, error) {
	var sum domain.Summary
	log := logger.C(ctx)

	t, err := csvstore.ReadTable(path)
	if err != nil {
		return sum, err
	}
	sum.RowsIn = len(t.Rows)

	rows, dropped, err := ParseDetections(t)
	if err != nil {
		return sum, err
	}
	sum.Dropped = dropped
	sum.Rows = len(rows)
	if dropped > 0 {
		log.Warn().Int("rows", dropped).Msg("dropped detection rows with missing values")
	}

	repo := repokit.MustBind(s.Binder, s.DB)
	res, err := repo.InsertDetections(ctx, rows)
	sum.Upsert = res
	if err != nil {
		return sum, err
	}

	log.Info().
		Str("file", path).
		Int("rows_in", sum.RowsIn).
		Int("dropped", sum.Dropped).
		Int("inserted", res.Inserted).
		Int("deduped", res.Deduped).
		Int("failed", res.Failed).
		Msg("detection load complete")
	return sum, nil
}

// ParseDetections converts a raw detection table into typed rows. Rows
// with a missing or unparseable value are dropped and counted; exact
// duplicate rows collapse to their first occurrence
func ParseDetections(t tabular.Table) ([]domain.DetectionRow, int, error) {
	idx := make([]int, len(detectionColumns))
	for i, c := range detectionColumns {
		idx[i] = -1
		for _, name := range c.names {
			if j := t.ColumnIndex(name); j >= 0 {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return nil, 0, perr.SchemaMismatchf("missing column %q", c.names[0])
		}
	}

	deduped := tabular.DedupBy(t, tabular.WholeRowKey)

	var (
		rows    []domain.DetectionRow
		dropped int
	)
	for _, row := range deduped.Rows {
		d, ok := parseRow(row, idx)
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, d)
	}
	return rows, dropped, nil
}

func parseRow(row []string, idx []int) (domain.DetectionRow, bool) {
	cell := func(i int) (string, bool) {
		j := idx[i]
		if j >= len(row) {
			return "", false
		}
		v := strings.TrimSpace(row[j])
		return v, v != ""
	}

	var d domain.DetectionRow
	v, ok := cell(0)
	if !ok {
		return d, false
	}
	d.FileName = v

	if v, ok = cell(1); !ok {
		return d, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return d, false
	}
	d.ClassID = id

	floats := []*float64{&d.XCenter, &d.YCenter, &d.Width, &d.Height, &d.Confidence}
	for i, dst := range floats {
		v, ok = cell(2 + i)
		if !ok {
			return d, false
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return d, false
		}
		*dst = f
	}
	return d, true
}
