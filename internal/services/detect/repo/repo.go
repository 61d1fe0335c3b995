// Package repo provides postgres access for detection writes
package repo

import (
	"context"

	"telescrape/internal/modkit/repokit"
	perr "telescrape/internal/platform/errors"
	"telescrape/internal/platform/logger"
	"telescrape/internal/services/detect/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// EnsureSchema creates the detection table when absent. The unique
// constraint spans the full tuple; no single field identifies a detection
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS detection_results (
			id         BIGSERIAL PRIMARY KEY,
			file_name  TEXT,
			class_id   INTEGER,
			x_center   DOUBLE PRECISION,
			y_center   DOUBLE PRECISION,
			width      DOUBLE PRECISION,
			height     DOUBLE PRECISION,
			confidence DOUBLE PRECISION,
			UNIQUE (file_name, class_id, x_center, y_center, width, height, confidence)
		)
	`)
	if err != nil {
		return perr.FromPostgres(err, "ensure detection_results")
	}
	return nil
}

const insertDetectionSQL = `
	INSERT INTO detection_results (
		file_name, class_id, x_center, y_center, width, height, confidence
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (file_name, class_id, x_center, y_center, width, height, confidence) DO NOTHING
`

// InsertDetections writes each row independently under conflict-do-nothing
func (r *queries) InsertDetections(ctx context.Context, rows []domain.DetectionRow) (domain.UpsertResult, error) {
	var res domain.UpsertResult
	log := logger.C(ctx)

	for _, d := range rows {
		tag, err := r.q.Exec(ctx, insertDetectionSQL,
			d.FileName, d.ClassID, d.XCenter, d.YCenter, d.Width, d.Height, d.Confidence,
		)
		if err != nil {
			if ctx.Err() != nil {
				return res, perr.FromPostgres(err, "insert detections")
			}
			res.Failed++
			log.Warn().Str("file_name", d.FileName).Err(err).Msg("insert detection failed")
			continue
		}
		if tag.RowsAffected() > 0 {
			res.Inserted++
		} else {
			res.Deduped++
		}
	}
	return res, nil
}
