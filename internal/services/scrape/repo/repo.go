// Package repo provides postgres access for scrape cursors
package repo

import (
	"context"

	"telescrape/internal/modkit/repokit"
	perr "telescrape/internal/platform/errors"
	"telescrape/internal/services/scrape/domain"
)

type (
	// PG is a Postgres binder for domain.CursorRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.CursorRepo
func NewPG() repokit.Binder[domain.CursorRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.CursorRepo { return &queries{q: q} }

// EnsureSchema creates the cursor table when absent
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS channel_cursors (
			channel_username TEXT PRIMARY KEY,
			channel_title    TEXT NOT NULL DEFAULT '',
			last_message_id  BIGINT NOT NULL DEFAULT 0,
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return perr.FromPostgres(err, "ensure channel_cursors")
	}
	return nil
}

// GetCursor returns the stored cursor for a handle, ok=false for an unseen channel
func (r *queries) GetCursor(ctx context.Context, handle string) (int64, bool, error) {
	var id int64
	err := r.q.QueryRow(ctx, `
		SELECT last_message_id FROM channel_cursors WHERE channel_username = $1
	`, handle).Scan(&id)
	if err != nil {
		if perr.IsNoRows(err) {
			return 0, false, nil
		}
		return 0, false, perr.FromPostgres(err, "get cursor")
	}
	return id, true, nil
}

// AdvanceCursor moves the cursor forward only; GREATEST makes an
// out-of-order completion a no-op
func (r *queries) AdvanceCursor(ctx context.Context, ch domain.Channel, id int64) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO channel_cursors (channel_username, channel_title, last_message_id, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (channel_username) DO UPDATE SET
			channel_title   = EXCLUDED.channel_title,
			last_message_id = GREATEST(channel_cursors.last_message_id, EXCLUDED.last_message_id),
			updated_at      = now()
	`, ch.Handle, ch.Title, id)
	if err != nil {
		return perr.FromPostgres(err, "advance cursor")
	}
	return nil
}
