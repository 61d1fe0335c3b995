// Package repo provides postgres access for canonical message writes
package repo

import (
	"context"

	"telescrape/internal/modkit/repokit"
	perr "telescrape/internal/platform/errors"
	"telescrape/internal/platform/logger"
	"telescrape/internal/services/clean/domain"
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

// EnsureSchema creates the message table when absent
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS telegram_messages (
			id               BIGSERIAL PRIMARY KEY,
			channel_title    TEXT,
			channel_username TEXT,
			message_id       BIGINT UNIQUE,
			message          TEXT,
			message_date     TIMESTAMPTZ,
			media_path       TEXT,
			emoji_used       TEXT,
			youtube_links    TEXT
		)
	`)
	if err != nil {
		return perr.FromPostgres(err, "ensure telegram_messages")
	}
	return nil
}

const insertMessageSQL = `
	INSERT INTO telegram_messages (
		channel_title, channel_username, message_id, message,
		message_date, media_path, emoji_used, youtube_links
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (message_id) DO NOTHING
`

// InsertMessages writes each row independently under conflict-do-nothing.
// A row failure is logged and counted; rows already written stay written
func (r *queries) InsertMessages(ctx context.Context, rows []domain.MessageRow) (domain.UpsertResult, error) {
	var res domain.UpsertResult
	log := logger.C(ctx)

	for _, m := range rows {
		tag, err := r.q.Exec(ctx, insertMessageSQL,
			m.ChannelTitle, m.ChannelUsername, m.MessageID, m.Message,
			m.MessageDate, m.MediaPath, m.EmojiUsed, m.YouTubeLinks,
		)
		if err != nil {
			if ctx.Err() != nil {
				return res, perr.FromPostgres(err, "insert messages")
			}
			res.Failed++
			log.Warn().Int64("message_id", m.MessageID).Err(err).Msg("insert message failed")
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
